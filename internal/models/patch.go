package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state field used by partial updates: absent (Set is
// false), present-null (Set and Null), or present with a Value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a present-null Optional
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// HasValue reports whether the field is present and not null
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// UnmarshalJSON marks the field present; absent keys never reach it.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON encodes absent and null fields as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// TaskInput is a task as supplied in a mission update. An empty ID asks the
// service to generate one.
type TaskInput struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// MissionPatch carries a sparse mission update. Only present fields are
// written. Tasks and RequiredSkills, when present, replace the whole
// collection; null clears it.
type MissionPatch struct {
	Title              Optional[string]            `json:"title"`
	Description        Optional[string]            `json:"description"`
	Category           Optional[MissionCategory]   `json:"category"`
	Difficulty         Optional[MissionDifficulty] `json:"difficulty"`
	Points             Optional[int]               `json:"points"`
	TimeLimit          Optional[int]               `json:"time_limit"`
	Status             Optional[MissionStatus]     `json:"status"`
	CompletionCriteria Optional[string]            `json:"completion_criteria"`
	BadgeRewardID      Optional[string]            `json:"badge_reward_id"`
	Tasks              Optional[[]TaskInput]       `json:"tasks"`
	RequiredSkills     Optional[[]Skill]           `json:"required_skills"`
}

// HasScalarChanges reports whether any column of the missions row changes
func (p *MissionPatch) HasScalarChanges() bool {
	return p.Title.Set || p.Description.Set || p.Category.Set || p.Difficulty.Set ||
		p.Points.Set || p.TimeLimit.Set || p.Status.Set || p.CompletionCriteria.Set ||
		p.BadgeRewardID.Set
}

// IsEmpty reports whether the patch changes nothing at all
func (p *MissionPatch) IsEmpty() bool {
	return !p.HasScalarChanges() && !p.Tasks.Set && !p.RequiredSkills.Set
}

// TaskPatch carries a sparse task update
type TaskPatch struct {
	Description Optional[string] `json:"description"`
	Completed   Optional[bool]   `json:"completed"`
}

// IsEmpty reports whether the patch changes nothing
func (p *TaskPatch) IsEmpty() bool {
	return !p.Description.Set && !p.Completed.Set
}
