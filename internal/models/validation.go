// file: internal/models/validation.go
package models

import (
	"fmt"
	"strings"
)

// ===============================
// VALIDATION ERRORS
// ===============================

// ValidationError represents a validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Field+": "+ve.Message)
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e), strings.Join(msgs, "; "))
}

// Add adds a validation error
func (e *ValidationErrors) Add(field, message, code string, value interface{}) {
	*e = append(*e, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
		Value:   value,
	})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ===============================
// PATCH VALIDATION
// ===============================

// Validate checks a mission patch. Null is only accepted on fields that can
// be cleared.
func (p *MissionPatch) Validate() error {
	var errs ValidationErrors

	if p.Title.Null {
		errs.Add("title", "cannot be null", "NULL_NOT_ALLOWED", nil)
	} else if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		errs.Add("title", "cannot be empty", "REQUIRED", p.Title.Value)
	}
	if p.Description.Null {
		errs.Add("description", "cannot be null", "NULL_NOT_ALLOWED", nil)
	}
	if p.CompletionCriteria.Null {
		errs.Add("completion_criteria", "cannot be null", "NULL_NOT_ALLOWED", nil)
	}
	if p.Category.Set && !p.Category.Value.IsValid() {
		errs.Add("category", "unknown mission category", "INVALID_ENUM", p.Category.Value)
	}
	if p.Difficulty.Set && !p.Difficulty.Value.IsValid() {
		errs.Add("difficulty", "unknown mission difficulty", "INVALID_ENUM", p.Difficulty.Value)
	}
	if p.Status.Set && !p.Status.Value.IsValid() {
		errs.Add("status", "unknown mission status", "INVALID_ENUM", p.Status.Value)
	}
	if p.Points.Null {
		errs.Add("points", "cannot be null", "NULL_NOT_ALLOWED", nil)
	} else if p.Points.Set && p.Points.Value <= 0 {
		errs.Add("points", "must be positive", "OUT_OF_RANGE", p.Points.Value)
	}
	if p.TimeLimit.HasValue() && p.TimeLimit.Value <= 0 {
		errs.Add("time_limit", "must be positive", "OUT_OF_RANGE", p.TimeLimit.Value)
	}
	if p.BadgeRewardID.HasValue() && strings.TrimSpace(p.BadgeRewardID.Value) == "" {
		errs.Add("badge_reward_id", "cannot be empty, use null to clear", "REQUIRED", nil)
	}

	for i, task := range p.Tasks.Value {
		if strings.TrimSpace(task.Description) == "" {
			errs.Add(fmt.Sprintf("tasks[%d].description", i), "cannot be empty", "REQUIRED", nil)
		}
	}
	for i, skill := range p.RequiredSkills.Value {
		if strings.TrimSpace(skill.Name) == "" {
			errs.Add(fmt.Sprintf("required_skills[%d].name", i), "cannot be empty", "REQUIRED", nil)
		}
		if !skill.Category.IsValid() {
			errs.Add(fmt.Sprintf("required_skills[%d].category", i), "unknown mission category", "INVALID_ENUM", skill.Category)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Validate checks a task patch
func (p *TaskPatch) Validate() error {
	var errs ValidationErrors

	if p.Description.Null {
		errs.Add("description", "cannot be null", "NULL_NOT_ALLOWED", nil)
	} else if p.Description.Set && strings.TrimSpace(p.Description.Value) == "" {
		errs.Add("description", "cannot be empty", "REQUIRED", p.Description.Value)
	}
	if p.Completed.Null {
		errs.Add("completed", "cannot be null", "NULL_NOT_ALLOWED", nil)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ===============================
// NORMALIZATION
// ===============================

// DedupeSkills trims skill names and drops repeated names, keeping the first
// occurrence. Names compare case-insensitively.
func DedupeSkills(skills []Skill) []Skill {
	out := make([]Skill, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s.Name = strings.TrimSpace(s.Name)
		key := strings.ToLower(s.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
