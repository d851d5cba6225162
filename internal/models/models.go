// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// ENUMERATIONS
// ===============================

// MissionCategory classifies the skill area a mission exercises
type MissionCategory string

const (
	CategoryProblemSolving MissionCategory = "problem-solving"
	CategoryLeadership     MissionCategory = "leadership"
	CategoryCommunication  MissionCategory = "communication"
	CategoryTechnical      MissionCategory = "technical"
	CategoryCreativity     MissionCategory = "creativity"
)

// MissionCategories lists every accepted category
var MissionCategories = []MissionCategory{
	CategoryProblemSolving,
	CategoryLeadership,
	CategoryCommunication,
	CategoryTechnical,
	CategoryCreativity,
}

// IsValid reports whether c is a known category
func (c MissionCategory) IsValid() bool {
	for _, known := range MissionCategories {
		if c == known {
			return true
		}
	}
	return false
}

// MissionDifficulty grades how hard a mission is
type MissionDifficulty string

const (
	DifficultyEasy   MissionDifficulty = "easy"
	DifficultyMedium MissionDifficulty = "medium"
	DifficultyHard   MissionDifficulty = "hard"
	DifficultyExpert MissionDifficulty = "expert"
)

// MissionDifficulties lists every accepted difficulty
var MissionDifficulties = []MissionDifficulty{
	DifficultyEasy,
	DifficultyMedium,
	DifficultyHard,
	DifficultyExpert,
}

// IsValid reports whether d is a known difficulty
func (d MissionDifficulty) IsValid() bool {
	for _, known := range MissionDifficulties {
		if d == known {
			return true
		}
	}
	return false
}

// MissionStatus is the progress state of a mission
type MissionStatus string

const (
	StatusNotStarted MissionStatus = "not-started"
	StatusInProgress MissionStatus = "in-progress"
	StatusCompleted  MissionStatus = "completed"
	StatusFailed     MissionStatus = "failed"
)

// MissionStatuses lists every accepted status
var MissionStatuses = []MissionStatus{
	StatusNotStarted,
	StatusInProgress,
	StatusCompleted,
	StatusFailed,
}

// IsValid reports whether s is a known status
func (s MissionStatus) IsValid() bool {
	for _, known := range MissionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// BadgeRarity grades how hard a badge is to obtain
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityUncommon  BadgeRarity = "uncommon"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// BadgeRarities lists every accepted rarity
var BadgeRarities = []BadgeRarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
}

// IsValid reports whether r is a known rarity
func (r BadgeRarity) IsValid() bool {
	for _, known := range BadgeRarities {
		if r == known {
			return true
		}
	}
	return false
}

// ===============================
// DEFAULTS
// ===============================

const (
	DefaultMissionTitle      = "Untitled Mission"
	DefaultMissionCategory   = CategoryTechnical
	DefaultMissionDifficulty = DifficultyMedium
	DefaultMissionPoints     = 100
	DefaultMissionCreator    = "anonymous"
)

// ===============================
// CORE ENTITIES
// ===============================

// Mission is a skill challenge candidates complete to earn points and badges.
// Tasks and RequiredSkills are owned by the mission; BadgeReward is a weak
// reference into the badge catalog.
type Mission struct {
	ID                 string            `json:"id" db:"id"`
	Title              string            `json:"title" db:"title"`
	Description        string            `json:"description" db:"description"`
	Category           MissionCategory   `json:"category" db:"category"`
	Difficulty         MissionDifficulty `json:"difficulty" db:"difficulty"`
	Points             int               `json:"points" db:"points"`
	TimeLimit          *int              `json:"time_limit,omitempty" db:"time_limit"`
	Status             MissionStatus     `json:"status" db:"status"`
	CompletionCriteria string            `json:"completion_criteria" db:"completion_criteria"`
	BadgeRewardID      *string           `json:"badge_reward_id,omitempty" db:"badge_reward_id"`
	CreatedBy          string            `json:"created_by" db:"created_by"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`

	// Joined fields (not in the missions table)
	BadgeReward    *Badge  `json:"badge_reward,omitempty" db:"-"`
	Tasks          []*Task `json:"tasks" db:"-"`
	RequiredSkills []Skill `json:"required_skills" db:"-"`
}

// Task is one ordered step of a mission
type Task struct {
	ID          string `json:"id" db:"id"`
	MissionID   string `json:"mission_id" db:"mission_id"`
	Description string `json:"description" db:"description"`
	Completed   bool   `json:"completed" db:"completed"`
	OrderIndex  int    `json:"order_index" db:"order_index"`
}

// Skill is a value object: missions replace their skill set wholesale
type Skill struct {
	Name     string          `json:"name" db:"skill_name" validate:"required,notblank,max=100"`
	Category MissionCategory `json:"category" db:"skill_category" validate:"required,mission_category"`
}

// MissionStatistics summarises mission progress across the whole catalog
type MissionStatistics struct {
	TotalMissions         int     `json:"total_missions"`
	CompletedMissions     int     `json:"completed_missions"`
	InProgressMissions    int     `json:"in_progress_missions"`
	NotStartedMissions    int     `json:"not_started_missions"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
}
