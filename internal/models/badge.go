package models

// Badge is an achievement a mission can reward. The catalog is maintained
// outside this service and is read-only here.
type Badge struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	Rarity      BadgeRarity     `json:"rarity" db:"rarity"`
	Category    MissionCategory `json:"category" db:"category"`
}
