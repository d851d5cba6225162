package validation

import (
	"testing"

	"careerquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Category   models.MissionCategory   `json:"category" validate:"omitempty,mission_category"`
	Difficulty models.MissionDifficulty `json:"difficulty" validate:"omitempty,mission_difficulty"`
	Skills     []models.Skill           `json:"skills" validate:"dive"`
}

func TestValidateStructAcceptsKnownEnums(t *testing.T) {
	err := ValidateStruct(&sample{
		Category:   models.CategoryLeadership,
		Difficulty: models.DifficultyHard,
		Skills:     []models.Skill{{Name: "Go", Category: models.CategoryTechnical}},
	})
	assert.NoError(t, err)
}

func TestValidateStructReportsJSONFieldPaths(t *testing.T) {
	err := ValidateStruct(&sample{
		Category: "cooking",
		Skills:   []models.Skill{{Name: "", Category: models.CategoryTechnical}},
	})
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "category", verrs[0].Field)
	assert.Equal(t, "skills[0].name", verrs[1].Field)
}

func TestValidateStructRejectsNonStruct(t *testing.T) {
	assert.Error(t, ValidateStruct("not a struct"))
	assert.NoError(t, ValidateStruct(nil))
}

func TestValidateStructRejectsBlankSkillName(t *testing.T) {
	err := ValidateStruct(&sample{
		Skills: []models.Skill{{Name: "   ", Category: models.CategoryTechnical}},
	})
	require.Error(t, err)

	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "skills[0].name", verrs[0].Field)
	assert.Equal(t, "NOTBLANK", verrs[0].Code)
}
