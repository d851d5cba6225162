package services

import (
	"errors"
	"testing"

	"careerquest/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Nil(t, classify("op", nil))
	assert.True(t, IsNoDataReturnedError(classify("op", repositories.ErrNoDataReturned)))

	cause := errors.New("pq: deadlock detected")
	err := classify("update mission", cause)
	assert.True(t, IsPersistenceError(err))
	assert.ErrorIs(t, err, cause)

	notFound := EntityNotFoundError("mission", "m1")
	assert.Same(t, notFound, classify("op", notFound))
}
