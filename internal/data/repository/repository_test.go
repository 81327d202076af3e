package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewRepository(t *testing.T) {
	repo := NewRepository(nil, zap.NewNop())
	assert.NotNil(t, repo)
	assert.NotNil(t, repo.Seat)
	assert.NotNil(t, repo.Outcome)
}
