package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaging(t *testing.T) {
	s := NewStaging[string]()
	a, b := uuid.New(), uuid.New()

	s.Put(a, "a")
	s.Put(b, "b")
	assert.Equal(t, 2, s.Len())

	got, err := s.Pick([]uuid.UUID{b, a})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got)
	assert.Equal(t, 2, s.Len(), "pick leaves entities pending")

	_, err = s.Pick([]uuid.UUID{uuid.New()})
	assert.Error(t, err)

	s.Drop([]uuid.UUID{a})
	assert.Equal(t, 1, s.Len())
	s.Drop([]uuid.UUID{a, uuid.New()})
	assert.Equal(t, 1, s.Len())
}

func TestUUIDStrings(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, []string{id.String()}, uuidStrings([]uuid.UUID{id}))
	assert.Empty(t, uuidStrings(nil))
}
