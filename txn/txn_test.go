package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginAutocommitFromIdle(t *testing.T) {
	s := NewSession()
	was, err := s.Begin(true, false)
	require.NoError(t, err)
	assert.False(t, was)
	assert.True(t, s.InTransaction())
}

func TestBeginAutocommitFromTransactionIsNoOp(t *testing.T) {
	s := NewSession()
	_, err := s.Begin(false, false)
	require.NoError(t, err)
	was, err := s.Begin(true, false)
	require.NoError(t, err)
	assert.True(t, was)
	assert.True(t, s.InTransaction())
}

func TestNestedUserTransactionRejectedWithoutSavepoints(t *testing.T) {
	s := NewSession()
	_, err := s.Begin(false, false)
	require.NoError(t, err)
	_, err = s.Begin(false, false)
	assert.ErrorIs(t, err, ErrNestedTransaction)
}

func TestNestedUserTransactionAllowedWithSavepoints(t *testing.T) {
	s := NewSession()
	_, err := s.Begin(false, false)
	require.NoError(t, err)
	_, err = s.Begin(false, true)
	assert.NoError(t, err)
}

func TestEndReturnsToIdle(t *testing.T) {
	s := NewSession()
	_, _ = s.Begin(true, false)
	s.End()
	assert.False(t, s.InTransaction())
}
