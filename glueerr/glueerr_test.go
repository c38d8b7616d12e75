package glueerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByKindAndCode(t *testing.T) {
	a := TableNotFound("users")
	b := TableNotFound("orders")
	assert.True(t, errors.Is(a, b))
}

func TestErrorUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("driver closed")
	wrapped := Wrap(Storage, "StorageMsg", cause, "connect failed")
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestErrorMessageIncludesKindAndCode(t *testing.T) {
	err := InvalidDivisorZero()
	assert.Contains(t, err.Error(), "Evaluate")
	assert.Contains(t, err.Error(), "InvalidDivisorZero")
}
