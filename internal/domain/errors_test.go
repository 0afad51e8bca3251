package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUpstreamError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError("chroma", "list collections failed", cause)

	assert.Equal(t, ErrUpstreamFailure, err.Code)
	assert.Equal(t, "chroma", err.Dependency)
	assert.Contains(t, err.Error(), "list collections failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestNewInvalidModelOutputError_TruncatesRaw(t *testing.T) {
	raw := strings.Repeat("x", 1000)
	err := NewInvalidModelOutputError(raw)

	assert.Equal(t, ErrInvalidModelOutput, err.Code)
	assert.Less(t, len(err.Message), 300, "diagnostic prefix must be truncated")
	assert.Contains(t, err.Message, "xxx")
}

func TestNewMisconfiguredError(t *testing.T) {
	err := NewMisconfiguredError("openai.api_key")
	assert.Equal(t, ErrMisconfigured, err.Code)
	assert.Contains(t, err.Message, "openai.api_key")
}
