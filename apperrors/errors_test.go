package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "config", err: Config("GITHUB_USERNAME"), expected: KindConfig},
		{name: "upstream", err: Upstream("github", base), expected: KindUpstream},
		{name: "persistence", err: Persistence("upsert", base), expected: KindPersistence},
		{name: "shape", err: Shape("calendar", base), expected: KindShape},
		{name: "wrapped", err: fmt.Errorf("stage failed: %w", Upstream("leetcode", base)), expected: KindUpstream},
		{name: "plain", err: base, expected: KindUnknown},
		{name: "nil", err: nil, expected: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "configuration error: MONGODB_URI environment variable is not set", Config("MONGODB_URI").Error())
	assert.Equal(t, "github upstream error: status code 502", Upstream("github", errors.New("status code 502")).Error())
}

func TestUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := Persistence("find", base)
	assert.ErrorIs(t, err, base)
	assert.True(t, Is(err, KindPersistence))
	assert.False(t, Is(err, KindShape))
}

func TestNilPassthrough(t *testing.T) {
	assert.NoError(t, Upstream("github", nil))
	assert.NoError(t, Persistence("find", nil))
	assert.NoError(t, Shape("x", nil))
}
