package logid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		wantErr   bool
	}{
		{"mixed charset", "abc-123_XYZ", false},
		{"generated shape", "aB3dE5gH7k", false},
		{"slash", "abc/123", true},
		{"empty", "", true},
		{"space", "abc 123", true},
		{"dot", "abc.txt", true},
		{"unicode", "abcé", true},
		{"max length", strings.Repeat("a", MaxLength), false},
		{"too long", strings.Repeat("a", MaxLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Validate(tt.candidate)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				assert.Empty(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.candidate, id)
		})
	}
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := Generate()
		require.NoError(t, err)
		assert.Len(t, id, Length)

		_, err = Validate(id)
		assert.NoError(t, err)

		for _, c := range id {
			assert.True(t, strings.ContainsRune(Alphabet, c), "unexpected rune %q", c)
		}

		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestAlphabetExcludesLookAlikes(t *testing.T) {
	for _, c := range "0O1lI" {
		assert.False(t, strings.ContainsRune(Alphabet, c), "alphabet contains %q", c)
	}
}
