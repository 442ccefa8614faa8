package experiments

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnabled(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    []string
	}{
		{"encoded string", `["a","b"]`, []string{"a", "b"}},
		{"encoded bytes", []byte(`["b"]`), []string{"b"}},
		{"raw message", json.RawMessage(`["c"]`), []string{"c"}},
		{"encoded empty", `[]`, []string{}},
		{"structured strings", []string{"a", "b"}, []string{"a", "b"}},
		{"structured any", []any{"x", "y"}, []string{"x", "y"}},
		{"enabled set", NewEnabledSet("q"), []string{"q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEnabled(tt.payload)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got.Names())
		})
	}
}

func TestDecodeEnabledMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{"nil", nil},
		{"number", 42},
		{"encoded object", `{"a":true}`},
		{"encoded null", `null`},
		{"not json", `a,b`},
		{"mixed array", []any{"a", 1}},
		{"map", map[string]any{"a": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnabled(tt.payload)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestEnabledSetNamesSorted(t *testing.T) {
	s := NewEnabledSet("b", "a", "b")
	assert.Equal(t, []string{"a", "b"}, s.Names())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
}
