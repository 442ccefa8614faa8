package experiments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	descriptors := []Descriptor{{Name: "expA"}, {Name: "expB", Metadata: map[string]any{"k": "v"}}}

	rows := Merge(descriptors, NewEnabledSet("expA"))

	assert.Equal(t, []DisplayRow{
		{Name: "expA", IsEnabled: true},
		{Name: "expB", IsEnabled: false, Metadata: map[string]any{"k": "v"}},
	}, rows)
}

func TestMergeIsPure(t *testing.T) {
	descriptors := []Descriptor{{Name: "b"}, {Name: "a"}}
	enabled := NewEnabledSet("a", "unknown")

	first := Merge(descriptors, enabled)
	second := Merge(descriptors, enabled)
	assert.Equal(t, first, second)

	first[0].IsEnabled = true
	assert.False(t, second[0].IsEnabled)
	assert.Equal(t, []Descriptor{{Name: "b"}, {Name: "a"}}, descriptors)
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge(nil, NewEnabledSet("a")))
	assert.Equal(t, []DisplayRow{{Name: "a"}}, Merge([]Descriptor{{Name: "a"}}, nil))
}
