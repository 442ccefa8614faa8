package experiments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPanelRows(t *testing.T) {
	rows := PanelRows([]DisplayRow{
		{Name: "on", IsEnabled: true},
		{Name: "off"},
		{Name: "linked", Metadata: map[string]any{"url": "https://example.com/linked"}},
		{Name: "bad-link", Metadata: map[string]any{"url": "javascript:alert(1)"}},
	})

	assert.Len(t, rows, 4)
	assert.Equal(t, EnabledColor, rows[0].BackgroundColor)
	assert.Equal(t, DefaultRowURL, rows[0].URL)
	assert.Equal(t, "on", rows[0].Title)
	assert.Equal(t, DisabledColor, rows[1].BackgroundColor)
	assert.Equal(t, "https://example.com/linked", rows[2].URL)
	assert.Equal(t, DefaultRowURL, rows[3].URL)
}

func TestPanelRowsStripsMarkup(t *testing.T) {
	rows := PanelRows([]DisplayRow{{Name: "<script>x</script>exp"}})
	assert.Equal(t, "exp", rows[0].Title)
}

func TestPanelRowsKeepsPlainTextTitles(t *testing.T) {
	rows := PanelRows(Merge([]Descriptor{{Name: "a&b"}, {Name: "it's"}, {Name: "<b>x</b>&y"}}, nil))
	assert.Equal(t, "a&b", rows[0].Title)
	assert.Equal(t, "it's", rows[1].Title)
	assert.Equal(t, "x&y", rows[2].Title)
}
