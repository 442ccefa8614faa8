package experiments

import (
	"html"
	"strings"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/microcosm-cc/bluemonday"
)

// Panel row presentation defaults.
const (
	DefaultRowURL = "https://github.com/mozilla-services/switchboard-experiments"
	EnabledColor  = "#c5e1a5"
	DisabledColor = "#ef9a9a"
)

var titlePolicy = bluemonday.StrictPolicy()

// PanelRows renders display rows as host dataset rows. Enabled experiments
// are green, the rest red. A descriptor may carry its own http(s) "url".
// Titles are plain text: markup is stripped and entities are decoded.
func PanelRows(rows []DisplayRow) []host.Row {
	out := make([]host.Row, 0, len(rows))
	for _, r := range rows {
		color := DisabledColor
		if r.IsEnabled {
			color = EnabledColor
		}
		out = append(out, host.Row{
			URL:             rowURL(r.Metadata),
			Title:           plainTitle(r.Name),
			BackgroundColor: color,
		})
	}
	return out
}

func rowURL(meta map[string]any) string {
	if u, ok := meta["url"].(string); ok {
		if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
			return u
		}
	}
	return DefaultRowURL
}

func plainTitle(name string) string {
	return html.UnescapeString(titlePolicy.Sanitize(name))
}
