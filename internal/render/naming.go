package render

import "strings"

// KindBestRegion names the best-region map output.
const KindBestRegion = "bestSR"

// OutputName is limplot_<base>_<grid>_[<channel>_]<kind>.<ext>. An empty
// kind reads as "limit".
func OutputName(baseRegion, grid, channel, kind, ext string) string {
	parts := []string{"limplot", baseRegion, grid}
	if channel != "" {
		parts = append(parts, channel)
	}
	if kind == "" {
		kind = "limit"
	}
	parts = append(parts, kind)
	return strings.Join(parts, "_") + "." + strings.TrimPrefix(ext, ".")
}
