package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pders01/plx/internal/parallax"
)

const sentinelLabel = "↑ back to top"

var defaultPalette = []string{"#E07A5F", "#3D405B", "#81B29A", "#F2CC8F", "#6D597A", "#457B9D"}

// itemTheme colors item cards. Each card takes a palette color by index,
// darkened toward black by its overlay alpha.
type itemTheme struct {
	palette []colorful.Color
}

func newItemTheme(palette []string) itemTheme {
	t := itemTheme{palette: parsePalette(palette)}
	if len(t.palette) == 0 {
		t.palette = parsePalette(defaultPalette)
	}
	return t
}

func parsePalette(hexes []string) []colorful.Color {
	var out []colorful.Color
	for _, hex := range hexes {
		if c, err := colorful.Hex(hex); err == nil {
			out = append(out, c)
		}
	}
	return out
}

func (t itemTheme) base(index int) colorful.Color {
	return t.palette[index%len(t.palette)]
}

// shade blends c toward black by alpha out of 255.
func shade(c colorful.Color, alpha int) lipgloss.Color {
	f := math.Min(math.Max(float64(alpha)/255, 0), 1)
	return lipgloss.Color(c.BlendRgb(colorful.Color{}, f).Clamped().Hex())
}

func (t itemTheme) tint(index, alpha int) lipgloss.Color {
	return shade(t.base(index), alpha)
}

func (t itemTheme) sentinelTint(alpha int) lipgloss.Color {
	c, err := colorful.Hex(string(AccentColor))
	if err != nil {
		return AccentColor
	}
	return shade(c, alpha)
}

// pixelRow maps a content pixel to a screen row, rounding toward negative
// infinity so partially scrolled rows stay attached to their item.
func pixelRow(px, offset, cell int) int {
	return int(math.Floor(float64(px-offset) / float64(cell)))
}

// renderGallery draws placements into exactly rows lines of width cells.
func renderGallery(placements []parallax.Placement, offset, width, rows, cell int, theme itemTheme) []string {
	blank := strings.Repeat(" ", max(width, 0))
	canvas := make([]string, max(rows, 0))
	for i := range canvas {
		canvas[i] = blank
	}
	if width <= 0 || cell <= 0 {
		return canvas
	}

	for _, p := range placements {
		top := pixelRow(p.Top, offset, cell)
		height := max(pixelRow(p.Bottom(), offset, cell)-top, 1)
		if top >= rows || top+height <= 0 {
			continue
		}

		var lines []string
		if p.Kind == parallax.KindSentinel {
			lines = renderSentinel(p, width, height, theme)
		} else {
			lines = renderCard(p, width, height, theme)
		}
		for i, line := range lines {
			if r := top + i; r >= 0 && r < rows {
				canvas[r] = line
			}
		}
	}
	return canvas
}

func renderCard(p parallax.Placement, width, rows int, theme itemTheme) []string {
	inner := max(width-2, 1)
	content := p.Content

	lines := []string{truncateEnd(content.Title, inner)}
	if rows >= 3 && content.Caption != "" {
		lines = append(lines, truncateEnd(content.Caption, inner))
	}
	if rows >= 4 {
		for len(lines) < rows-1 {
			lines = append(lines, "")
		}
		meta := fmt.Sprintf("#%d  %3.0f%%  ", p.Index+1, p.Scale*100)
		lines = append(lines, meta+truncateMiddle(content.ImageRef, inner-len(meta)))
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}

	style := lipgloss.NewStyle().
		Width(width).
		Height(rows).
		MaxHeight(rows).
		Padding(0, 1).
		Foreground(TextColor).
		Background(theme.tint(p.Index, p.Alpha))
	return strings.Split(style.Render(strings.Join(lines, "\n")), "\n")
}

func renderSentinel(p parallax.Placement, width, rows int, theme itemTheme) []string {
	style := SentinelStyle.
		Width(width).
		Height(rows).
		MaxHeight(rows).
		Background(theme.sentinelTint(p.Alpha))
	return strings.Split(style.Render(truncateEnd(sentinelLabel, width)), "\n")
}

// truncateEnd cuts s to limit runes, ending with an ellipsis when cut.
func truncateEnd(s string, limit int) string {
	r := []rune(s)
	switch {
	case limit <= 0:
		return ""
	case len(r) <= limit:
		return s
	case limit == 1:
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s, which suits URLs.
func truncateMiddle(s string, limit int) string {
	r := []rune(s)
	switch {
	case limit <= 0:
		return ""
	case len(r) <= limit:
		return s
	case limit == 1:
		return "…"
	}
	left := (limit - 1) / 2
	right := limit - 1 - left
	return string(r[:left]) + "…" + string(r[len(r)-right:])
}
