package render

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"goeda/domain/report"
)

// histogramSVG renders one column's histogram as an inline SVG bar chart.
// The report stays a single self-contained file this way, matching the
// embedded-image layout of the HTML export.
func histogramSVG(h report.Histogram) template.HTML {
	const (
		width   = 460
		height  = 220
		padLeft = 46
		padBot  = 34
		padTop  = 14
	)

	maxCount := 0
	for _, c := range h.Counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return ""
	}

	plotW := float64(width - padLeft - 10)
	plotH := float64(height - padBot - padTop)
	barW := plotW / float64(len(h.Counts))

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" role="img" aria-label="Distribution of %s">`,
		width, height, template.HTMLEscapeString(h.Column))
	// Axes
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#95a5a6"/>`, padLeft, height-padBot, width-10, height-padBot)
	fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#95a5a6"/>`, padLeft, padTop, padLeft, height-padBot)

	for i, c := range h.Counts {
		barH := plotH * float64(c) / float64(maxCount)
		x := float64(padLeft) + float64(i)*barW
		y := float64(height-padBot) - barH
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#3498db" fill-opacity="0.75"><title>[%.4g, %.4g): %d</title></rect>`,
			x+0.5, y, barW-1, barH, h.Edges[i], h.Edges[i+1], c)
	}

	// Min/max tick labels
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="#7f8c8d">%.4g</text>`, padLeft, height-padBot+14, h.Edges[0])
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="#7f8c8d" text-anchor="end">%.4g</text>`, width-10, height-padBot+14, h.Edges[len(h.Edges)-1])
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="#7f8c8d" text-anchor="end">%d</text>`, padLeft-4, padTop+8, maxCount)
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// heatmapSVG renders the correlation matrix as an inline SVG heatmap with
// the diverging blue-white-red scale of the original correlation plot.
func heatmapSVG(m *report.CorrelationMatrix) template.HTML {
	if m == nil || len(m.Columns) < 2 {
		return ""
	}

	const (
		cell    = 52
		padLeft = 110
		padTop  = 96
	)
	n := len(m.Columns)
	width := padLeft + n*cell + 10
	height := padTop + n*cell + 10

	var b strings.Builder
	fmt.Fprintf(&b, `<svg viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" role="img" aria-label="Correlation matrix">`, width, height)

	for i := 0; i < n; i++ {
		// Row label and rotated column header
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="11" fill="#2c3e50" text-anchor="end">%s</text>`,
			padLeft-6, padTop+i*cell+cell/2+4, template.HTMLEscapeString(truncateLabel(m.Columns[i])))
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="11" fill="#2c3e50" text-anchor="start" transform="rotate(-55 %d %d)">%s</text>`,
			padLeft+i*cell+cell/2, padTop-8, padLeft+i*cell+cell/2, padTop-8, template.HTMLEscapeString(truncateLabel(m.Columns[i])))

		for j := 0; j < n; j++ {
			x := padLeft + j*cell
			y := padTop + i*cell
			if !m.Defined[i][j] {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="#ecf0f1" stroke="#fff"/>`, x, y, cell, cell)
				fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="#95a5a6" text-anchor="middle">n/a</text>`, x+cell/2, y+cell/2+4)
				continue
			}
			r := m.Values[i][j]
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#fff"/>`, x, y, cell, cell, divergingColor(r))
			fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10" fill="%s" text-anchor="middle">%.2f</text>`,
				x+cell/2, y+cell/2+4, textColor(r), r)
		}
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// divergingColor maps r in [-1,1] to a blue-white-red scale
func divergingColor(r float64) string {
	if math.IsNaN(r) {
		return "#ecf0f1"
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	if r >= 0 {
		// white -> red
		g := int(255 * (1 - r))
		return fmt.Sprintf("#ff%02x%02x", g, g)
	}
	// white -> blue
	g := int(255 * (1 + r))
	return fmt.Sprintf("#%02x%02xff", g, g)
}

func textColor(r float64) string {
	if math.Abs(r) > 0.6 {
		return "#ffffff"
	}
	return "#2c3e50"
}

func truncateLabel(s string) string {
	if len(s) > 14 {
		return s[:12] + "…"
	}
	return s
}
