package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"goeda/domain/report"
	"goeda/domain/table"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders a compact report suitable for terminals, prompts or
// conversion to standalone HTML.
func Markdown(r *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Dataset summary: %s\n\n", r.DatasetName)
	fmt.Fprintf(&b, "Rows: %d  \nColumns: %d  \nMissing values: %d  \nDuplicate rows: %d\n\n",
		r.Overview.Rows, r.Overview.Columns, r.Overview.MissingTotal, r.Overview.DuplicateRows)

	b.WriteString("## Schema\n\n")
	for _, c := range r.Columns {
		total := c.NonMissing + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		fmt.Fprintf(&b, "- **%s**: %s (non-missing %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonMissing, missPct)
		switch {
		case c.Kind == table.KindNumeric && c.Numeric != nil:
			if c.Numeric.Computed {
				n := c.Numeric
				fmt.Fprintf(&b, " min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", n.Min, n.Max, n.Mean, n.Median, n.StdDev)
			} else {
				b.WriteString(" not computed (no values)")
			}
		case c.Categorical != nil && len(c.Categorical.TopValues) > 0:
			b.WriteString(" top: ")
			for i, kv := range c.Categorical.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s(%d)", safeVal(kv.Value), kv.Count)
			}
			if c.Categorical.UniqueCount > len(c.Categorical.TopValues) {
				fmt.Fprintf(&b, "; unique=%d", c.Categorical.UniqueCount)
			}
		}
		b.WriteString("\n")
	}

	if len(r.Outliers) > 0 {
		b.WriteString("\n## Outliers (1.5×IQR)\n\n")
		b.WriteString("| Column | Count | Percentage | Fences |\n|---|---|---|---|\n")
		for _, o := range r.Outliers {
			if o.Computed {
				fmt.Fprintf(&b, "| %s | %d | %.2f%% | [%.4g, %.4g] |\n", safeName(o.Column), o.Count, o.Percent, o.LowerFence, o.UpperFence)
			} else {
				fmt.Fprintf(&b, "| %s | not computed | | |\n", safeName(o.Column))
			}
		}
	}

	if r.Correlation != nil && len(r.Correlation.Columns) >= 2 {
		b.WriteString("\n## Correlations\n\n")
		type pairCorr struct {
			A, B string
			R    float64
		}
		var pairs []pairCorr
		n := len(r.Correlation.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if !r.Correlation.Defined[i][j] {
					continue
				}
				pairs = append(pairs, pairCorr{
					A: r.Correlation.Columns[i],
					B: r.Correlation.Columns[j],
					R: r.Correlation.Values[i][j],
				})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		for _, p := range pairs {
			fmt.Fprintf(&b, "- %s ~ %s: r=%.3f\n", safeName(p.A), safeName(p.B), p.R)
		}
		if len(pairs) == 0 {
			b.WriteString("- no defined pairs (zero variance or too few complete observations)\n")
		}
	}

	return b.String()
}

// MarkdownHTML converts the markdown rendition into a standalone HTML
// fragment for embedding or export.
func MarkdownHTML(r *report.Report) []byte {
	md := []byte(Markdown(r))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
