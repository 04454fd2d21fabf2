package pdftable

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"domaincreates/internal/core/domain"
)

// Glyph is a run of text placed on the page. Y grows upwards, as in PDF user space.
type Glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

// DetectOptions tunes the stream-mode table detector. Distances are in
// multiples of the line's font size.
type DetectOptions struct {
	// LineTolerance is how far apart baselines may be and still share a line.
	LineTolerance float64
	// WordGap inserts a space between glyphs further apart than this.
	WordGap float64
	// CellGap starts a new cell when glyphs are further apart than this.
	CellGap float64
	// MaxRowGap ends the table when consecutive lines are further apart than this.
	MaxRowGap float64
}

// DefaultDetectOptions work for the registry's single-table report layout.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		LineTolerance: 0.3,
		WordGap:       0.15,
		CellGap:       1.5,
		MaxRowGap:     3.0,
	}
}

type span struct {
	x0, x1 float64
	text   strings.Builder
}

type line struct {
	y        float64
	fontSize float64
	cells    []*span
}

// DetectTable finds the first table among the glyphs of one page. The first
// line with at least two cells is the header and its cells define the column
// bands; following lines belong to the table until the vertical gap grows
// past MaxRowGap.
func DetectTable(glyphs []Glyph, opts DetectOptions) (domain.Table, bool) {
	lines := groupLines(glyphs, opts)

	header := -1
	for i, l := range lines {
		if len(l.cells) >= 2 {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, false
	}

	bands := columnBands(lines[header].cells)
	table := domain.Table{assignRow(lines[header].cells, bands)}

	prev := lines[header]
	for _, l := range lines[header+1:] {
		if prev.y-l.y > opts.MaxRowGap*prev.fontSize {
			break
		}
		table = append(table, assignRow(l.cells, bands))
		prev = l
	}
	return table, true
}

func groupLines(glyphs []Glyph, opts DetectOptions) []*line {
	sorted := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		sorted = append(sorted, g)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []*line
	var current []Glyph
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, buildLine(current, opts))
			current = nil
		}
	}
	for _, g := range sorted {
		if len(current) > 0 {
			ref := current[0]
			if math.Abs(ref.Y-g.Y) > opts.LineTolerance*size(ref) {
				flush()
			}
		}
		current = append(current, g)
	}
	flush()
	return lines
}

func buildLine(glyphs []Glyph, opts DetectOptions) *line {
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	l := &line{y: glyphs[0].Y, fontSize: size(glyphs[0])}
	var cur *span
	for _, g := range glyphs {
		if cur != nil {
			gap := g.X - cur.x1
			switch {
			case gap > opts.CellGap*size(g):
				cur = nil
			case gap > opts.WordGap*size(g):
				cur.text.WriteByte(' ')
			}
		}
		if cur == nil {
			cur = &span{x0: g.X}
			l.cells = append(l.cells, cur)
		}
		cur.text.WriteString(g.S)
		if end := g.X + width(g); end > cur.x1 {
			cur.x1 = end
		}
	}
	return l
}

// columnBands returns the right edge of every column but the last, placed
// halfway between neighbouring header cells.
func columnBands(header []*span) []float64 {
	edges := make([]float64, 0, len(header)-1)
	for i := 0; i+1 < len(header); i++ {
		edges = append(edges, (header[i].x1+header[i+1].x0)/2)
	}
	return edges
}

func assignRow(cells []*span, edges []float64) domain.Row {
	row := make(domain.Row, len(edges)+1)
	for _, c := range cells {
		col := sort.SearchFloat64s(edges, (c.x0+c.x1)/2)
		text := norm.NFC.String(strings.TrimSpace(c.text.String()))
		if row[col].Present {
			row[col].Text += " " + text
			continue
		}
		row[col] = domain.TextCell(text)
	}
	return row
}

// width falls back to half an em per rune when the font carried no widths.
// placeGlyphs spaces width-less glyphs by the same amount.
func width(g Glyph) float64 {
	if g.W > 0 {
		return g.W
	}
	return float64(utf8.RuneCountInString(g.S)) * size(g) / 2
}

func size(g Glyph) float64 {
	if g.FontSize <= 0 {
		return 1
	}
	return g.FontSize
}
