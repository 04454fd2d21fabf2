// Package pdftable opens PDF reports and finds the first table on each page.
package pdftable

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"domaincreates/internal/core/domain"
	"domaincreates/internal/core/ports"
)

// Opener implements ports.DocumentOpener on top of github.com/ledongthuc/pdf.
type Opener struct {
	opts DetectOptions
}

// NewOpener creates an Opener with the given detector settings.
func NewOpener(opts DetectOptions) *Opener {
	return &Opener{opts: opts}
}

// Open parses the PDF trailer and page tree. The file stays open until Close.
func (o *Opener) Open(path string) (ports.Document, error) {
	file, reader, err := openPDF(path)
	if err != nil {
		return nil, err
	}
	return &Document{file: file, reader: reader, opts: o.opts, path: path}, nil
}

// Document is an opened PDF.
type Document struct {
	file   *os.File
	reader *pdf.Reader
	opts   DetectOptions
	path   string
}

// NumPages returns the page count from the page tree.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Table detects the first table on page n (1-based). Pages outside the
// document have no table.
func (d *Document) Table(n int) (domain.Table, bool, error) {
	// Reader.Page wraps around instead of failing for n == NumPage()+1.
	if n < 1 || n > d.NumPages() {
		return nil, false, nil
	}
	glyphs, err := d.glyphs(n)
	if err != nil {
		return nil, false, err
	}
	table, ok := DetectTable(glyphs, d.opts)
	return table, ok, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// glyphs reads the positioned text of page n. The pdf package panics on
// malformed content streams, so that is turned into a parse error here.
func (d *Document) glyphs(n int) (glyphs []Glyph, err error) {
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = &domain.OpError{
				Op:   fmt.Sprintf("read page %d", n),
				Kind: domain.KindParse,
				Path: d.path,
				Err:  fmt.Errorf("%v", r),
			}
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}

	return placeGlyphs(page.Content().Text), nil
}

// placeGlyphs converts pdf.Text in content-stream order. The pdf package only
// advances the text position by the font's /Widths, so a font without them
// stacks every character of a string on one spot. Such a glyph is moved to
// the end of the previous one, keeping any character spacing the stream added.
func placeGlyphs(texts []pdf.Text) []Glyph {
	glyphs := make([]Glyph, 0, len(texts))
	var prev, prevRaw Glyph
	for i, t := range texts {
		raw := Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S}
		g := raw
		if i > 0 && raw.W == 0 && raw.Y == prevRaw.Y {
			if advance := raw.X - prevRaw.X; advance >= 0 && advance < width(prevRaw) {
				g.X = prev.X + width(prev) + advance
			}
		}
		glyphs = append(glyphs, g)
		prev, prevRaw = g, raw
	}
	return glyphs
}

func openPDF(path string) (file *os.File, reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			if file != nil {
				file.Close()
			}
			file, reader = nil, nil
			err = &domain.OpError{Op: "open document", Kind: domain.KindParse, Path: path, Err: fmt.Errorf("%v", r)}
		}
	}()

	if _, statErr := os.Stat(path); statErr != nil {
		return nil, nil, &domain.OpError{Op: "open document", Kind: domain.KindIO, Path: path, Err: statErr}
	}

	file, reader, err = pdf.Open(path)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, nil, &domain.OpError{Op: "open document", Kind: domain.KindParse, Path: path, Err: err}
	}
	return file, reader, nil
}
