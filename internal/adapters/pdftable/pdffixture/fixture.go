// Package pdffixture writes small uncompressed PDFs for tests. Every page
// uses one Helvetica font at 10pt and shows each Text with its own Tj.
package pdffixture

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// FontSize is the size every Text is shown at.
const FontSize = 10

// Text places S with its baseline starting at (X, Y).
type Text struct {
	X, Y float64
	S    string
}

// Page is the text shown on one page, in content-stream order.
type Page []Text

// Options controls the font dictionary.
type Options struct {
	// Widths adds a /Widths array of half an em per character. Without it the
	// font is a bare standard-14 reference and carries no metrics.
	Widths bool
}

// Build returns a complete PDF with one page per entry.
func Build(pages []Page, opts Options) []byte {
	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	catalog := add("")
	pagesObj := add("")
	font := add(fontDict(opts))

	var kids []string
	for _, p := range pages {
		content := contentStream(p)
		contentObj := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		pageObj := add(fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pagesObj, font, contentObj))
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj))
	}
	objects[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	objects[pagesObj-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, catalog, xref)
	return buf.Bytes()
}

// Write builds the PDF and stores it at path.
func Write(path string, pages []Page, opts Options) error {
	return os.WriteFile(path, Build(pages, opts), 0644)
}

func fontDict(opts Options) string {
	dict := "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding"
	if opts.Widths {
		widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
		dict += " /FirstChar 32 /LastChar 126 /Widths [" + widths + "]"
	}
	return dict + " >>"
}

func contentStream(p Page) string {
	var b strings.Builder
	for _, t := range p {
		fmt.Fprintf(&b, "BT /F1 %d Tf %g %g Td (%s) Tj ET\n", FontSize, t.X, t.Y, escape(t.S))
	}
	return b.String()
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func escape(s string) string {
	return escaper.Replace(s)
}
