// Package docxtest builds minimal .docx archives for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

// Builder accumulates body content for word/document.xml.
type Builder struct {
	body strings.Builder
}

// New returns an empty document builder.
func New() *Builder {
	return &Builder{}
}

// Paragraph appends a body paragraph with one run per argument,
// which lets tests split a tag across runs the way Word does. A run of
// exactly "\t" becomes a w:tab and one of exactly "\n" a w:br.
func (b *Builder) Paragraph(runs ...string) *Builder {
	b.body.WriteString(paragraph(runs...))
	return b
}

// Table appends a table; each row is a slice of cell texts.
func (b *Builder) Table(rows ...[]string) *Builder {
	b.body.WriteString("<w:tbl>")

	for _, row := range rows {
		b.body.WriteString("<w:tr>")

		for _, cell := range row {
			b.body.WriteString("<w:tc>" + paragraph(cell) + "</w:tc>")
		}

		b.body.WriteString("</w:tr>")
	}

	b.body.WriteString("</w:tbl>")

	return b
}

// DocumentXML returns the word/document.xml content.
func (b *Builder) DocumentXML() string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + b.body.String() + `<w:sectPr/></w:body></w:document>`
}

// Bytes returns the zipped .docx.
func (b *Builder) Bytes(t testing.TB) []byte {
	t.Helper()

	return Archive(t, map[string]string{
		"[Content_Types].xml": contentTypes,
		"word/document.xml":   b.DocumentXML(),
	})
}

// WriteFile writes the .docx under dir and returns its path.
func (b *Builder) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(t), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	return path
}

// Archive zips the given parts in a stable order.
func Archive(t testing.TB, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		content, ok := parts[name]
		if !ok {
			continue
		}

		writePart(t, zw, name, content)
	}

	for name, content := range parts {
		if name == "[Content_Types].xml" || name == "word/document.xml" {
			continue
		}

		writePart(t, zw, name, content)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	return buf.Bytes()
}

func writePart(t testing.TB, zw *zip.Writer, name, content string) {
	t.Helper()

	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}

	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func paragraph(runs ...string) string {
	var sb strings.Builder

	sb.WriteString("<w:p>")

	for _, r := range runs {
		switch r {
		case "\t":
			sb.WriteString("<w:r><w:tab/></w:r>")
			continue
		case "\n":
			sb.WriteString("<w:r><w:br/></w:r>")
			continue
		}

		sb.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
		_ = xml.EscapeText(&sb, []byte(r))
		sb.WriteString("</w:t></w:r>")
	}

	sb.WriteString("</w:p>")

	return sb.String()
}

// ParagraphTexts returns the text of every body paragraph outside tables,
// reading w:t runs, w:tab and w:br in order. It does not use the template
// package so tests can check that package's output with it.
func ParagraphTexts(t testing.TB, data []byte) []string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	var body []byte

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open part: %v", err)
		}

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("read part: %v", err)
		}

		_ = rc.Close()
		body = buf.Bytes()
	}

	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		texts      []string
		current    strings.Builder
		inText     bool
		tableDepth int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}

		if err != nil {
			t.Fatalf("decode document: %v", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				current.Reset()
			case "t":
				inText = tableDepth == 0
			case "tab":
				if tableDepth == 0 {
					current.WriteString("\t")
				}
			case "br":
				if tableDepth == 0 {
					current.WriteString("\n")
				}
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "tbl":
				tableDepth--
			case "t":
				inText = false
			case "p":
				if tableDepth == 0 {
					texts = append(texts, current.String())
				}
			}
		}
	}

	return texts
}
