package template

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docgen-converter/internal/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// splice replaces body[start:end] with text.
type splice struct {
	start, end int64
	text       []byte
}

// RenderParagraphs maps paragraph indexes to the converted form of their
// tags, in order. rendered holds one converted string per element of
// Elements(); only the entries for tag elements are used. Paragraphs
// without tags are skipped.
func (d *Document) RenderParagraphs(rendered []string) map[int][]string {
	out := make(map[int][]string)

	for i := range d.Paragraphs {
		p := &d.Paragraphs[i]
		if !p.HasTags() || p.End > len(rendered) {
			continue
		}

		var replacements []string

		for j := p.Start; j < p.End; j++ {
			if d.elements[j].IsTag() {
				replacements = append(replacements, rendered[j])
			}
		}

		out[p.Index] = replacements
	}

	return out
}

// rewriteRuns returns the new text of each w:t run. A replacement goes into
// the run holding the first character of its tag; the rest of the tag is
// cut from the runs it spans. Tabs and breaks are not runs and stay put.
func (p *Paragraph) rewriteRuns(replacements []string) []string {
	parts := make([]strings.Builder, len(p.runs))

	copyRange := func(from, to int) {
		for i, r := range p.runs {
			if lo, hi := max(from, r.from), min(to, r.to); lo < hi {
				parts[i].WriteString(p.Text[lo:hi])
			}
		}
	}

	cursor := 0

	for k, loc := range TagPattern.FindAllStringIndex(p.Text, -1) {
		copyRange(cursor, loc[0])

		value := p.Text[loc[0]:loc[1]]
		if k < len(replacements) {
			value = replacements[k]
		}

		for i, r := range p.runs {
			if loc[0] >= r.from && loc[0] < r.to {
				parts[i].WriteString(value)
				break
			}
		}

		cursor = loc[1]
	}

	copyRange(cursor, len(p.Text))

	out := make([]string, len(parts))
	for i := range parts {
		out[i] = parts[i].String()
	}

	return out
}

// Write writes a copy of the template archive to w, replacing the tags of
// the paragraphs listed in paragraphs (keyed by Paragraph.Index).
func (d *Document) Write(w io.Writer, paragraphs map[int][]string) error {
	body, err := d.rewriteBody(paragraphs)
	if err != nil {
		return err
	}

	zr, err := zip.NewReader(bytes.NewReader(d.archive), int64(len(d.archive)))
	if err != nil {
		return errors.Wrap(err, "reopen template archive")
	}

	zw := zip.NewWriter(w)

	for _, f := range zr.File {
		if f.Name == DocumentPart {
			fw, err := zw.CreateHeader(&zip.FileHeader{
				Name:     f.Name,
				Method:   zip.Deflate,
				Modified: f.Modified,
			})
			if err != nil {
				return errors.Wrapf(err, "create %s", f.Name)
			}

			if _, err := fw.Write(body); err != nil {
				return errors.Wrapf(err, "write %s", f.Name)
			}

			continue
		}

		if err := zw.Copy(f); err != nil {
			return errors.Wrapf(err, "copy %s", f.Name)
		}
	}

	return errors.Wrap(zw.Close(), "finalize archive")
}

// WriteFile writes the rewritten template to path, creating parent directories.
func (d *Document) WriteFile(path string, paragraphs map[int][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	var buf bytes.Buffer
	if err := d.Write(&buf, paragraphs); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), filePerm); err != nil {
		return errors.Wrapf(err, "writing file %s", path)
	}

	return nil
}

func (d *Document) rewriteBody(paragraphs map[int][]string) ([]byte, error) {
	var splices []splice

	for i := range d.Paragraphs {
		p := &d.Paragraphs[i]

		replacements, ok := paragraphs[p.Index]
		if !ok {
			continue
		}

		for j, text := range p.rewriteRuns(replacements) {
			r := p.runs[j]
			if text == p.Text[r.from:r.to] {
				continue
			}

			var run bytes.Buffer

			run.WriteString(`<w:t xml:space="preserve">`)

			if err := xml.EscapeText(&run, []byte(text)); err != nil {
				return nil, errors.Wrapf(err, "escape paragraph %d", p.Index)
			}

			run.WriteString(`</w:t>`)
			splices = append(splices, splice{start: r.start, end: r.end, text: run.Bytes()})
		}
	}

	sort.Slice(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	var out bytes.Buffer

	out.Grow(len(d.body))

	var pos int64

	for _, s := range splices {
		if s.start < pos {
			return nil, errors.Newf("overlapping text runs at offset %d", s.start)
		}

		out.Write(d.body[pos:s.start])
		out.Write(s.text)
		pos = s.end
	}

	out.Write(d.body[pos:])

	return out.Bytes(), nil
}

// WriteText writes converted plain text to path, creating parent directories.
func WriteText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	if err := os.WriteFile(path, []byte(text), filePerm); err != nil {
		return errors.Wrapf(err, "writing file %s", path)
	}

	return nil
}
