package template

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"docgen-converter/internal/errors"
)

// DocumentPart is the main body part of a .docx archive.
const DocumentPart = "word/document.xml"

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Reader errors.
var (
	ErrNotFound  = errors.New("template not found")
	ErrMalformed = errors.New("malformed template")
)

// Paragraph is a paragraph of the template that contains text.
type Paragraph struct {
	// Index is the paragraph's position among all w:p elements.
	Index int
	// Text is the paragraph's text: its w:t runs concatenated, with w:tab
	// read as "\t" and w:br/w:cr as "\n".
	Text string
	// InTable is true for paragraphs inside a table cell.
	InTable bool
	// Start and End delimit the paragraph's elements in Document.Elements().
	Start, End int

	runs []textRun
}

// HasTags reports whether the paragraph contains at least one tag.
func (p *Paragraph) HasTags() bool {
	return TagPattern.MatchString(p.Text)
}

// textRun is one <w:t> element: its byte range inside document.xml and
// the range of Paragraph.Text it contributed.
type textRun struct {
	start, end int64
	from, to   int
}

// Document is a parsed Conga template.
type Document struct {
	// Paragraphs holds non-blank paragraphs in document order.
	Paragraphs []Paragraph
	// Tables is the number of tables seen, nested ones included.
	Tables int

	elements []Element
	archive  []byte
	body     []byte
}

// Elements returns the flattened element stream in document order.
func (d *Document) Elements() []Element {
	return d.elements
}

// ReadDocx reads and parses the .docx template at path.
func ReadDocx(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "template file not found at %s", path)
		}

		return nil, errors.Wrapf(err, "could not read template file %s", path)
	}

	doc, err := ParseDocx(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse template %s", path)
	}

	return doc, nil
}

// ParseDocx parses a .docx archive held in memory.
func ParseDocx(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.WithHint(
			errors.Mark(errors.Wrap(err, "open archive"), ErrMalformed),
			"is this a .docx file? Legacy .doc templates must be re-saved as .docx",
		)
	}

	body, err := readPart(zr, DocumentPart)
	if err != nil {
		return nil, err
	}

	doc := &Document{archive: data, body: body}

	// TODO: scan word/header*.xml and word/footer*.xml parts as well.
	if err := doc.parseBody(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse %s", DocumentPart), ErrMalformed)
	}

	return doc, nil
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", name)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}

		return data, nil
	}

	return nil, errors.WithHint(
		errors.Mark(errors.Newf("archive has no %s", name), ErrMalformed),
		"the file is a zip archive but not a Word document",
	)
}

// openParagraph tracks a w:p being decoded.
type openParagraph struct {
	index   int
	inTable bool
	text    strings.Builder
	runs    []textRun
}

// parseBody walks document.xml with a token decoder, recording paragraph
// text and the byte offsets of every w:t so Write can splice them later.
func (d *Document) parseBody() error {
	dec := xml.NewDecoder(bytes.NewReader(d.body))

	var (
		stack      []*openParagraph
		tableDepth int
		runDepth   int
		pIndex     int
		inText     bool
		runStart   int64
		textStart  int
	)

	for {
		offset := dec.InputOffset()

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !isWord(t.Name) {
				continue
			}

			switch t.Name.Local {
			case "p":
				stack = append(stack, &openParagraph{index: pIndex, inTable: tableDepth > 0})
				pIndex++
			case "tbl":
				tableDepth++
				d.Tables++
			case "r":
				runDepth++
			case "t":
				if len(stack) > 0 {
					inText = true
					runStart = offset
					textStart = stack[len(stack)-1].text.Len()
				}
			case "tab", "br", "cr":
				// w:tab also names tab stops under w:pPr; only run content counts.
				if len(stack) > 0 && runDepth > 0 {
					stack[len(stack)-1].text.WriteString(specialText(t))
				}
			}

		case xml.CharData:
			if inText {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			if !isWord(t.Name) {
				continue
			}

			switch t.Name.Local {
			case "t":
				if inText {
					p := stack[len(stack)-1]
					p.runs = append(p.runs, textRun{
						start: runStart,
						end:   dec.InputOffset(),
						from:  textStart,
						to:    p.text.Len(),
					})
					inText = false
				}
			case "r":
				runDepth--
			case "p":
				if len(stack) == 0 {
					continue
				}

				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				d.closeParagraph(p)
			case "tc":
				d.elements = append(d.elements, Text("\t"))
			case "tr":
				d.elements = append(d.elements, Text("\n"))
			case "tbl":
				tableDepth--
			}
		}
	}

	return nil
}

func (d *Document) closeParagraph(p *openParagraph) {
	text := p.text.String()
	if strings.TrimSpace(text) == "" {
		return
	}

	start := len(d.elements)
	d.elements = append(d.elements, ScanText(text)...)

	d.Paragraphs = append(d.Paragraphs, Paragraph{
		Index:   p.index,
		Text:    text,
		InTable: p.inTable,
		Start:   start,
		End:     len(d.elements),
		runs:    p.runs,
	})

	if !p.inTable {
		d.elements = append(d.elements, Text("\n"))
	}
}

// specialText returns the text of a w:tab, w:br or w:cr element. Page and
// column breaks carry no text.
func specialText(el xml.StartElement) string {
	switch el.Name.Local {
	case "tab":
		return "\t"
	case "br":
		for _, a := range el.Attr {
			if a.Name.Local == "type" && a.Value != "textWrapping" {
				return ""
			}
		}
	}

	return "\n"
}

func isWord(name xml.Name) bool {
	return name.Space == wordNamespace || name.Space == "w"
}
