// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readParts writes doc and returns every package part keyed by name.
func readParts(t *testing.T, doc Document) map[string]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[f.Name] = string(data)
	}
	return parts
}

func TestWritePackageParts(t *testing.T) {
	parts := readParts(t, Document{
		Pages: []Page{{Paragraphs: []Paragraph{{Text: "hello"}}}},
	})

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"word/_rels/document.xml.rels",
		"word/styles.xml",
		"word/document.xml",
	} {
		body, ok := parts[name]
		require.True(t, ok, "missing part %s", name)
		assertWellFormed(t, name, body)
	}
	assert.Contains(t, parts["_rels/.rels"], `Target="word/document.xml"`)
	assert.Contains(t, parts["word/document.xml"], `<w:t xml:space="preserve">hello</w:t>`)
}

func TestWriteContentTypesFirst(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Document{}))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.NotEmpty(t, zr.File)
	assert.Equal(t, "[Content_Types].xml", zr.File[0].Name)
}

func TestDocumentXML(t *testing.T) {
	tests := []struct {
		name     string
		doc      Document
		contains []string
		excludes []string
	}{
		{
			name:     "empty document still has one paragraph",
			doc:      Document{},
			contains: []string{`<w:body><w:p></w:p><w:sectPr></w:sectPr></w:body>`},
		},
		{
			name: "page break between pages",
			doc: Document{Pages: []Page{
				{Paragraphs: []Paragraph{{Text: "one"}}},
				{Paragraphs: []Paragraph{{Text: "two"}}},
			}},
			contains: []string{`one</w:t></w:r></w:p><w:p><w:r><w:br w:type="page"></w:br></w:r></w:p><w:p><w:r><w:t xml:space="preserve">two`},
		},
		{
			name:     "no page break before first page",
			doc:      Document{Pages: []Page{{Paragraphs: []Paragraph{{Text: "only"}}}}},
			excludes: []string{`w:type="page"`},
		},
		{
			name:     "blank page keeps an empty paragraph",
			doc:      Document{Pages: []Page{{}, {Paragraphs: []Paragraph{{Text: "x"}}}}},
			contains: []string{`<w:body><w:p></w:p><w:p><w:r><w:br w:type="page"></w:br>`},
		},
		{
			name:     "special characters are escaped",
			doc:      Document{Pages: []Page{{Paragraphs: []Paragraph{{Text: `a < b & "c"`}}}}},
			contains: []string{`a &lt; b &amp; &#34;c&#34;`},
		},
		{
			name:     "markup in text stays text",
			doc:      Document{Pages: []Page{{Paragraphs: []Paragraph{{Text: "]]> </w:t><w:p> &amp;"}}}}},
			contains: []string{`]]&gt; &lt;/w:t&gt;&lt;w:p&gt; &amp;amp;`},
		},
		{
			name:     "heading style and font size",
			doc:      Document{Pages: []Page{{Paragraphs: []Paragraph{{Text: "Intro", Style: StyleHeading1, FontSize: 18}}}}},
			contains: []string{`<w:pPr><w:pStyle w:val="Heading1"></w:pStyle></w:pPr>`, `<w:rPr><w:sz w:val="36"></w:sz></w:rPr>`},
		},
		{
			name:     "normal style has no paragraph properties",
			doc:      Document{Pages: []Page{{Paragraphs: []Paragraph{{Text: "body"}}}}},
			excludes: []string{`<w:pPr>`, `<w:rPr>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := readParts(t, tt.doc)["word/document.xml"]
			assertWellFormed(t, "word/document.xml", body)
			for _, want := range tt.contains {
				assert.Contains(t, body, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, body, unwanted)
			}
		})
	}
}

func TestDocumentText(t *testing.T) {
	texts := []string{"  leading and trailing  ", "Привет мир, Grüße €5", `<tag attr="x">`, "tab\tinside"}
	var paras []Paragraph
	for _, text := range texts {
		paras = append(paras, Paragraph{Text: text})
	}
	body := readParts(t, Document{Pages: []Page{{Paragraphs: paras}}})["word/document.xml"]

	var got []string
	dec := xml.NewDecoder(strings.NewReader(body))
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		switch tok := tok.(type) {
		case xml.StartElement:
			inText = tok.Name.Local == "t"
		case xml.EndElement:
			inText = false
		case xml.CharData:
			if inText {
				got = append(got, string(tok))
			}
		}
	}
	assert.Equal(t, texts, got)
}

func TestCoreProperties(t *testing.T) {
	parts := readParts(t, Document{Title: "Q3 <Report>", Author: "Ada"})
	core := parts["docProps/core.xml"]
	assert.Contains(t, core, `<dc:title>Q3 &lt;Report&gt;</dc:title>`)
	assert.Contains(t, core, `<dc:creator>Ada</dc:creator>`)
	assert.Contains(t, core, `xmlns:dc="http://purl.org/dc/elements/1.1/"`)
	assertWellFormed(t, "docProps/core.xml", core)

	parts = readParts(t, Document{})
	assert.NotContains(t, parts["docProps/core.xml"], "dc:title")
}

func TestAppPropertiesCounts(t *testing.T) {
	doc := Document{Pages: []Page{
		{Paragraphs: []Paragraph{{Text: "a"}, {Text: "b"}}},
		{Paragraphs: []Paragraph{{Text: "c"}}},
	}}
	assert.Equal(t, 3, doc.ParagraphCount())

	app := readParts(t, doc)["docProps/app.xml"]
	assert.Contains(t, app, "<Pages>2</Pages>")
	assert.Contains(t, app, "<Paragraphs>3</Paragraphs>")
	assert.Contains(t, app, `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">`)
}

func TestWriteDeterministic(t *testing.T) {
	doc := Document{
		Title: "same",
		Pages: []Page{{Paragraphs: []Paragraph{{Text: "stable output"}}}},
	}
	var first, second bytes.Buffer
	require.NoError(t, Write(&first, doc))
	require.NoError(t, Write(&second, doc))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWritePropagatesWriterError(t *testing.T) {
	doc := Document{Pages: []Page{{Paragraphs: []Paragraph{{Text: strings.Repeat("x", 1<<16)}}}}}
	err := Write(failWriter{}, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func assertWellFormed(t *testing.T, name, body string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(body))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		require.NoError(t, err, "part %s is not well-formed XML", name)
	}
}
