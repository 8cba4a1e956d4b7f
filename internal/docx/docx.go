// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx writes minimal Office Open XML (WordprocessingML) packages.
// The output is deterministic: the same Document always produces the same
// bytes, so repeated conversions overwrite their destination identically.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Style names a paragraph style defined in styles.xml.
type Style string

const (
	StyleNormal   Style = ""
	StyleTitle    Style = "Title"
	StyleHeading1 Style = "Heading1"
	StyleHeading2 Style = "Heading2"
)

// Paragraph is one block of text.
type Paragraph struct {
	Text string

	// Style selects a paragraph style; the zero value is Normal.
	Style Style

	// FontSize is the run size in points. Zero leaves the style default.
	FontSize float64
}

// Page groups the paragraphs that came from one source page. Pages after the
// first start with a hard page break.
type Page struct {
	Paragraphs []Paragraph
}

// Document is the content written into word/document.xml plus the core
// properties.
type Document struct {
	Title  string
	Author string
	Pages  []Page
}

// ParagraphCount returns the number of paragraphs across all pages.
func (d Document) ParagraphCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Paragraphs)
	}
	return n
}

// zipEpoch is the fixed modification time stamped on every entry.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// part is one file inside the package, in write order. body is either a
// prebuilt XML string or a value marshalled with encoding/xml.
type part struct {
	name string
	body any
}

// Write encodes doc as a .docx package to w.
func Write(w io.Writer, doc Document) error {
	parts := []part{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", newCoreProperties(doc)},
		{"docProps/app.xml", newAppProperties(doc)},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", newDocumentXML(doc)},
	}

	zw := zip.NewWriter(w)
	for _, p := range parts {
		body, err := encode(p.body)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", p.name, err)
		}
		hdr := &zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("creating %s: %w", p.name, err)
		}
		if _, err := fw.Write(body); err != nil {
			return fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing docx package: %w", err)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	out, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xmlHeader), out...), nil
}

const (
	nsMain          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsCore          = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC            = "http://purl.org/dc/elements/1.1/"
	nsDCTerms       = "http://purl.org/dc/terms/"
	nsXSI           = "http://www.w3.org/2001/XMLSchema-instance"
	pageBreakType   = "page"
	preserveSpacing = "preserve"
)

// WordprocessingML elements are named with their conventional w: prefix,
// declared once on the root.
type xmlDocument struct {
	XMLName xml.Name `xml:"w:document"`
	NSW     string   `xml:"xmlns:w,attr"`
	Body    xmlBody  `xml:"w:body"`
}

type xmlBody struct {
	Paragraphs []xmlParagraph `xml:"w:p"`
	SectPr     struct{}       `xml:"w:sectPr"`
}

type xmlParagraph struct {
	Props *xmlParagraphProps `xml:"w:pPr,omitempty"`
	Runs  []xmlRun           `xml:"w:r"`
}

type xmlParagraphProps struct {
	Style xmlVal `xml:"w:pStyle"`
}

type xmlRun struct {
	Props *xmlRunProps `xml:"w:rPr,omitempty"`
	Break *xmlBreak    `xml:"w:br,omitempty"`
	Text  *xmlText     `xml:"w:t,omitempty"`
}

type xmlRunProps struct {
	// Size is in half-points.
	Size xmlVal `xml:"w:sz"`
}

type xmlVal struct {
	Val string `xml:"w:val,attr"`
}

type xmlBreak struct {
	Type string `xml:"w:type,attr"`
}

type xmlText struct {
	Space string `xml:"xml:space,attr"`
	Value string `xml:",chardata"`
}

func newDocumentXML(doc Document) xmlDocument {
	var body xmlBody
	for i, page := range doc.Pages {
		if i > 0 {
			body.Paragraphs = append(body.Paragraphs, xmlParagraph{
				Runs: []xmlRun{{Break: &xmlBreak{Type: pageBreakType}}},
			})
		}
		if len(page.Paragraphs) == 0 {
			body.Paragraphs = append(body.Paragraphs, xmlParagraph{})
			continue
		}
		for _, p := range page.Paragraphs {
			body.Paragraphs = append(body.Paragraphs, newParagraph(p))
		}
	}
	if len(doc.Pages) == 0 {
		body.Paragraphs = append(body.Paragraphs, xmlParagraph{})
	}
	return xmlDocument{NSW: nsMain, Body: body}
}

func newParagraph(p Paragraph) xmlParagraph {
	var out xmlParagraph
	if p.Style != StyleNormal {
		out.Props = &xmlParagraphProps{Style: xmlVal{Val: string(p.Style)}}
	}
	if p.Text == "" {
		return out
	}
	run := xmlRun{Text: &xmlText{Space: preserveSpacing, Value: p.Text}}
	if p.FontSize > 0 {
		halfPts := int(p.FontSize*2 + 0.5)
		run.Props = &xmlRunProps{Size: xmlVal{Val: strconv.Itoa(halfPts)}}
	}
	out.Runs = []xmlRun{run}
	return out
}

type coreProperties struct {
	XMLName   xml.Name `xml:"cp:coreProperties"`
	NSCP      string   `xml:"xmlns:cp,attr"`
	NSDC      string   `xml:"xmlns:dc,attr"`
	NSDCTerms string   `xml:"xmlns:dcterms,attr"`
	NSXSI     string   `xml:"xmlns:xsi,attr"`
	Title     string   `xml:"dc:title,omitempty"`
	Creator   string   `xml:"dc:creator,omitempty"`
}

func newCoreProperties(doc Document) coreProperties {
	return coreProperties{
		NSCP:      nsCore,
		NSDC:      nsDC,
		NSDCTerms: nsDCTerms,
		NSXSI:     nsXSI,
		Title:     doc.Title,
		Creator:   doc.Author,
	}
}

type appProperties struct {
	XMLName     xml.Name `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Properties"`
	Application string   `xml:"Application"`
	Pages       int      `xml:"Pages"`
	Paragraphs  int      `xml:"Paragraphs"`
}

func newAppProperties(doc Document) appProperties {
	return appProperties{
		Application: "pdf2docx",
		Pages:       len(doc.Pages),
		Paragraphs:  doc.ParagraphCount(),
	}
}

const contentTypesXML = xmlHeader +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>` +
	`</Types>`

const rootRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

const documentRelsXML = xmlHeader +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

const stylesXML = xmlHeader +
	`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:docDefaults><w:rPrDefault><w:rPr>` +
	`<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="22"/>` +
	`</w:rPr></w:rPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/>` +
	`<w:pPr><w:spacing w:after="120"/></w:pPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/>` +
	`<w:next w:val="Normal"/><w:rPr><w:b/><w:sz w:val="48"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>` +
	`<w:next w:val="Normal"/><w:pPr><w:keepNext/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/>` +
	`<w:next w:val="Normal"/><w:pPr><w:keepNext/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>` +
	`</w:styles>`
