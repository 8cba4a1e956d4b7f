// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/pdiddy/pdf2docx/internal/docx"
	"github.com/pdiddy/pdf2docx/internal/pdftext"
	"github.com/pdiddy/pdf2docx/pkg/types"
)

// Heading thresholds relative to the body font size.
const (
	heading1Ratio = 1.6
	heading2Ratio = 1.25
)

// NativeConverter converts PDFs without external tools. It reads page
// content streams with pdfcpu, recovers text lines and paragraphs, and
// writes a WordprocessingML package. Layout beyond paragraphs and headings
// (tables, images, columns) is not reproduced.
type NativeConverter struct{}

// NewNativeConverter creates the pure-Go converter.
func NewNativeConverter() *NativeConverter { return &NativeConverter{} }

// Name returns types.BackendNative.
func (n *NativeConverter) Name() types.ConversionBackend { return types.BackendNative }

// Open reads and validates the PDF at pdfPath.
func (n *NativeConverter) Open(ctx context.Context, pdfPath string) (Document, error) {
	src, err := openSource(pdfPath)
	if err != nil {
		return nil, err
	}
	return &nativeDocument{src: src}, nil
}

type nativeDocument struct {
	src *source
}

func (d *nativeDocument) PageCount() int { return d.src.pageCount() }

func (d *nativeDocument) Close() error { return d.src.close() }

func (d *nativeDocument) Convert(ctx context.Context, docxPath string, r PageRange) error {
	first, last, err := r.Resolve(d.src.pageCount())
	if err != nil {
		return err
	}

	pages := make([][]pdftext.Paragraph, 0, last-first+1)
	for nr := first; nr <= last; nr++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, err := d.src.pageContent(nr)
		if err != nil {
			return err
		}
		fonts, err := d.src.pageFonts(nr)
		if err != nil {
			return err
		}
		pages = append(pages, pdftext.Paragraphs(pdftext.Extract(content, fonts)))
	}

	doc := buildDocument(pages)
	doc.Title = d.src.title()
	doc.Author = d.src.author()

	return writeAtomic(docxPath, func(w io.Writer) error {
		if err := docx.Write(w, doc); err != nil {
			return fmt.Errorf("writing DOCX %s: %w", docxPath, err)
		}
		return nil
	})
}

// buildDocument maps extracted paragraphs onto DOCX pages, promoting text
// set noticeably larger than the body size to headings.
func buildDocument(pages [][]pdftext.Paragraph) docx.Document {
	body := bodySize(pages)

	var doc docx.Document
	for _, paras := range pages {
		var page docx.Page
		for _, p := range paras {
			dp := docx.Paragraph{Text: p.Text, FontSize: roundHalf(p.Size)}
			if body > 0 {
				switch {
				case p.Size >= body*heading1Ratio:
					dp.Style = docx.StyleHeading1
				case p.Size >= body*heading2Ratio:
					dp.Style = docx.StyleHeading2
				}
			}
			page.Paragraphs = append(page.Paragraphs, dp)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

// bodySize returns the font size carrying the most characters.
func bodySize(pages [][]pdftext.Paragraph) float64 {
	weight := make(map[float64]int)
	for _, paras := range pages {
		for _, p := range paras {
			weight[roundHalf(p.Size)] += len(p.Text)
		}
	}

	var best float64
	bestWeight := -1
	for size, w := range weight {
		if w > bestWeight || (w == bestWeight && size < best) {
			best, bestWeight = size, w
		}
	}
	return best
}

// roundHalf rounds a point size to the nearest half point, the DOCX
// resolution.
func roundHalf(size float64) float64 {
	return math.Round(size*2) / 2
}
