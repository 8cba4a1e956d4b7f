// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-DOCX conversion with pluggable backends.
// A Converter opens a PDF and returns a Document handle; the handle converts
// a page range into a DOCX file and must be closed exactly once.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/pdiddy/pdf2docx/pkg/types"
)

var (
	// ErrNoPages is returned when the source PDF has no pages to convert.
	ErrNoPages = errors.New("document has no pages")

	// ErrInvalidRange is returned when a page range cannot be satisfied.
	ErrInvalidRange = errors.New("invalid page range")

	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown conversion backend")
)

// Converter opens PDF files for conversion. Different backends (native,
// LibreOffice, container) implement this interface.
type Converter interface {
	// Name identifies the backend.
	Name() types.ConversionBackend

	// Open reads and validates the PDF at pdfPath and returns a handle
	// scoped to it. The caller must Close the handle.
	Open(ctx context.Context, pdfPath string) (Document, error)
}

// Document is an open conversion handle for one source PDF.
type Document interface {
	// PageCount returns the number of pages in the source PDF.
	PageCount() int

	// Convert writes the pages selected by r to docxPath. The destination
	// is replaced only when conversion succeeds.
	Convert(ctx context.Context, docxPath string, r PageRange) error

	// Close releases the handle.
	Close() error
}

// PageRange selects pages by 1-based inclusive bounds. Start 0 means the
// first page and End 0 means the last page, so the zero value is the full
// document.
type PageRange struct {
	Start int
	End   int
}

// FullRange returns the range covering every page.
func FullRange() PageRange { return PageRange{} }

// IsFull reports whether r selects every page regardless of page count.
func (r PageRange) IsFull() bool {
	return r.Start <= 1 && r.End == 0
}

// Resolve returns the concrete first and last page for a document with
// pageCount pages. End beyond the page count is clamped.
func (r PageRange) Resolve(pageCount int) (first, last int, err error) {
	if pageCount < 1 {
		return 0, 0, ErrNoPages
	}
	if r.Start < 0 || r.End < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}

	first = max(r.Start, 1)
	last = r.End
	if last == 0 || last > pageCount {
		last = pageCount
	}
	if first > last {
		return 0, 0, fmt.Errorf("%w: %s of %d pages", ErrInvalidRange, r, pageCount)
	}
	return first, last, nil
}

// String renders the range as "start-end"; an open end is left blank.
func (r PageRange) String() string {
	start := strconv.Itoa(max(r.Start, 1))
	if r.End == 0 {
		return start + "-"
	}
	return start + "-" + strconv.Itoa(r.End)
}

// Result describes a completed conversion.
type Result struct {
	PageCount int
	First     int
	Last      int
}

// ConvertFile opens pdfPath with c, converts the selected pages into
// docxPath and closes the handle on every path. A close failure is
// reported only when conversion itself succeeded.
func ConvertFile(ctx context.Context, c Converter, pdfPath, docxPath string, r PageRange) (res Result, err error) {
	doc, err := c.Open(ctx, pdfPath)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", pdfPath, cerr)
		}
	}()

	res.PageCount = doc.PageCount()
	res.First, res.Last, err = r.Resolve(res.PageCount)
	if err != nil {
		return res, err
	}

	if err := doc.Convert(ctx, docxPath, r); err != nil {
		return res, err
	}
	return res, nil
}
