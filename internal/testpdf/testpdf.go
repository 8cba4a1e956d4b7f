// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testpdf generates small, well-formed PDF files for tests and the
// sample build target.
package testpdf

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/goregular"
)

// unicodeFamily is the fpdf family name under which Go Regular is embedded.
const unicodeFamily = "GoRegular"

// Options controls the generated document.
type Options struct {
	Title    string
	Author   string
	FontSize float64 // body size in points; default 12
	Heading  string  // optional larger line at the top of the first page
	// Unicode embeds Go Regular as a composite UTF-8 font, so lines may hold
	// any WGL4 text (Cyrillic, Greek, the euro sign).
	Unicode bool
}

// Write creates a PDF at path with one page per entry in pages. Each string
// becomes one line of text, laid out top-down.
func Write(path string, opts Options, pages ...[]string) error {
	size := opts.FontSize
	if size <= 0 {
		size = 12
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(false)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}

	family, bold := "Helvetica", "B"
	if opts.Unicode {
		pdf.AddUTF8FontFromBytes(unicodeFamily, "", goregular.TTF)
		family, bold = unicodeFamily, ""
	}

	for i, lines := range pages {
		pdf.AddPage()
		if i == 0 && opts.Heading != "" {
			pdf.SetFont(family, bold, size*2)
			pdf.Cell(0, size*2.4, opts.Heading)
			pdf.Ln(size * 3)
		}
		pdf.SetFont(family, "", size)
		for _, line := range lines {
			pdf.Cell(0, size*1.2, line)
			pdf.Ln(size * 1.2)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing test PDF %s: %w", path, err)
	}
	return nil
}

// Path writes a PDF named name into dir and returns its path, failing t on
// error.
func Path(t testing.TB, dir, name string, opts Options, pages ...[]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := Write(path, opts, pages...); err != nil {
		t.Fatal(err)
	}
	return path
}
