//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/pdf2docx/internal/testpdf"
)

const sampleDir = "samples"

// Sample writes samples/sample.pdf, a small multi-page PDF with a heading,
// for trying the converter by hand.
func Sample() error {
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	path := filepath.Join(sampleDir, "sample.pdf")
	opts := testpdf.Options{
		Title:   "pdf2docx sample",
		Author:  "pdf2docx",
		Heading: "Sample Document",
	}
	err := testpdf.Write(path, opts,
		[]string{
			"This sample exercises the native backend.",
			"Consecutive lines on a page are joined into one paragraph,",
			"and the larger first line becomes a heading.",
		},
		[]string{"The second page starts after a page break."},
	)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// Convert builds the CLI and converts the sample PDF with it.
func Convert() error {
	mg.Deps(Build, Sample)
	in := filepath.Join(sampleDir, "sample.pdf")
	out := filepath.Join(sampleDir, "sample.docx")
	return sh.RunV(filepath.Join(binDir, binName), in, out)
}
