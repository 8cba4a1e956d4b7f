// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdf2docx/pkg/types"
)

// sofficeCandidates lists well-known LibreOffice install locations, tried
// in order before falling back to PATH.
var sofficeCandidates = []string{
	"/usr/bin/soffice",
	"/usr/bin/libreoffice",
	"/usr/local/bin/soffice",
	"/opt/homebrew/bin/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
}

// commander abstracts process execution for testing.
type commander interface {
	LookPath(file string) (string, error)
	Stat(path string) error
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osCommander struct{}

func (osCommander) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osCommander) Stat(path string) error {
	_, err := os.Stat(path)
	return err
}

func (osCommander) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LibreOfficeConverter converts PDFs with a local headless LibreOffice,
// importing through the Draw PDF filter and exporting Word 2007 XML.
type LibreOfficeConverter struct {
	soffice string
	cmd     commander
}

// NewLibreOfficeConverter locates the soffice binary. A non-empty
// sofficePath is used as given.
func NewLibreOfficeConverter(sofficePath string) (*LibreOfficeConverter, error) {
	return newLibreOfficeConverter(sofficePath, osCommander{})
}

func newLibreOfficeConverter(sofficePath string, cmd commander) (*LibreOfficeConverter, error) {
	bin, err := findSoffice(sofficePath, cmd)
	if err != nil {
		return nil, err
	}
	return &LibreOfficeConverter{soffice: bin, cmd: cmd}, nil
}

func findSoffice(configured string, cmd commander) (string, error) {
	if configured != "" {
		if err := cmd.Stat(configured); err != nil {
			return "", fmt.Errorf("soffice not found at %s: %w", configured, err)
		}
		return configured, nil
	}
	for _, p := range sofficeCandidates {
		if cmd.Stat(p) == nil {
			return p, nil
		}
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if p, err := cmd.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", errors.New("LibreOffice not found: install it or set soffice_path")
}

// Name returns types.BackendLibreOffice.
func (l *LibreOfficeConverter) Name() types.ConversionBackend { return types.BackendLibreOffice }

// Binary returns the soffice path in use.
func (l *LibreOfficeConverter) Binary() string { return l.soffice }

// Open reads and validates the PDF at pdfPath.
func (l *LibreOfficeConverter) Open(ctx context.Context, pdfPath string) (Document, error) {
	src, err := openSource(pdfPath)
	if err != nil {
		return nil, err
	}
	return &libreOfficeDocument{conv: l, src: src}, nil
}

type libreOfficeDocument struct {
	conv *LibreOfficeConverter
	src  *source
}

func (d *libreOfficeDocument) PageCount() int { return d.src.pageCount() }

func (d *libreOfficeDocument) Close() error { return d.src.close() }

func (d *libreOfficeDocument) Convert(ctx context.Context, docxPath string, r PageRange) error {
	work, err := os.MkdirTemp("", "pdf2docx-soffice-*")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(work)

	input, err := d.src.selection(r, work)
	if err != nil {
		return err
	}
	absInput, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", input, err)
	}

	outDir := filepath.Join(work, "out")
	// A private profile avoids lock contention with a running LibreOffice.
	profile := filepath.Join(work, "profile")
	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(profile),
		"--headless",
		"--infilter=writer_pdf_import",
		"--convert-to", "docx:MS Word 2007 XML",
		"--outdir", outDir,
		absInput,
	}

	out, err := d.conv.cmd.CombinedOutput(ctx, d.conv.soffice, args...)
	if err != nil {
		return fmt.Errorf("LibreOffice failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(absInput), filepath.Ext(absInput))
	produced := filepath.Join(outDir, base+".docx")
	f, err := os.Open(produced)
	if err != nil {
		return fmt.Errorf("LibreOffice produced no output for %s: %s", d.src.path, strings.TrimSpace(string(out)))
	}
	defer f.Close()

	return writeAtomic(docxPath, func(w io.Writer) error {
		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("writing DOCX %s: %w", docxPath, err)
		}
		return nil
	})
}
