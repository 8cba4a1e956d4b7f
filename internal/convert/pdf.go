// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdiddy/pdf2docx/internal/pdftext"
)

// pdfcpu otherwise installs its configuration and fonts under the user's
// config directory on first use.
func init() {
	api.DisableConfigDir()
}

// source is an opened and validated PDF shared by all backends. The file
// stays open for the lifetime of the handle.
type source struct {
	path string
	file *os.File
	ctx  *model.Context
}

func openSource(pdfPath string) (*source, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading PDF %s: %w", pdfPath, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		f.Close()
		return nil, fmt.Errorf("validating PDF %s: %w", pdfPath, err)
	}

	return &source{path: pdfPath, file: f, ctx: ctx}, nil
}

func (s *source) pageCount() int { return s.ctx.PageCount }

func (s *source) title() string  { return s.ctx.XRefTable.Title }
func (s *source) author() string { return s.ctx.XRefTable.Author }

// pageContent returns the decoded content stream of page pageNr (1-based).
func (s *source) pageContent(pageNr int) ([]byte, error) {
	r, err := pdfcpu.ExtractPageContent(s.ctx, pageNr)
	if err != nil {
		return nil, fmt.Errorf("reading content of page %d: %w", pageNr, err)
	}
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading content of page %d: %w", pageNr, err)
	}
	return data, nil
}

// pageFonts resolves the font resources of page pageNr, including those
// inherited from the page tree, with their ToUnicode CMaps.
func (s *source) pageFonts(pageNr int) (pdftext.Fonts, error) {
	pageDict, _, inherited, err := s.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("reading page %d: %w", pageNr, err)
	}

	var res types.Dict
	if inherited != nil {
		res = inherited.Resources
	}
	if res == nil && pageDict != nil {
		if res, err = s.ctx.DereferenceDict(pageDict["Resources"]); err != nil {
			return nil, fmt.Errorf("reading resources of page %d: %w", pageNr, err)
		}
	}
	if res == nil {
		return nil, nil
	}

	fontDict, err := s.ctx.DereferenceDict(res["Font"])
	if err != nil || fontDict == nil {
		return nil, err
	}

	fonts := make(pdftext.Fonts, len(fontDict))
	for name, obj := range fontDict {
		fd, err := s.ctx.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("reading font %s of page %d: %w", name, pageNr, err)
		}
		if fd == nil {
			continue
		}
		composite := false
		if st := fd.NameEntry("Subtype"); st != nil && *st == "Type0" {
			composite = true
		}
		fonts[name] = pdftext.NewFont(composite, s.toUnicode(fd))
	}
	return fonts, nil
}

// toUnicode returns the decoded ToUnicode stream of a font dict. A missing
// or undecodable stream yields nil and the font falls back to its byte
// encoding.
func (s *source) toUnicode(fd types.Dict) []byte {
	obj, ok := fd.Find("ToUnicode")
	if !ok {
		return nil
	}
	sd, _, err := s.ctx.DereferenceStreamDict(obj)
	if err != nil || sd == nil {
		return nil
	}
	if err := sd.Decode(); err != nil {
		return nil
	}
	return sd.Content
}

// selection returns the PDF to feed an external tool for range r. For a
// partial range the selected pages are trimmed into a temporary PDF in dir;
// otherwise the original path is returned.
func (s *source) selection(r PageRange, dir string) (string, error) {
	first, last, err := r.Resolve(s.pageCount())
	if err != nil {
		return "", err
	}
	if first == 1 && last == s.pageCount() {
		return s.path, nil
	}

	out := filepath.Join(dir, "selection.pdf")
	pages := []string{fmt.Sprintf("%d-%d", first, last)}
	if err := api.TrimFile(s.path, out, pages, nil); err != nil {
		return "", fmt.Errorf("selecting pages %d-%d of %s: %w", first, last, s.path, err)
	}
	return out, nil
}

func (s *source) close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
