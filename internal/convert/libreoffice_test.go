// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2docx/internal/testpdf"
	"github.com/pdiddy/pdf2docx/pkg/types"
)

// mockCommander records soffice invocations and simulates its output.
type mockCommander struct {
	existing map[string]bool // paths for which Stat succeeds
	onPath   map[string]string
	run      func(name string, args []string) ([]byte, error)

	gotName string
	gotArgs []string
}

func (m *mockCommander) LookPath(file string) (string, error) {
	if p, ok := m.onPath[file]; ok {
		return p, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockCommander) Stat(path string) error {
	if m.existing[path] {
		return nil
	}
	return os.ErrNotExist
}

func (m *mockCommander) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.gotName, m.gotArgs = name, args
	if m.run != nil {
		return m.run(name, args)
	}
	return nil, nil
}

// fakeSoffice writes a DOCX named after the input into --outdir, the way
// LibreOffice does.
func fakeSoffice(content string) func(string, []string) ([]byte, error) {
	return func(_ string, args []string) ([]byte, error) {
		var outDir string
		for i, a := range args {
			if a == "--outdir" && i+1 < len(args) {
				outDir = args[i+1]
			}
		}
		input := args[len(args)-1]
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(outDir, base+".docx"), []byte(content), 0o644); err != nil {
			return nil, err
		}
		return []byte("convert " + input + " -> " + base + ".docx using filter : MS Word 2007 XML"), nil
	}
}

func TestFindSoffice(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		cmd        *mockCommander
		want       string
		wantErr    string
	}{
		{
			name:       "configured path exists",
			configured: "/custom/soffice",
			cmd:        &mockCommander{existing: map[string]bool{"/custom/soffice": true}},
			want:       "/custom/soffice",
		},
		{
			name:       "configured path missing does not fall back",
			configured: "/custom/soffice",
			cmd: &mockCommander{
				existing: map[string]bool{"/usr/bin/soffice": true},
			},
			wantErr: "soffice not found at /custom/soffice",
		},
		{
			name: "first well-known location wins",
			cmd: &mockCommander{existing: map[string]bool{
				"/usr/bin/libreoffice":      true,
				"/opt/homebrew/bin/soffice": true,
			}},
			want: "/usr/bin/libreoffice",
		},
		{
			name: "falls back to PATH",
			cmd:  &mockCommander{onPath: map[string]string{"libreoffice": "/snap/bin/libreoffice"}},
			want: "/snap/bin/libreoffice",
		},
		{
			name:    "not installed",
			cmd:     &mockCommander{},
			wantErr: "LibreOffice not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := findSoffice(tt.configured, tt.cmd)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLibreOfficeConvert(t *testing.T) {
	dir := t.TempDir()
	pdfPath := testpdf.Path(t, dir, "report.pdf", testpdf.Options{}, []string{"one"}, []string{"two"})
	docxPath := filepath.Join(dir, "report.docx")

	cmd := &mockCommander{
		existing: map[string]bool{"/usr/bin/soffice": true},
		run:      fakeSoffice("docx bytes"),
	}
	conv, err := newLibreOfficeConverter("", cmd)
	require.NoError(t, err)
	assert.Equal(t, types.BackendLibreOffice, conv.Name())
	assert.Equal(t, "/usr/bin/soffice", conv.Binary())

	res, err := ConvertFile(context.Background(), conv, pdfPath, docxPath, FullRange())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)

	data, err := os.ReadFile(docxPath)
	require.NoError(t, err)
	assert.Equal(t, "docx bytes", string(data))

	assert.Equal(t, "/usr/bin/soffice", cmd.gotName)
	assert.Contains(t, cmd.gotArgs, "--headless")
	assert.Contains(t, cmd.gotArgs, "--infilter=writer_pdf_import")
	assert.Contains(t, cmd.gotArgs, "docx:MS Word 2007 XML")
	assert.True(t, strings.HasPrefix(cmd.gotArgs[0], "-env:UserInstallation=file://"))

	absPDF, err := filepath.Abs(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, absPDF, cmd.gotArgs[len(cmd.gotArgs)-1], "full range converts the original file")
}

func TestLibreOfficeConvertPartialRange(t *testing.T) {
	dir := t.TempDir()
	pdfPath := testpdf.Path(t, dir, "report.pdf", testpdf.Options{},
		[]string{"one"}, []string{"two"}, []string{"three"})
	docxPath := filepath.Join(dir, "report.docx")

	var trimmedPages int
	cmd := &mockCommander{
		existing: map[string]bool{"/usr/bin/soffice": true},
		run: func(name string, args []string) ([]byte, error) {
			src, err := openSource(args[len(args)-1])
			if err != nil {
				return nil, err
			}
			trimmedPages = src.pageCount()
			src.close()
			return fakeSoffice("partial")(name, args)
		},
	}
	conv, err := newLibreOfficeConverter("", cmd)
	require.NoError(t, err)

	_, err = ConvertFile(context.Background(), conv, pdfPath, docxPath, PageRange{Start: 2, End: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, trimmedPages)
	assert.Equal(t, "selection.pdf", filepath.Base(cmd.gotArgs[len(cmd.gotArgs)-1]))
	assert.FileExists(t, docxPath)
}

func TestLibreOfficeConvertFailures(t *testing.T) {
	tests := []struct {
		name    string
		run     func(string, []string) ([]byte, error)
		wantErr string
	}{
		{
			name: "soffice exits non-zero",
			run: func(string, []string) ([]byte, error) {
				return []byte("Error: source file could not be loaded"), errors.New("exit status 1")
			},
			wantErr: "LibreOffice failed: exit status 1: Error: source file could not be loaded",
		},
		{
			name: "soffice succeeds without output",
			run: func(string, []string) ([]byte, error) {
				return []byte("Error: no export filter"), nil
			},
			wantErr: "LibreOffice produced no output",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			pdfPath := testpdf.Path(t, dir, "in.pdf", testpdf.Options{}, []string{"x"})
			docxPath := filepath.Join(dir, "out.docx")

			cmd := &mockCommander{existing: map[string]bool{"/usr/bin/soffice": true}, run: tt.run}
			conv, err := newLibreOfficeConverter("", cmd)
			require.NoError(t, err)

			_, err = ConvertFile(context.Background(), conv, pdfPath, docxPath, FullRange())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NoFileExists(t, docxPath)
		})
	}
}
