// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2docx/pkg/types"
)

// fakeConverter implements Converter for testing. It hands out a
// fakeDocument or fails to open, depending on configuration.
type fakeConverter struct {
	openErr error
	doc     *fakeDocument
}

func (f *fakeConverter) Name() types.ConversionBackend { return "fake" }

func (f *fakeConverter) Open(ctx context.Context, pdfPath string) (Document, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.doc, nil
}

type fakeDocument struct {
	pages      int
	convertErr error
	closeErr   error

	converted PageRange
	calls     int
	closes    int
}

func (d *fakeDocument) PageCount() int { return d.pages }

func (d *fakeDocument) Convert(ctx context.Context, docxPath string, r PageRange) error {
	d.calls++
	d.converted = r
	return d.convertErr
}

func (d *fakeDocument) Close() error {
	d.closes++
	return d.closeErr
}

func TestPageRangeResolve(t *testing.T) {
	tests := []struct {
		name      string
		r         PageRange
		pages     int
		wantFirst int
		wantLast  int
		wantErr   error
	}{
		{name: "zero value is full document", r: PageRange{}, pages: 5, wantFirst: 1, wantLast: 5},
		{name: "explicit full range", r: PageRange{Start: 1, End: 5}, pages: 5, wantFirst: 1, wantLast: 5},
		{name: "single page", r: PageRange{Start: 3, End: 3}, pages: 5, wantFirst: 3, wantLast: 3},
		{name: "open end", r: PageRange{Start: 4}, pages: 5, wantFirst: 4, wantLast: 5},
		{name: "end clamped to page count", r: PageRange{Start: 2, End: 99}, pages: 5, wantFirst: 2, wantLast: 5},
		{name: "start beyond last page", r: PageRange{Start: 6}, pages: 5, wantErr: ErrInvalidRange},
		{name: "start after end", r: PageRange{Start: 4, End: 2}, pages: 5, wantErr: ErrInvalidRange},
		{name: "negative start", r: PageRange{Start: -1}, pages: 5, wantErr: ErrInvalidRange},
		{name: "negative end", r: PageRange{End: -2}, pages: 5, wantErr: ErrInvalidRange},
		{name: "empty document", r: PageRange{}, pages: 0, wantErr: ErrNoPages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last, err := tt.r.Resolve(tt.pages)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestPageRangeStringAndFull(t *testing.T) {
	assert.Equal(t, "1-", FullRange().String())
	assert.Equal(t, "2-7", PageRange{Start: 2, End: 7}.String())
	assert.True(t, FullRange().IsFull())
	assert.True(t, PageRange{Start: 1}.IsFull())
	assert.False(t, PageRange{Start: 2}.IsFull())
	assert.False(t, PageRange{End: 3}.IsFull())
}

func TestConvertFile(t *testing.T) {
	tests := []struct {
		name       string
		conv       *fakeConverter
		r          PageRange
		wantErr    string
		wantCalls  int
		wantCloses int
	}{
		{
			name:       "success closes handle",
			conv:       &fakeConverter{doc: &fakeDocument{pages: 3}},
			wantCalls:  1,
			wantCloses: 1,
		},
		{
			name:       "conversion failure still closes handle",
			conv:       &fakeConverter{doc: &fakeDocument{pages: 3, convertErr: errors.New("disk full")}},
			wantErr:    "disk full",
			wantCalls:  1,
			wantCloses: 1,
		},
		{
			name:       "invalid range fails before converting and closes handle",
			conv:       &fakeConverter{doc: &fakeDocument{pages: 3}},
			r:          PageRange{Start: 9},
			wantErr:    "invalid page range",
			wantCloses: 1,
		},
		{
			name:       "empty document",
			conv:       &fakeConverter{doc: &fakeDocument{pages: 0}},
			wantErr:    "document has no pages",
			wantCloses: 1,
		},
		{
			name:       "close failure reported after successful conversion",
			conv:       &fakeConverter{doc: &fakeDocument{pages: 1, closeErr: errors.New("busy")}},
			wantErr:    "closing in.pdf: busy",
			wantCalls:  1,
			wantCloses: 1,
		},
		{
			name:       "conversion error wins over close error",
			conv:       &fakeConverter{doc: &fakeDocument{pages: 1, convertErr: errors.New("bad font"), closeErr: errors.New("busy")}},
			wantErr:    "bad font",
			wantCalls:  1,
			wantCloses: 1,
		},
		{
			name:    "open failure",
			conv:    &fakeConverter{openErr: errors.New("no such file")},
			wantErr: "no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ConvertFile(context.Background(), tt.conv, "in.pdf", "out.docx", tt.r)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.conv.doc.pages, res.PageCount)
				assert.Equal(t, 1, res.First)
				assert.Equal(t, tt.conv.doc.pages, res.Last)
			}
			if tt.conv.doc != nil {
				assert.Equal(t, tt.wantCalls, tt.conv.doc.calls, "convert calls")
				assert.Equal(t, tt.wantCloses, tt.conv.doc.closes, "close calls")
			}
		})
	}
}

func TestConvertFilePassesRange(t *testing.T) {
	doc := &fakeDocument{pages: 10}
	res, err := ConvertFile(context.Background(), &fakeConverter{doc: doc}, "in.pdf", "out.docx", PageRange{Start: 2, End: 4})
	require.NoError(t, err)
	assert.Equal(t, PageRange{Start: 2, End: 4}, doc.converted)
	assert.Equal(t, Result{PageCount: 10, First: 2, Last: 4}, res)
}

func TestWriteAtomic(t *testing.T) {
	t.Run("writes and sets permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.docx")
		err := writeAtomic(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "payload")
			return err
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	})

	t.Run("failure leaves no file and no temp", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.docx")
		err := writeAtomic(path, func(w io.Writer) error {
			_, _ = io.WriteString(w, "partial")
			return errors.New("boom")
		})
		require.EqualError(t, err, "boom")
		assert.NoFileExists(t, path)
		assertDirEmpty(t, dir)
	})

	t.Run("failure keeps previous output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.docx")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
		err := writeAtomic(path, func(io.Writer) error { return errors.New("boom") })
		require.Error(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "old", string(data))
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.docx")
		called := false
		err := writeAtomic(path, func(io.Writer) error { called = true; return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "creating output file")
		assert.False(t, called)
	})

	t.Run("destination is a directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "taken")
		require.NoError(t, os.Mkdir(path, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(path, "keep"), nil, 0o644))
		err := writeAtomic(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "x")
			return err
		})
		require.Error(t, err)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp file should be removed")
	})
}

func TestNew(t *testing.T) {
	c, err := New(types.ConversionConfig{})
	require.NoError(t, err)
	assert.Equal(t, types.BackendNative, c.Name())

	c, err = New(types.ConversionConfig{Backend: types.BackendNative})
	require.NoError(t, err)
	assert.Equal(t, types.BackendNative, c.Name())

	_, err = New(types.ConversionConfig{Backend: "pandoc"})
	require.ErrorIs(t, err, ErrUnknownBackend)
	assert.Contains(t, err.Error(), `"pandoc"`)

	_, err = New(types.ConversionConfig{Backend: types.BackendLibreOffice, SofficePath: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soffice not found")
}

// readDocumentXML returns word/document.xml from a DOCX file.
func readDocumentXML(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("%s has no word/document.xml", path)
	return ""
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
