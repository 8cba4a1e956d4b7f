// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/pdf2docx/internal/container"
	"github.com/pdiddy/pdf2docx/pkg/types"
)

// DefaultContainerImage is used when no image is configured.
const DefaultContainerImage = "pdf2docx:latest"

// ContainerConverter converts PDFs by piping them through a container image
// that reads a PDF on stdin and writes a DOCX on stdout. It depends on a
// container.Runtime (docker or podman) injected at construction time.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
}

// NewContainerConverter creates a converter that uses the given container
// runtime to run image. It verifies that the image exists locally before
// returning.
func NewContainerConverter(rt container.Runtime, image string) (*ContainerConverter, error) {
	if image == "" {
		image = DefaultContainerImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("conversion image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image}, nil
}

// Name returns types.BackendContainer.
func (c *ContainerConverter) Name() types.ConversionBackend { return types.BackendContainer }

// Open reads and validates the PDF at pdfPath.
func (c *ContainerConverter) Open(ctx context.Context, pdfPath string) (Document, error) {
	src, err := openSource(pdfPath)
	if err != nil {
		return nil, err
	}
	return &containerDocument{conv: c, src: src}, nil
}

type containerDocument struct {
	conv *ContainerConverter
	src  *source
}

func (d *containerDocument) PageCount() int { return d.src.pageCount() }

func (d *containerDocument) Close() error { return d.src.close() }

func (d *containerDocument) Convert(ctx context.Context, docxPath string, r PageRange) error {
	work, err := os.MkdirTemp("", "pdf2docx-container-*")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(work)

	input, err := d.src.selection(r, work)
	if err != nil {
		return err
	}
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening PDF %s: %w", input, err)
	}
	defer f.Close()

	return writeAtomic(docxPath, func(w io.Writer) error {
		cw := &countingWriter{w: w}
		if err := d.conv.runtime.Run(ctx, d.conv.image, f, cw); err != nil {
			return fmt.Errorf("converting %s with %s: %w", d.src.path, d.conv.image, err)
		}
		if cw.n == 0 {
			return fmt.Errorf("%s produced empty output for %s", d.conv.image, d.src.path)
		}
		return nil
	})
}
