// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"

	"github.com/pdiddy/pdf2docx/internal/container"
	"github.com/pdiddy/pdf2docx/pkg/types"
)

// New builds the converter selected by cfg.Backend. An empty backend
// selects the native converter.
func New(cfg types.ConversionConfig) (Converter, error) {
	switch cfg.Backend {
	case "", types.BackendNative:
		return NewNativeConverter(), nil
	case types.BackendLibreOffice:
		return NewLibreOfficeConverter(cfg.SofficePath)
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewContainerConverter(rt, cfg.ContainerImage)
	default:
		return nil, fmt.Errorf("%w %q: use native, libreoffice, or container", ErrUnknownBackend, cfg.Backend)
	}
}
