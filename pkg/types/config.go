package types

// ConversionBackend identifies the tool that performs PDF-to-DOCX conversion.
type ConversionBackend string

const (
	BackendNative      ConversionBackend = "native"
	BackendLibreOffice ConversionBackend = "libreoffice"
	BackendContainer   ConversionBackend = "container"
)

// Backends lists every supported backend in preference order.
var Backends = []ConversionBackend{BackendNative, BackendLibreOffice, BackendContainer}

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the conversion tool: native, libreoffice, or container.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// SofficePath overrides LibreOffice binary discovery. Empty means search
	// the well-known install locations and then PATH.
	SofficePath string `json:"soffice_path,omitempty" yaml:"soffice_path,omitempty"`

	// ContainerImage is the image used by the container backend. The image
	// reads a PDF on stdin and writes a DOCX on stdout.
	ContainerImage string `json:"container_image,omitempty" yaml:"container_image,omitempty"`
}

// HistoryConfig holds settings for the optional conversion history.
type HistoryConfig struct {
	// DBPath is the SQLite database file. Empty disables recording.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`

	// MaxResults is the default number of records listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all settings for one pdf2docx invocation.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
