// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of a PDF-to-DOCX conversion run.
type ConversionStatus string

const (
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// ConversionRecord describes one conversion run as stored in the history.
type ConversionRecord struct {
	// ID is the history row identifier; zero before the record is stored.
	ID int64 `json:"id" yaml:"id"`

	// InputPath is the source PDF as given on the command line.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputPath is the destination DOCX as given on the command line.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Backend names the converter that handled the run.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// StartPage and EndPage are the requested range (1-based, EndPage 0 = last).
	StartPage int `json:"start_page" yaml:"start_page"`
	EndPage   int `json:"end_page" yaml:"end_page"`

	// Status is converted or failed.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Error holds the failure description when Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// StartedAt is when the run began (UTC).
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration" yaml:"duration"`
}
