package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	flagutils "github.com/temirov/plastic-deck/internal/utils/flags"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatJSON OutputFormat = OutputFormat("json")
	OutputFormatYAML OutputFormat = OutputFormat("yaml")
)

const (
	jsonIndentationConstant                 = "  "
	yamlIndentationConstant                 = 2
	unsupportedOutputFormatTemplateConstant = "unsupported output format: %s"
)

// SupportedOutputFormats lists the accepted output formats, default first.
func SupportedOutputFormats() []OutputFormat {
	return []OutputFormat{OutputFormatJSON, OutputFormatYAML}
}

// ParseOutputFormat normalizes a configured output format. A blank value selects JSON.
func ParseOutputFormat(value string) (OutputFormat, error) {
	if len(strings.TrimSpace(value)) == 0 {
		return OutputFormatJSON, nil
	}
	outputFormat, supported := flagutils.MatchChoice(value, SupportedOutputFormats())
	if !supported {
		return "", fmt.Errorf(unsupportedOutputFormatTemplateConstant, value)
	}
	return outputFormat, nil
}

// ResultRenderer writes command results to an output stream.
type ResultRenderer struct {
	writer io.Writer
	format OutputFormat
}

// NewResultRenderer constructs a renderer for the requested format.
func NewResultRenderer(writer io.Writer, format OutputFormat) ResultRenderer {
	return ResultRenderer{writer: writer, format: format}
}

// Render encodes value followed by a newline.
func (renderer ResultRenderer) Render(value any) error {
	switch renderer.format {
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(renderer.writer)
		encoder.SetIndent(yamlIndentationConstant)
		if encodeError := encoder.Encode(value); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(renderer.writer)
		encoder.SetIndent("", jsonIndentationConstant)
		return encoder.Encode(value)
	}
}
