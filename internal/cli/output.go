// Package cli — output.go implements the rendering helpers behind the
// global --output flag.
//
// Every command funnels its structured result through these helpers so
// the three formats stay consistent: "text" is rendered by the command
// itself, "json" and "yaml" marshal the same result struct the text
// view was built from.
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/arbor/internal/model"
)

// Recognized values for the --output flag.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// validateOutputFormat rejects unknown --output values up front so
// commands never get halfway through before the format error surfaces.
func validateOutputFormat() error {
	switch outputFormat {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid output format %q: valid values are text, json, yaml", outputFormat))
	}
}

// isStructuredOutput reports whether --output selected a machine format.
func isStructuredOutput() bool {
	return outputFormat == formatJSON || outputFormat == formatYAML
}

// renderStructured marshals v into the selected machine format.
// JSON uses MarshalIndent for human-skimmable output; YAML is already
// line-oriented. The returned string carries no trailing newline.
func renderStructured(v interface{}) (string, error) {
	switch outputFormat {
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\n"), nil
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// printStructured renders v and writes it to stdout, wrapping marshal
// failures in a CLIError.
func printStructured(v interface{}) error {
	data, err := renderStructured(v)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render output", err)
	}
	fmt.Println(data)
	return nil
}
