package commands

import (
	"encoding/json"
	"fmt"
	"io"

	apperrors "argus-settings/internal/common/errors"

	"gopkg.in/yaml.v3"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
	formatText = "text"
)

func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

// scalar renders a looked-up value: strings as-is, everything else as
// compact JSON.
func scalar(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func jsonValue(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// FormatError renders err for the stderr error line, prefixed with its
// category when it carries an error code.
func FormatError(err error) string {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return fmt.Sprintf("Error [%s]: %v", apperrors.GetErrorCategory(stdErr.Code), err)
	}
	return fmt.Sprintf("Error: %v", err)
}
