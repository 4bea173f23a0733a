package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"resumescan/internal/errors"
	"resumescan/internal/types"
	"resumescan/internal/utils"
)

// DecodeResume parses a structured resume. The encoding comes from the
// file name's extension; for stdin or unknown extensions the content is
// sniffed, treating a leading '{' as JSON and anything else as YAML.
func DecodeResume(data []byte, filename string) (*types.ResumeRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "Resume input is empty", nil)
	}

	encoding := utils.ResumeEncoding(filename)
	if encoding == utils.EncodingUnknown {
		encoding = sniffEncoding(trimmed)
	}

	var record types.ResumeRecord
	var err error
	switch encoding {
	case utils.EncodingJSON:
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		err = dec.Decode(&record)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(trimmed))
		dec.KnownFields(true)
		err = dec.Decode(&record)
	}
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to parse resume as %s", encoding), err)
	}
	return &record, nil
}

func sniffEncoding(data []byte) string {
	if data[0] == '{' {
		return utils.EncodingJSON
	}
	return utils.EncodingYAML
}
