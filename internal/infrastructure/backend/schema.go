package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const documentSchemaURL = "processed_document.json"

// documentSchema describes the payload the backend is expected to send.
// Decoding still applies defaults; violations are only reported.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "fileId": {"type": ["string", "null"]},
    "filename": {"type": "string"},
    "fileSize": {"type": "number", "minimum": 0},
    "fileType": {"type": "string"},
    "category": {"type": "string"},
    "confidenceScore": {"type": "number", "minimum": 0, "maximum": 1},
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "value"],
        "properties": {
          "type": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    },
    "dates": {"type": "array"},
    "tables": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "table_name": {"type": "string"},
          "headers": {"type": "array", "items": {"type": "string"}},
          "rows": {"type": "array", "items": {"type": "array"}}
        }
      }
    }
  },
  "required": ["fileId", "category"]
}`

type payloadLinter struct {
	schema *jsonschema.Schema
	logger *slog.Logger
}

func newPayloadLinter(logger *slog.Logger) *payloadLinter {
	schema, err := compileDocumentSchema()
	if err != nil {
		logger.Error("backend_schema_compile_failed", "error", err)
		return &payloadLinter{logger: logger}
	}
	return &payloadLinter{schema: schema, logger: logger}
}

func compileDocumentSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(documentSchemaURL, strings.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(documentSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// lint logs schema violations; it never rejects a payload.
func (l *payloadLinter) lint(raw []byte) []string {
	if l == nil || l.schema == nil {
		return nil
	}
	var v any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&v); err != nil {
		return nil
	}
	err := l.schema.Validate(v)
	if err == nil {
		return nil
	}

	violations := []string{err.Error()}
	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		violations = violations[:0]
		for _, cause := range flattenCauses(validationErr) {
			violations = append(violations, cause.InstanceLocation+": "+cause.Message)
		}
	}
	l.logger.Warn("backend_payload_schema_drift", "violations", violations)
	return violations
}

func flattenCauses(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	out := make([]*jsonschema.ValidationError, 0, len(err.Causes))
	for _, cause := range err.Causes {
		out = append(out, flattenCauses(cause)...)
	}
	return out
}
