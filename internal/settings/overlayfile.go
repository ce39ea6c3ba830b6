package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	apperrors "argus-settings/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// overlaySchema constrains overlay documents. Every object is closed so a
// misspelled key is reported instead of silently ignored.
var overlaySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "DEBUG": {"type": "boolean"},
    "SECRET_KEY": {"type": "string"},
    "ALLOWED_HOSTS": {"type": "array", "items": {"type": "string"}},
    "TIME_ZONE": {"type": "string", "minLength": 1},
    "DATABASE": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "ENGINE": {"type": "string", "enum": ["postgresql"]},
        "NAME": {"type": "string"},
        "USER": {"type": "string"},
        "PASSWORD": {"type": "string"},
        "HOST": {"type": "string"},
        "PORT": {"type": "integer", "minimum": 0, "maximum": 65535},
        "SSLMODE": {"type": "string"}
      }
    },
    "CHANNEL_LAYER": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "BACKEND": {"type": "string", "enum": ["redis", "inmemory"]},
        "HOST": {"type": "string"},
        "PORT": {"type": "integer", "minimum": 0, "maximum": 65535},
        "DB": {"type": "integer", "minimum": 0}
      }
    },
    "EMAIL": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "BACKEND": {"type": "string", "enum": ["smtp", "ses", "console"]},
        "HOST": {"type": "string"},
        "PORT": {"type": "integer", "minimum": 0, "maximum": 65535},
        "USER": {"type": "string"},
        "PASSWORD": {"type": "string"},
        "USE_TLS": {"type": "boolean"},
        "AWS_REGION": {"type": "string"}
      }
    },
    "DEFAULT_FROM_EMAIL": {"type": "string"},
    "SMS_GATEWAY_ADDRESS": {"type": "string"},
    "SEND_NOTIFICATIONS": {"type": "boolean"},
    "MEDIA_PLUGINS": {
      "type": "array",
      "uniqueItems": true,
      "items": {"type": "string", "pattern": "` + jsonEscape(IdentifierPattern) + `"}
    },
    "FRONTEND_URL": {"type": "string"},
    "COOKIE_DOMAIN": {"type": "string"},
    "CORS_ALLOWED_ORIGINS": {"type": "array", "items": {"type": "string"}},
    "LOGGING": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "LEVEL": {"type": "string", "enum": ["debug", "info", "warn", "warning", "error"]},
        "FORMAT": {"type": "string", "enum": ["console", "json"]}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func overlayValidator() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(overlaySchema))
	})
	return compiledSchema, schemaErr
}

func jsonEscape(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}

// ReadOverlayFile reads and validates a YAML overlay document. An empty file
// is a valid, empty overlay.
func ReadOverlayFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewOverlayReadFailedError(path, err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewOverlayReadFailedError(path, err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	if problems, err := ValidateOverlayDocument(doc); err != nil {
		return nil, apperrors.NewOverlayReadFailedError(path, err)
	} else if len(problems) > 0 {
		return nil, apperrors.NewOverlayInvalidError(path, problems)
	}
	return doc, nil
}

// ValidateOverlayDocument checks doc against the overlay schema and returns one
// message per violation.
func ValidateOverlayDocument(doc map[string]interface{}) ([]string, error) {
	schema, err := overlayValidator()
	if err != nil {
		return nil, fmt.Errorf("compile overlay schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		problems[i] = desc.String()
	}
	return problems, nil
}

// ApplyOverlay returns a copy of s with doc merged over it. Nested mappings
// merge key by key; scalars and lists replace the existing value.
func ApplyOverlay(s *Settings, doc map[string]interface{}) (*Settings, error) {
	current, err := toMap(s)
	if err != nil {
		return nil, err
	}

	merged := deepMerge(current, doc)

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged settings: %w", err)
	}
	var out Settings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode merged settings: %w", err)
	}
	return &out, nil
}

func toMap(s *Settings) (map[string]interface{}, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return m, nil
}

func deepMerge(dst, src map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		result[k] = v
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := result[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			result[k] = deepMerge(dstMap, srcMap)
			continue
		}
		result[k] = v
	}
	return result
}
