// Package validate checks request payloads against JSON schemas before they
// reach domain logic. Action payloads are tagged unions discriminated by an
// "action" field.
package validate

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const jobActionSchema = `{
  "type": "object",
  "required": ["action"],
  "oneOf": [
    {
      "properties": {
        "action": {"const": "select_caregiver"},
        "application_id": {"type": "string", "minLength": 1}
      },
      "required": ["action", "application_id"],
      "additionalProperties": false
    },
    {
      "properties": {
        "action": {"const": "end_job"},
        "review": {
          "type": "object",
          "properties": {
            "rating": {"type": "integer", "minimum": 1, "maximum": 5},
            "body": {"type": "string"}
          },
          "required": ["rating"],
          "additionalProperties": false
        }
      },
      "required": ["action"],
      "additionalProperties": false
    },
    {
      "properties": {
        "action": {"const": "cancel"}
      },
      "required": ["action"],
      "additionalProperties": false
    }
  ]
}`

const orderStatusSchema = `{
  "type": "object",
  "properties": {
    "status": {"enum": ["PENDING", "PAID", "SHIPPED", "CANCELLED"]}
  },
  "required": ["status"],
  "additionalProperties": false
}`

var (
	jobActionValidator   = mustCompile(jobActionSchema)
	orderStatusValidator = mustCompile(orderStatusSchema)
)

func mustCompile(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(err)
	}
	return s
}

// JobAction validates a job action payload.
func JobAction(body []byte) error {
	return check(jobActionValidator, body)
}

// OrderStatus validates an order status update payload.
func OrderStatus(body []byte) error {
	return check(orderStatusValidator, body)
}

func check(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid payload: %s", strings.Join(msgs, "; "))
}
