package definition

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/wfgraph/pkg/schema"
)

const workflowSchemaURL = "https://wfgraph.dev/schemas/workflow.json"

// workflowSchemaJSON describes the shape of a workflow document.
// Cross references (needs, stage, gate) are checked by lint.
const workflowSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "name": { "type": "string" },
    "stages": {
      "type": ["object", "null"],
      "additionalProperties": {
        "type": ["object", "null"],
        "properties": {
          "needs": { "$ref": "#/$defs/needs" }
        }
      }
    },
    "jobs": {
      "type": ["object", "null"],
      "additionalProperties": { "$ref": "#/$defs/job" }
    },
    "gates": {
      "type": ["object", "null"],
      "additionalProperties": { "$ref": "#/$defs/gate" }
    },
    "on": {
      "oneOf": [
        { "type": "array", "items": { "type": "string" } },
        { "$ref": "#/$defs/triggers" },
        { "type": "null" }
      ]
    }
  },
  "$defs": {
    "needs": {
      "type": "array",
      "items": { "type": "string", "minLength": 1 }
    },
    "job": {
      "type": ["object", "null"],
      "properties": {
        "name": { "type": "string" },
        "stage": { "type": "string" },
        "needs": { "$ref": "#/$defs/needs" },
        "gate": { "type": "string" },
        "if": { "type": "string" },
        "strategy": {
          "type": "object",
          "properties": {
            "matrix": {
              "type": "object",
              "additionalProperties": {
                "type": "array",
                "items": { "type": ["string", "number", "boolean"] }
              }
            }
          }
        }
      }
    },
    "gate": {
      "type": ["object", "null"],
      "properties": {
        "if": { "type": "string" },
        "inputs": {
          "type": "object",
          "additionalProperties": {
            "type": ["object", "null"],
            "properties": {
              "type": { "enum": ["boolean", "number", "string"] },
              "description": { "type": "string" },
              "options": {
                "type": "object",
                "properties": {
                  "multiple": { "type": "boolean" },
                  "values": { "type": "array" }
                }
              }
            }
          }
        },
        "reviewers": {
          "type": "object",
          "properties": {
            "groups": { "type": "array", "items": { "type": "string" } },
            "users": { "type": "array", "items": { "type": "string" } }
          }
        }
      }
    },
    "triggers": {
      "type": "object",
      "properties": {
        "schedule": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["cron"],
            "properties": {
              "cron": { "type": "string", "minLength": 1 },
              "timezone": { "type": "string" }
            }
          }
        }
      }
    }
  }
}`

func compileWorkflowSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(workflowSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal workflow schema: %w", err)
	}
	if err := c.AddResource(workflowSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add workflow schema resource: %w", err)
	}
	compiled, err := c.Compile(workflowSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile workflow schema: %w", err)
	}
	return compiled, nil
}

// toJSONValue round-trips a decoded YAML value through JSON so that numbers
// become json.Number, as the jsonschema library expects.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toSchemaError converts a jsonschema.ValidationError into a VALIDATION_ERROR
// listing every leaf violation with its instance location.
func toSchemaError(err error) *schema.Error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}
	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}
	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}
	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
