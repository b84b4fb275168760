// Package definition turns workflow YAML text into a checked definition tree.
package definition

import (
	"bytes"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/rendis/wfgraph/internal/scheduler"
	"github.com/rendis/wfgraph/pkg/schema"
)

// Loader parses and checks workflow definitions. It is safe for concurrent use.
type Loader struct {
	workflowSchema *jsonschema.Schema
	calendar       *scheduler.Calendar
}

// NewLoader creates a Loader with the workflow schema pre-compiled.
func NewLoader() (*Loader, error) {
	compiled, err := compileWorkflowSchema()
	if err != nil {
		return nil, err
	}
	return &Loader{workflowSchema: compiled, calendar: scheduler.NewCalendar()}, nil
}

// Load parses data, validates its shape and lints cross references.
// Warnings never fail the load; they are returned for logging.
func (l *Loader) Load(data []byte) (*schema.Workflow, *schema.ValidationResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, schema.NewError(schema.ErrCodeInvalidInput, "empty workflow definition")
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeParse, "invalid workflow yaml").WithCause(err)
	}
	doc, err := toJSONValue(raw)
	if err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeValidation, "workflow document is not a plain mapping").WithCause(err)
	}
	if err := l.workflowSchema.Validate(doc); err != nil {
		return nil, nil, toSchemaError(err)
	}

	var wf schema.Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeParse, "decode workflow").WithCause(err)
	}

	result := lint(&wf, l.calendar)
	if err := result.ToError(); err != nil {
		return nil, result, err
	}
	return &wf, result, nil
}
