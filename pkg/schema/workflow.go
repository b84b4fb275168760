package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Workflow is the parsed declarative workflow definition.
// Stages and jobs keep their document order, which drives sibling order in the graph.
type Workflow struct {
	Name   string          `yaml:"name,omitempty"`
	Stages StageList       `yaml:"stages,omitempty"`
	Jobs   JobList         `yaml:"jobs,omitempty"`
	Gates  map[string]Gate `yaml:"gates,omitempty"`
	On     *Triggers       `yaml:"on,omitempty"`
}

// Stage groups jobs and participates in the stage-level dependency graph.
type Stage struct {
	Name  string   `yaml:"-"`
	Needs []string `yaml:"needs,omitempty"`
}

// Job describes a single unit of work.
type Job struct {
	ID       string    `yaml:"-"`
	Name     string    `yaml:"name,omitempty"`
	Stage    string    `yaml:"stage,omitempty"`
	Needs    []string  `yaml:"needs,omitempty"`
	Gate     string    `yaml:"gate,omitempty"`
	If       string    `yaml:"if,omitempty"`
	Strategy *Strategy `yaml:"strategy,omitempty"`
}

// HasMatrix reports whether the job expands into several concrete jobs.
func (j Job) HasMatrix() bool {
	return j.Strategy != nil && len(j.Strategy.Matrix) > 0
}

// Strategy holds the job expansion strategy.
type Strategy struct {
	Matrix Matrix `yaml:"matrix,omitempty"`
}

// Matrix is an ordered list of dimensions; each dimension lists its values.
type Matrix []Dimension

// Dimension is one matrix axis.
type Dimension struct {
	Name   string
	Values []string
}

// Gate is a manual checkpoint guarding a job.
type Gate struct {
	If        string               `yaml:"if,omitempty"`
	Inputs    map[string]GateInput `yaml:"inputs,omitempty"`
	Reviewers GateReviewers        `yaml:"reviewers,omitempty"`
}

// GateInput is an input filled when the gate is triggered.
type GateInput struct {
	Type        string       `yaml:"type,omitempty"`
	Default     any          `yaml:"default,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Options     *GateOptions `yaml:"options,omitempty"`
}

// GateOptions restricts the values of a gate input.
type GateOptions struct {
	Multiple bool  `yaml:"multiple,omitempty"`
	Values   []any `yaml:"values,omitempty"`
}

// GateReviewers restricts who may trigger a gate.
type GateReviewers struct {
	Groups []string `yaml:"groups,omitempty"`
	Users  []string `yaml:"users,omitempty"`
}

// Triggers lists the events declared under `on`, in document order.
type Triggers struct {
	Events    []string
	Schedules []Schedule
}

// Schedule is a cron trigger.
type Schedule struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone,omitempty"`
}

// StageList is the ordered `stages` mapping.
type StageList []Stage

// JobList is the ordered `jobs` mapping.
type JobList []Job

// Get returns the stage with the given name.
func (l StageList) Get(name string) (Stage, bool) {
	for _, s := range l {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// Get returns the job with the given id.
func (l JobList) Get(id string) (Job, bool) {
	for _, j := range l {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}

// UnmarshalYAML decodes the stage mapping preserving key order.
func (l *StageList) UnmarshalYAML(value *yaml.Node) error {
	out := make(StageList, 0, len(value.Content)/2)
	err := eachMapping(value, "stages", func(key string, v *yaml.Node) error {
		var s Stage
		if err := decodeOptional(v, &s); err != nil {
			return fmt.Errorf("stage %s: %w", key, err)
		}
		s.Name = key
		out = append(out, s)
		return nil
	})
	if err != nil {
		return err
	}
	*l = out
	return nil
}

// UnmarshalYAML decodes the job mapping preserving key order.
func (l *JobList) UnmarshalYAML(value *yaml.Node) error {
	out := make(JobList, 0, len(value.Content)/2)
	err := eachMapping(value, "jobs", func(key string, v *yaml.Node) error {
		var j Job
		if err := decodeOptional(v, &j); err != nil {
			return fmt.Errorf("job %s: %w", key, err)
		}
		j.ID = key
		out = append(out, j)
		return nil
	})
	if err != nil {
		return err
	}
	*l = out
	return nil
}

// UnmarshalYAML decodes the matrix mapping preserving dimension order.
func (m *Matrix) UnmarshalYAML(value *yaml.Node) error {
	out := make(Matrix, 0, len(value.Content)/2)
	err := eachMapping(value, "matrix", func(key string, v *yaml.Node) error {
		var values []string
		if err := v.Decode(&values); err != nil {
			return fmt.Errorf("matrix dimension %s: %w", key, err)
		}
		out = append(out, Dimension{Name: key, Values: values})
		return nil
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// UnmarshalYAML accepts both the list form (`on: [push]`) and the mapping form.
func (t *Triggers) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var events []string
		if err := value.Decode(&events); err != nil {
			return fmt.Errorf("on: %w", err)
		}
		t.Events = events
		return nil
	case yaml.MappingNode:
		return eachMapping(value, "on", func(key string, v *yaml.Node) error {
			t.Events = append(t.Events, key)
			if key != "schedule" {
				return nil
			}
			var schedules []Schedule
			if err := decodeOptional(v, &schedules); err != nil {
				return fmt.Errorf("on.schedule: %w", err)
			}
			t.Schedules = append(t.Schedules, schedules...)
			return nil
		})
	default:
		return fmt.Errorf("on: unexpected %s", kindName(value.Kind))
	}
}

func eachMapping(value *yaml.Node, field string, fn func(key string, v *yaml.Node) error) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: expected a mapping, got %s", field, kindName(value.Kind))
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if err := fn(value.Content[i].Value, value.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// decodeOptional decodes v into out, treating an explicit null as the zero value.
func decodeOptional(v *yaml.Node, out any) error {
	if v.Kind == yaml.ScalarNode && v.Tag == "!!null" {
		return nil
	}
	return v.Decode(out)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
