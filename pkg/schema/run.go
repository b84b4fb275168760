package schema

import "time"

// RunJob is the run record of one concrete job.
type RunJob struct {
	ID         string            `json:"id"`
	JobID      string            `json:"job_id"`
	Status     Status            `json:"status"`
	Matrix     map[string]string `json:"matrix,omitempty"`
	GateInputs map[string]any    `json:"gate_inputs,omitempty"`
	Queued     *time.Time        `json:"queued,omitempty"`
	Started    *time.Time        `json:"started,omitempty"`
	Ended      *time.Time        `json:"ended,omitempty"`
}

// JobEvent records a gate approval for a job.
type JobEvent struct {
	JobID    string         `json:"job_id"`
	Inputs   map[string]any `json:"inputs,omitempty"`
	Username string         `json:"username,omitempty"`
}

// RunEvent is the trigger that started a workflow run.
type RunEvent struct {
	EventName string `json:"event_name"`
}

// WorkflowRun is the workflow-level run record.
type WorkflowRun struct {
	ID        string     `json:"id"`
	Status    Status     `json:"status,omitempty"`
	Event     RunEvent   `json:"event"`
	JobEvents []JobEvent `json:"job_events,omitempty"`
}
