package definition

import (
	"fmt"

	"github.com/rendis/wfgraph/internal/diagram"
	"github.com/rendis/wfgraph/internal/scheduler"
	"github.com/rendis/wfgraph/pkg/schema"
)

// lint reports problems the graph tolerates as warnings: dangling
// references, name collisions and unparseable schedules, which only lose
// their next fire time.
func lint(wf *schema.Workflow, cal *scheduler.Calendar) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	for _, st := range wf.Stages {
		for i, need := range st.Needs {
			if _, ok := wf.Stages.Get(need); !ok {
				result.AddWarning(fmt.Sprintf("/stages/%s/needs/%d", st.Name, i), schema.ErrCodeNotFound,
					fmt.Sprintf("stage %q needs unknown stage %q", st.Name, need))
			}
		}
	}

	for _, job := range wf.Jobs {
		lintJob(wf, job, result)
	}

	if wf.On != nil {
		for i, s := range wf.On.Schedules {
			if _, err := cal.Parse(s); err != nil {
				result.AddWarning(fmt.Sprintf("/on/schedule/%d/cron", i), schema.ErrCodeValidation, err.Error())
			}
		}
	}

	for _, c := range diagram.Collisions(wf) {
		where := "top level"
		if c.Scope != "" {
			where = "stage " + c.Scope
		}
		result.AddWarning("/jobs/"+c.JobID, schema.ErrCodeInvalidInput,
			fmt.Sprintf("%s %q already exists in %s, not drawn", c.Kind, c.Name, where))
	}
	return result
}

func lintJob(wf *schema.Workflow, job schema.Job, result *schema.ValidationResult) {
	path := "/jobs/" + job.ID

	if job.Stage != "" {
		if _, ok := wf.Stages.Get(job.Stage); !ok {
			result.AddWarning(path+"/stage", schema.ErrCodeNotFound,
				fmt.Sprintf("job %q is in unknown stage %q, drawn at top level", job.ID, job.Stage))
		}
	}
	if job.Gate != "" {
		if _, ok := wf.Gates[job.Gate]; !ok {
			result.AddWarning(path+"/gate", schema.ErrCodeNotFound,
				fmt.Sprintf("job %q uses unknown gate %q", job.ID, job.Gate))
		}
	}
	for i, need := range job.Needs {
		dep, ok := wf.Jobs.Get(need)
		switch {
		case !ok:
			result.AddWarning(fmt.Sprintf("%s/needs/%d", path, i), schema.ErrCodeNotFound,
				fmt.Sprintf("job %q needs unknown job %q", job.ID, need))
		case placement(wf, dep) != placement(wf, job):
			result.AddWarning(fmt.Sprintf("%s/needs/%d", path, i), schema.ErrCodeInvalidInput,
				fmt.Sprintf("job %q needs %q from another stage, no edge is drawn", job.ID, need))
		}
	}
	if job.HasMatrix() {
		for _, dim := range job.Strategy.Matrix {
			if len(dim.Values) == 0 {
				result.AddWarning(path+"/strategy/matrix/"+dim.Name, schema.ErrCodeInvalidInput,
					fmt.Sprintf("matrix dimension %q has no values, job %q expands to nothing", dim.Name, job.ID))
			}
		}
	}
}

// placement is the stage a job is drawn in, or "" for the top level.
func placement(wf *schema.Workflow, job schema.Job) string {
	if _, ok := wf.Stages.Get(job.Stage); ok {
		return job.Stage
	}
	return ""
}
