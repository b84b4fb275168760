// Package matrix expands matrix strategies into concrete derived jobs.
package matrix

import (
	"sort"
	"strings"

	"github.com/rendis/wfgraph/pkg/schema"
)

// Combination assigns one value to every matrix dimension.
type Combination map[string]string

// Derived is a concrete job produced from a matrix job.
type Derived struct {
	Name        string
	JobID       string
	Combination Combination
}

// Expansion maps a matrix job id to its derived jobs in combination order.
type Expansion map[string][]Derived

// Combinations returns the cartesian product of the matrix dimensions in
// declaration order. A dimension without values yields no combination.
func Combinations(m schema.Matrix) []Combination {
	if len(m) == 0 {
		return nil
	}
	var out []Combination
	current := make(Combination, len(m))

	var walk func(i int)
	walk = func(i int) {
		if i == len(m) {
			c := make(Combination, len(current))
			for k, v := range current {
				c[k] = v
			}
			out = append(out, c)
			return
		}
		dim := m[i]
		prev, had := current[dim.Name]
		for _, v := range dim.Values {
			current[dim.Name] = v
			walk(i + 1)
		}
		if had {
			current[dim.Name] = prev
		} else {
			delete(current, dim.Name)
		}
	}
	walk(0)
	return out
}

var valueEscaper = strings.NewReplacer(
	"%", "%25",
	"/", "%2F",
	`\`, "%5C",
	"-", "%2D",
	",", "%2C",
	" ", "%20",
)

// Name builds the derived job name: the job id followed by the combination
// values in sorted-key order, joined with "-". Values are escaped so two
// distinct combinations never produce the same name.
func Name(jobID string, c Combination) string {
	var b strings.Builder
	b.WriteString(jobID)
	for _, k := range sortedKeys(c) {
		b.WriteByte('-')
		b.WriteString(valueEscaper.Replace(c[k]))
	}
	return b.String()
}

// Key renders the combination as "k:v, k:v" with sorted keys.
func Key(c Combination) string {
	keys := sortedKeys(c)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+c[k])
	}
	return strings.Join(parts, ", ")
}

// Expand computes derived jobs for every matrix job in jobs.
func Expand(jobs schema.JobList) Expansion {
	exp := make(Expansion)
	for _, j := range jobs {
		if !j.HasMatrix() {
			continue
		}
		combos := Combinations(j.Strategy.Matrix)
		derived := make([]Derived, 0, len(combos))
		for _, c := range combos {
			derived = append(derived, Derived{Name: Name(j.ID, c), JobID: j.ID, Combination: c})
		}
		exp[j.ID] = derived
	}
	return exp
}

// Resolve returns every derived name of a matrix job, or ref itself.
func (e Expansion) Resolve(ref string) []string {
	derived, ok := e[ref]
	if !ok {
		return []string{ref}
	}
	names := make([]string, 0, len(derived))
	for _, d := range derived {
		names = append(names, d.Name)
	}
	return names
}

// RewriteNeeds resolves every reference, keeping order and dropping duplicates.
func (e Expansion) RewriteNeeds(needs []string) []string {
	if len(needs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(needs))
	out := make([]string, 0, len(needs))
	for _, ref := range needs {
		for _, name := range e.Resolve(ref) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// RunName resolves a run record to the name of the graph node it belongs to.
func (e Expansion) RunName(run schema.RunJob) string {
	if _, ok := e[run.JobID]; !ok || len(run.Matrix) == 0 {
		return run.JobID
	}
	return Name(run.JobID, Combination(run.Matrix))
}

func sortedKeys(c Combination) []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
