// Package scheduler resolves workflow schedule triggers to fire times.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rendis/wfgraph/pkg/schema"
)

// Calendar parses schedule triggers and computes their next fire time.
type Calendar struct {
	parser cron.Parser
}

// NewCalendar creates a Calendar accepting standard five-field expressions
// and @-descriptors.
func NewCalendar() *Calendar {
	return &Calendar{
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Parse validates a schedule, including its optional timezone.
func (c *Calendar) Parse(s schema.Schedule) (cron.Schedule, error) {
	expr := s.Cron
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
		}
		expr = "CRON_TZ=" + s.Timezone + " " + s.Cron
	}
	sched, err := c.parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", s.Cron, err)
	}
	return sched, nil
}

// NextRun computes the next fire time of s after from.
func (c *Calendar) NextRun(s schema.Schedule, from time.Time) (time.Time, error) {
	sched, err := c.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}
