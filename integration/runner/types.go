package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/lotus-events/pkg/player"
)

// Step actions
const (
	ActionEvent  = "event"
	ActionChoice = "choice"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name   string        `json:"name"`
	Player *player.State `json:"player,omitempty"` // Starting player; server default when nil
	Steps  []TestStep    `json:"steps,omitempty"`
	Cases  []string      `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one request against the session and its expected outcome.
// With MaxAttempts > 1 the step is repeated until its expectations hold.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       string       `json:"action"`
	Option       int          `json:"option,omitempty"`
	MaxAttempts  int          `json:"max_attempts,omitempty"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Status *int `json:"status,omitempty"` // HTTP status, 200 when unset

	// Issued event
	Origin                 *string  `json:"origin,omitempty"`
	Title                  *string  `json:"title,omitempty"`
	Domain                 *string  `json:"domain,omitempty"`
	Options                *int     `json:"options,omitempty"`
	MinOptions             *int     `json:"min_options,omitempty"`
	DescriptionNotContains []string `json:"description_not_contains,omitempty"`

	// Resolution
	Failed *bool `json:"failed,omitempty"`

	// Session after the step
	Tier      *int `json:"tier,omitempty"`
	LifeStage *int `json:"life_stage,omitempty"`
	Turns     *int `json:"turns,omitempty"`
	MinSCS    *int `json:"min_scs,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Attempts int
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Session  uuid.UUID
	Duration time.Duration
	Error    error
}
