package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running lotus-events API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite on a fresh session, which is
// deleted afterwards.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	view, err := CreateSession(ctx, r.Client, r.BaseURL, suite.Player)
	if err != nil {
		result.Error = fmt.Errorf("failed to create session: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = view.ID
	defer func() {
		if err := DeleteSession(context.WithoutCancel(ctx), r.Client, r.BaseURL, view.ID); err != nil {
			r.Logger("    Warning: failed to delete session %s: %v", view.ID, err)
		}
	}()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, view.ID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep executes a step, repeating it up to MaxAttempts times until its
// expectations hold. Request errors are not retried.
func (r *Runner) runStep(ctx context.Context, id uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	attempts := max(step.MaxAttempts, 1)
	for result.Attempts < attempts {
		result.Attempts++

		stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
		resp, err := r.executeStep(stepCtx, id, step)
		cancel()
		if err != nil {
			result.Error = err
			break
		}

		result.Error = checkExpectations(step.Expectations, resp)
		if result.Error == nil {
			result.Success = true
			break
		}
	}
	if result.Error != nil && attempts > 1 {
		result.Error = fmt.Errorf("after %d attempts: %w", result.Attempts, result.Error)
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) executeStep(ctx context.Context, id uuid.UUID, step TestStep) (stepResponse, error) {
	switch step.Action {
	case ActionEvent:
		return PostEvent(ctx, r.Client, r.BaseURL, id)
	case ActionChoice:
		return PostChoice(ctx, r.Client, r.BaseURL, id, step.Option)
	default:
		return stepResponse{}, fmt.Errorf("unknown action %q", step.Action)
	}
}

// checkExpectations validates the test expectations against what the step saw
func checkExpectations(exp Expectations, resp stepResponse) error {
	wantStatus := http.StatusOK
	if exp.Status != nil {
		wantStatus = *exp.Status
	}
	if resp.Status != wantStatus {
		return fmt.Errorf("expected status %d, got %d", wantStatus, resp.Status)
	}
	if resp.Status != http.StatusOK {
		return nil
	}

	if ev := resp.Event; ev != nil {
		if exp.Origin != nil && string(ev.Origin) != *exp.Origin {
			return fmt.Errorf("expected origin %s, got %s", *exp.Origin, ev.Origin)
		}
		if exp.Title != nil && ev.Event.Title != *exp.Title {
			return fmt.Errorf("expected title %q, got %q", *exp.Title, ev.Event.Title)
		}
		if exp.Domain != nil && string(ev.Event.ProceduralDomain) != *exp.Domain {
			return fmt.Errorf("expected domain %s, got %s", *exp.Domain, ev.Event.ProceduralDomain)
		}
		if exp.Options != nil && len(ev.Event.Options) != *exp.Options {
			return fmt.Errorf("expected %d options, got %d", *exp.Options, len(ev.Event.Options))
		}
		if exp.MinOptions != nil && len(ev.Event.Options) < *exp.MinOptions {
			return fmt.Errorf("expected at least %d options, got %d", *exp.MinOptions, len(ev.Event.Options))
		}
		for _, text := range exp.DescriptionNotContains {
			if strings.Contains(ev.Event.Description, text) {
				return fmt.Errorf("expected description to NOT contain '%s', but it did: %s", text, ev.Event.Description)
			}
		}
	}

	if exp.Failed != nil {
		if resp.Choice == nil {
			return fmt.Errorf("expected a resolution, step was not a choice")
		}
		if resp.Choice.Resolution.Failed != *exp.Failed {
			return fmt.Errorf("expected failed to be %t, got %t", *exp.Failed, resp.Choice.Resolution.Failed)
		}
	}

	s := resp.Session
	if exp.Tier != nil && s.Player.Tier != *exp.Tier {
		return fmt.Errorf("expected tier %d, got %d", *exp.Tier, s.Player.Tier)
	}
	if exp.LifeStage != nil && s.Player.LifeStage != *exp.LifeStage {
		return fmt.Errorf("expected life_stage %d, got %d", *exp.LifeStage, s.Player.LifeStage)
	}
	if exp.Turns != nil && s.Turns != *exp.Turns {
		return fmt.Errorf("expected turns to be %d, got %d", *exp.Turns, s.Turns)
	}
	if exp.MinSCS != nil && s.Player.SocialCredit < *exp.MinSCS {
		return fmt.Errorf("expected social credit >= %d, got %d", *exp.MinSCS, s.Player.SocialCredit)
	}

	return nil
}
