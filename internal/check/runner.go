// Package check runs readiness checks against resolved settings.
package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "argus-settings/internal/common/errors"
	"argus-settings/internal/common/logger"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusWarn    Status = "warn"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Func runs one attempt of a check. A non-nil error fails the attempt; if the
// error is retryable the runner tries again.
type Func func(ctx context.Context) (Status, string, error)

type Check struct {
	Name string
	Run  Func
}

type Result struct {
	Name     string        `json:"name" yaml:"name"`
	Status   Status        `json:"status" yaml:"status"`
	Detail   string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Attempts int           `json:"attempts" yaml:"attempts"`
}

type Report struct {
	RunID   string    `json:"run_id" yaml:"run_id"`
	Module  string    `json:"module" yaml:"module"`
	Started time.Time `json:"started" yaml:"started"`
	Results []Result  `json:"results" yaml:"results"`
}

// Failed reports whether any check failed. Warnings do not count.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFail {
			return true
		}
	}
	return false
}

// Recorder receives check outcomes. The metrics package implements it.
type Recorder interface {
	RecordCheck(check, status string, duration time.Duration, attempts int)
}

// Runner runs checks one after another. Each attempt gets its own timeout.
type Runner struct {
	timeout  time.Duration
	retries  int
	backoff  time.Duration
	log      logger.Logger
	recorder Recorder
}

type Option func(*Runner)

func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithRetries sets how many times a retryable failure is retried, starting
// after initialDelay and doubling each time.
func WithRetries(retries int, initialDelay time.Duration) Option {
	return func(r *Runner) {
		r.retries = retries
		r.backoff = initialDelay
	}
}

func WithLogger(log logger.Logger) Option {
	return func(r *Runner) { r.log = log }
}

func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		timeout: 5 * time.Second,
		retries: 2,
		backoff: 500 * time.Millisecond,
		log:     logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes checks in order and returns one result per check. Cancelling
// ctx fails the check in progress and every check after it.
func (r *Runner) Run(ctx context.Context, module string, checks []Check) *Report {
	report := &Report{
		RunID:   uuid.New().String(),
		Module:  module,
		Started: time.Now().UTC(),
		Results: make([]Result, 0, len(checks)),
	}
	log := r.log.WithFields(map[string]interface{}{"run_id": report.RunID, "module": module})

	for _, c := range checks {
		res := r.runOne(ctx, log, c)
		report.Results = append(report.Results, res)

		fields := map[string]interface{}{
			"check":       res.Name,
			"status":      string(res.Status),
			"attempts":    res.Attempts,
			"duration_ms": res.Duration.Milliseconds(),
		}
		if res.Detail != "" {
			fields["detail"] = res.Detail
		}
		switch res.Status {
		case StatusFail:
			log.Error("check failed", fields)
		case StatusWarn:
			log.Warn("check passed with warnings", fields)
		default:
			log.Info("check finished", fields)
		}

		if r.recorder != nil {
			r.recorder.RecordCheck(res.Name, string(res.Status), res.Duration, res.Attempts)
		}
	}
	return report
}

func (r *Runner) runOne(ctx context.Context, log logger.Logger, c Check) Result {
	start := time.Now()
	res := Result{Name: c.Name}
	delay := r.backoff
	maxAttempts := r.retries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res.Attempts = attempt
		status, detail, err := r.attempt(ctx, c)
		if err == nil {
			res.Status, res.Detail = status, detail
			break
		}

		res.Status, res.Detail = StatusFail, describe(err)
		if !apperrors.IsRetryable(err) || attempt == maxAttempts || ctx.Err() != nil {
			break
		}

		log.Warn(fmt.Sprintf("%s check failed, retrying...", c.Name), map[string]interface{}{
			"error":       err,
			"attempt":     attempt,
			"maxRetries":  r.retries,
			"nextRetryIn": delay.String(),
		})
		if !sleep(ctx, delay) {
			break
		}
		delay *= 2
	}

	res.Duration = time.Since(start)
	return res
}

func (r *Runner) attempt(ctx context.Context, c Check) (Status, string, error) {
	if err := ctx.Err(); err != nil {
		return StatusFail, "", err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	status, detail, err := c.Run(attemptCtx)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return StatusFail, "", apperrors.NewCheckTimeoutError(c.Name)
	}
	return status, detail, err
}

func describe(err error) string {
	if stdErr, ok := apperrors.AsStandardError(err); ok && stdErr.Details != "" {
		return fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details)
	}
	return err.Error()
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
