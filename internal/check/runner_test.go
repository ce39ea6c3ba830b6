package check

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "argus-settings/internal/common/errors"
	"argus-settings/internal/common/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	check, status string
	attempts      int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (f *fakeRecorder) RecordCheck(check, status string, _ time.Duration, attempts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recorded{check, status, attempts})
}

func fixed(status Status, detail string) Func {
	return func(context.Context) (Status, string, error) { return status, detail, nil }
}

// flaky fails with a retryable error until it has been called n times.
func flaky(n int, calls *int) Func {
	return func(context.Context) (Status, string, error) {
		*calls++
		if *calls < n {
			return StatusFail, "", apperrors.NewBackendUnreachableError("db", errors.New("connection refused"))
		}
		return StatusOK, "up", nil
	}
}

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	base := []Option{WithLogger(logger.NewTestLogger(t)), WithRetries(2, time.Millisecond)}
	return NewRunner(append(base, opts...)...)
}

func TestRunner_Statuses(t *testing.T) {
	rec := &fakeRecorder{}
	runner := newTestRunner(t, WithRecorder(rec))

	report := runner.Run(context.Background(), "docker.api.dockerdev", []Check{
		{Name: "a", Run: fixed(StatusOK, "fine")},
		{Name: "b", Run: fixed(StatusWarn, "meh")},
		{Name: "c", Run: fixed(StatusSkipped, "n/a")},
	})

	require.Len(t, report.Results, 3)
	assert.Equal(t, "docker.api.dockerdev", report.Module)
	assert.Equal(t, StatusOK, report.Results[0].Status)
	assert.Equal(t, "fine", report.Results[0].Detail)
	assert.Equal(t, StatusWarn, report.Results[1].Status)
	assert.Equal(t, StatusSkipped, report.Results[2].Status)
	assert.False(t, report.Failed(), "warnings do not fail a run")

	_, err := uuid.Parse(report.RunID)
	assert.NoError(t, err)

	assert.Equal(t, []recorded{{"a", "ok", 1}, {"b", "warn", 1}, {"c", "skipped", 1}}, rec.calls)
}

func TestRunner_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	report := newTestRunner(t).Run(context.Background(), "m.p", []Check{{Name: "db", Run: flaky(3, &calls)}})

	res := report.Results[0]
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, calls)
}

func TestRunner_GivesUpAfterRetries(t *testing.T) {
	calls := 0
	report := newTestRunner(t).Run(context.Background(), "m.p", []Check{{Name: "db", Run: flaky(10, &calls)}})

	res := report.Results[0]
	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.Contains(t, res.Detail, "connection refused")
	assert.True(t, report.Failed())
}

func TestRunner_DoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	report := newTestRunner(t).Run(context.Background(), "m.p", []Check{{
		Name: "settings",
		Run: func(context.Context) (Status, string, error) {
			calls++
			return StatusFail, "", apperrors.NewSettingsInvalidError([]string{"TIME_ZONE: is required"})
		},
	}})

	assert.Equal(t, 1, calls)
	assert.Equal(t, StatusFail, report.Results[0].Status)
	assert.Equal(t, "Settings failed validation: TIME_ZONE: is required", report.Results[0].Detail)
}

func TestRunner_Timeout(t *testing.T) {
	runner := newTestRunner(t, WithTimeout(10*time.Millisecond), WithRetries(1, time.Millisecond))

	report := runner.Run(context.Background(), "m.p", []Check{{
		Name: "slow",
		Run: func(ctx context.Context) (Status, string, error) {
			<-ctx.Done()
			return StatusFail, "", ctx.Err()
		},
	}})

	res := report.Results[0]
	assert.Equal(t, StatusFail, res.Status)
	assert.Equal(t, 2, res.Attempts, "timeouts are retryable")
	assert.Contains(t, res.Detail, "timed out")
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	report := newTestRunner(t).Run(ctx, "m.p", []Check{{Name: "db", Run: flaky(1, &calls)}})

	assert.Equal(t, 0, calls)
	assert.Equal(t, StatusFail, report.Results[0].Status)
	assert.Equal(t, 1, report.Results[0].Attempts)
}
