package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLoad(t *testing.T) {
	m := New()

	m.RecordLoad("docker.api.dockerdev", "ok", 2*time.Millisecond)
	m.RecordLoad("docker.api.dockerdev", "ok", time.Millisecond)
	m.RecordLoad("argus.site.settings.nope", "error", time.Millisecond)
	m.RecordMediaPlugins("docker.api.dockerdev", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SettingsLoads.WithLabelValues("docker.api.dockerdev", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettingsLoads.WithLabelValues("argus.site.settings.nope", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MediaPlugins.WithLabelValues("docker.api.dockerdev")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.SettingsLoadDuration))
}

func TestRecordCheck(t *testing.T) {
	m := New()

	m.RecordCheck("database", "fail", time.Second, 3)
	m.RecordCheck("database", "ok", time.Second, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckStatus.WithLabelValues("database", "ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CheckStatus.WithLabelValues("database", "fail")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CheckAttempts.WithLabelValues("database")))

	expected := `
# HELP argus_settings_check_status 1 for the current status of each readiness check, 0 otherwise
# TYPE argus_settings_check_status gauge
argus_settings_check_status{check="database",status="fail"} 0
argus_settings_check_status{check="database",status="ok"} 1
argus_settings_check_status{check="database",status="skipped"} 0
argus_settings_check_status{check="database",status="warn"} 0
`
	require.NoError(t, testutil.CollectAndCompare(m.CheckStatus, strings.NewReader(expected)))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordLoad("x.y", "ok", 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SettingsLoads.WithLabelValues("x.y", "ok")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordMediaPlugins("docker.api.dockerdev", 2)

	path := filepath.Join(t.TempDir(), "argus_settings.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `argus_settings_media_plugins{module="docker.api.dockerdev"} 2`)
}
