package settings

import (
	"errors"
	"testing"

	"argus-settings/internal/common/config"
	apperrors "argus-settings/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wantDockerPlugins = []string{
	"argus.notificationprofile.media.email.EmailNotification",
	"argus.notificationprofile.media.sms_as_email.SMSNotification",
}

// fakeBase registers a root module at test.base that assigns a handful of
// values and optionally MEDIA_PLUGINS.
func fakeBase(plugins []string) Module {
	return Module{
		Path: "test.base",
		Apply: func(s *Settings, _ *config.Env) error {
			s.Debug = true
			s.TimeZone = "UTC"
			s.DefaultFromEmail = "argus@example.org"
			s.Database = DatabaseSettings{Engine: "postgresql", Name: "argus", Host: "db", Port: 5432}
			s.AllowedHosts = []string{"argus.example.org"}
			if plugins != nil {
				s.MediaPlugins = plugins
			}
			return nil
		},
	}
}

func newTestLoader(t *testing.T, modules ...Module) *Loader {
	t.Helper()
	reg := NewRegistry()
	for _, m := range modules {
		require.NoError(t, reg.Register(m))
	}
	return NewLoader(reg, config.NewEnvFromMap(nil))
}

func TestOverlay_ReplacesBaseMediaPlugins(t *testing.T) {
	loader := newTestLoader(t, fakeBase([]string{"a.b.C"}), Overlay("test.overlay", "test.base"))

	s, err := loader.Load("test.overlay")
	require.NoError(t, err)
	assert.Equal(t, wantDockerPlugins, s.MediaPlugins)
}

func TestOverlay_BaseWithoutMediaPlugins(t *testing.T) {
	loader := newTestLoader(t, fakeBase(nil), Overlay("test.overlay", "test.base"))

	base, err := loader.Load("test.base")
	require.NoError(t, err)
	assert.Nil(t, base.MediaPlugins)

	s, err := loader.Load("test.overlay")
	require.NoError(t, err)
	assert.Equal(t, wantDockerPlugins, s.MediaPlugins)
}

func TestOverlay_InheritsEveryOtherKey(t *testing.T) {
	loader := newTestLoader(t, fakeBase([]string{"a.b.C"}), Overlay("test.overlay", "test.base"))

	base, err := loader.Load("test.base")
	require.NoError(t, err)
	overlaid, err := loader.Load("test.overlay")
	require.NoError(t, err)

	changes, err := Diff(base, overlaid)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "MEDIA_PLUGINS", changes[0].Key)

	// Undo the two keys the overlay is allowed to differ on; the rest must match.
	overlaid.MediaPlugins = base.MediaPlugins
	overlaid.Module = base.Module
	assert.Equal(t, base, overlaid)
}

func TestOverlay_MissingBase(t *testing.T) {
	applied := false
	overlay := Overlay("test.overlay", "test.missing")
	inner := overlay.Apply
	overlay.Apply = func(s *Settings, env *config.Env) error {
		applied = true
		return inner(s, env)
	}
	loader := newTestLoader(t, overlay)

	s, err := loader.Load("test.overlay")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, apperrors.ErrModuleNotFound))
	assert.Contains(t, err.Error(), "test.missing")
	assert.False(t, applied, "overlay must not run when its base is missing")
}

func TestOverlay_Idempotent(t *testing.T) {
	loader := newTestLoader(t, fakeBase([]string{"a.b.C"}), Overlay("test.overlay", "test.base"))

	first, err := loader.Load("test.overlay")
	require.NoError(t, err)
	second, err := loader.Load("test.overlay")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A fresh loader evaluates again and still agrees.
	again, err := newTestLoader(t, fakeBase([]string{"a.b.C"}), Overlay("test.overlay", "test.base")).Load("test.overlay")
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestDockerDevMediaPlugins_ReturnsFreshSlice(t *testing.T) {
	a := DockerDevMediaPlugins()
	a[0] = "changed.by.Caller"
	assert.Equal(t, wantDockerPlugins, DockerDevMediaPlugins())
}

func TestBuiltinDockerDevOverlay(t *testing.T) {
	loader := NewLoader(Builtin(), config.NewEnvFromMap(nil))

	s, err := loader.Load(DockerDevOverlayPath)
	require.NoError(t, err)
	assert.Equal(t, wantDockerPlugins, s.MediaPlugins)
	assert.Equal(t, DockerDevOverlayPath, s.Module)

	base, err := loader.Load(DockerDevPath)
	require.NoError(t, err)
	assert.Equal(t, []string{EmailNotification}, base.MediaPlugins)

	changes, err := Diff(base, s)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "MEDIA_PLUGINS", changes[0].Key)
}
