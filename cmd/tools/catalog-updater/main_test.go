package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"argus-settings/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog", "media.json")
	var out bytes.Buffer

	require.NoError(t, run([]string{"add", "-path", path,
		"-identifier", "argus.notificationprofile.media.email.EmailNotification",
		"-slug", "email", "-name", "Email", "-requires", "DEFAULT_FROM_EMAIL", "-properties", "email_address",
	}, &out))
	require.NoError(t, run([]string{"add", "-path", path,
		"-identifier", "argus.notificationprofile.media.sms_as_email.SMSNotification",
		"-slug", "sms", "-name", "SMS",
	}, &out))
	require.NoError(t, run([]string{"update", "-path", path,
		"-slug", "sms", "-field", "requires", "-value", "DEFAULT_FROM_EMAIL, SMS_GATEWAY_ADDRESS",
	}, &out))

	out.Reset()
	require.NoError(t, run([]string{"validate", "-path", path}, &out))
	assert.Contains(t, out.String(), "Found 2 media")

	cat, err := registry.LoadCatalog(path)
	require.NoError(t, err)
	sms, ok := cat.BySlug("sms")
	require.True(t, ok)
	assert.Equal(t, []string{"DEFAULT_FROM_EMAIL", "SMS_GATEWAY_ADDRESS"}, sms.RequiredSettings)
	assert.NotEmpty(t, cat.LastUpdated)
}

func TestAdd_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.json")
	var out bytes.Buffer

	require.NoError(t, run([]string{"add", "-path", path, "-identifier", "a.b.C", "-slug", "c", "-name", "C"}, &out))

	tests := map[string][]string{
		"duplicate slug":  {"add", "-path", path, "-identifier", "a.b.D", "-slug", "c", "-name", "D"},
		"bare identifier": {"add", "-path", path, "-identifier", "Pager", "-slug", "p", "-name", "P"},
		"unknown setting": {"add", "-path", path, "-identifier", "a.b.E", "-slug", "e", "-name", "E", "-requires", "PAGER_TOKEN"},
		"missing name":    {"add", "-path", path, "-identifier", "a.b.F", "-slug", "f"},
		"unknown field":   {"update", "-path", path, "-slug", "c", "-field", "colour", "-value", "red"},
		"unknown slug":    {"update", "-path", path, "-slug", "zz", "-field", "name", "-value", "Z"},
		"unknown command": {"remove"},
		"missing command": {},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(args, &out))
		})
	}
}

func TestUpdate_RejectsCollisions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.json")
	var out bytes.Buffer

	require.NoError(t, run([]string{"add", "-path", path,
		"-identifier", "argus.notificationprofile.media.email.EmailNotification", "-slug", "email", "-name", "Email"}, &out))
	require.NoError(t, run([]string{"add", "-path", path,
		"-identifier", "argus_msteams.MSTeamsNotification", "-slug", "msteams", "-name", "MS Teams"}, &out))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	tests := map[string][]string{
		"identifier taken": {"update", "-path", path, "-slug", "msteams",
			"-field", "identifier", "-value", "argus.notificationprofile.media.email.EmailNotification"},
		"slug taken": {"update", "-path", path, "-slug", "msteams", "-field", "slug", "-value", "email"},
		"empty slug": {"update", "-path", path, "-slug", "msteams", "-field", "slug", "-value", ""},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(args, &out))

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after), "rejected update must not touch the file")
			_, err = registry.LoadCatalog(path)
			assert.NoError(t, err)
		})
	}

	require.NoError(t, run([]string{"update", "-path", path, "-slug", "msteams", "-field", "slug", "-value", "teams"}, &out))
	cat, err := registry.LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "teams"}, cat.Slugs())
}

func TestValidate_ShippedCatalog(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"validate", "-path", filepath.Join("..", "..", "..", defaultCatalogPath)}, &out))
}

func TestValidate_EmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1","media":[]}`), 0o600))
	assert.Error(t, run([]string{"validate", "-path", path}, &bytes.Buffer{}))
}
