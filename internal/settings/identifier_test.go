package settings

import (
	"errors"
	"testing"

	apperrors "argus-settings/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestIsIdentifier(t *testing.T) {
	valid := []string{
		EmailNotification,
		SMSNotification,
		"a.b",
		"_private.mod_2.Class",
		DockerDevOverlayPath,
	}
	for _, id := range valid {
		assert.True(t, IsIdentifier(id), id)
	}

	invalid := []string{
		"",
		"EmailNotification",
		"a..b",
		".a.b",
		"a.b.",
		"1a.b",
		"a.2b",
		"a.b-c",
		"a b.c",
	}
	for _, id := range invalid {
		assert.False(t, IsIdentifier(id), id)
	}
}

func TestValidateMediaPlugins(t *testing.T) {
	tests := []struct {
		name    string
		plugins []string
		wantErr string
	}{
		{name: "nil", plugins: nil},
		{name: "docker list", plugins: DockerDevMediaPlugins()},
		{name: "empty entry", plugins: []string{EmailNotification, ""}, wantErr: "empty"},
		{name: "bare class", plugins: []string{"SMSNotification"}, wantErr: "dotted path"},
		{name: "duplicate", plugins: []string{EmailNotification, EmailNotification}, wantErr: "more than once"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaPlugins(tt.plugins)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, apperrors.ErrInvalidPluginIdentifier))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateMediaPlugins_ReportsEveryProblem(t *testing.T) {
	err := ValidateMediaPlugins([]string{"a.b", "a.b", "bad", ""})
	stdErr, ok := apperrors.AsStandardError(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidPluginIdentifier, stdErr.Code)
	assert.Equal(t, `identifier: "a.b", listed more than once; `+
		`identifier: "bad", expected a dotted path like package.module.Class; `+
		`identifier: "", identifier is empty`, stdErr.Details)
}
