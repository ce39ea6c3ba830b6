package settings

import (
	"regexp"
	"strings"

	apperrors "argus-settings/internal/common/errors"
)

// IdentifierPattern matches dotted paths such as module paths and media plugin
// identifiers: two or more segments of letters, digits and underscores, not
// starting with a digit.
const IdentifierPattern = `^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`

var identifierRe = regexp.MustCompile(IdentifierPattern)

// IsIdentifier reports whether s is a well-formed dotted path.
func IsIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// ValidateMediaPlugins checks every entry is a well-formed identifier and
// that no identifier is listed twice. Every problem found is reported.
func ValidateMediaPlugins(plugins []string) error {
	var first *apperrors.StandardError
	var problems []string
	seen := make(map[string]bool, len(plugins))
	for _, id := range plugins {
		var reason string
		switch {
		case id == "":
			reason = "identifier is empty"
		case !IsIdentifier(id):
			reason = "expected a dotted path like package.module.Class"
		case seen[id]:
			reason = "listed more than once"
		}
		seen[id] = true
		if reason == "" {
			continue
		}
		err := apperrors.NewInvalidPluginIdentifierError(id, reason)
		if first == nil {
			first = err
		}
		problems = append(problems, err.Details)
	}
	if first == nil {
		return nil
	}
	first.Details = strings.Join(problems, "; ")
	return first
}
