package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// Lookup returns the raw value for key and whether it is set to a non-empty
// value. ${VAR} placeholders are expanded against the same Env.
func (e *Env) Lookup(key string) (string, bool) {
	if !e.v.IsSet(key) {
		return "", false
	}
	raw, err := cast.ToStringE(e.v.Get(key))
	if err != nil || raw == "" {
		return "", false
	}
	return e.expand(raw), true
}

// String returns the value for key or def when unset.
func (e *Env) String(key, def string) string {
	if val, ok := e.Lookup(key); ok {
		return val
	}
	return def
}

// Bool parses key as a boolean. Besides the strconv forms it accepts
// yes/no and on/off. An unparsable value is an error, not a silent default.
func (e *Env) Bool(key string, def bool) (bool, error) {
	val, ok := e.Lookup(key)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "yes", "on", "y":
		return true, nil
	case "no", "off", "n":
		return false, nil
	}
	b, err := cast.ToBoolE(strings.TrimSpace(val))
	if err != nil {
		return def, fmt.Errorf("%s: invalid boolean %q", key, val)
	}
	return b, nil
}

// Int parses key as an integer.
func (e *Env) Int(key string, def int) (int, error) {
	val, ok := e.Lookup(key)
	if !ok {
		return def, nil
	}
	i, err := cast.ToIntE(strings.TrimSpace(val))
	if err != nil {
		return def, fmt.Errorf("%s: invalid integer %q", key, val)
	}
	return i, nil
}

// StringSlice splits a comma separated value, dropping empty items.
func (e *Env) StringSlice(key string, def []string) []string {
	val, ok := e.Lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Required returns the value for key or an error naming it.
func (e *Env) Required(key string) (string, error) {
	if val, ok := e.Lookup(key); ok {
		return val, nil
	}
	return "", fmt.Errorf("%s is required", key)
}

func (e *Env) expand(val string) string {
	if !strings.Contains(val, "$") {
		return val
	}
	return os.Expand(val, func(name string) string {
		if name == "" || !e.v.IsSet(name) {
			return ""
		}
		return cast.ToString(e.v.Get(name))
	})
}
