package settings

import (
	"reflect"
	"sort"
	"strings"

	apperrors "argus-settings/internal/common/errors"
)

// Get returns the value of a dotted key such as MEDIA_PLUGINS or
// DATABASE.HOST. Matching is case-insensitive. Values come back in their JSON
// form: strings, bools, float64 numbers, []interface{} and
// map[string]interface{}.
func Get(s *Settings, key string) (interface{}, error) {
	m, err := toMap(s)
	if err != nil {
		return nil, err
	}

	var current interface{} = m
	for _, part := range strings.Split(key, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, apperrors.NewUnknownSettingError(key)
		}
		next, found := lookupFold(obj, part)
		if !found {
			return nil, apperrors.NewUnknownSettingError(key)
		}
		current = next
	}
	return current, nil
}

func lookupFold(obj map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// Keys returns every leaf key of s in dotted form, sorted. Lists are leaves.
func Keys(s *Settings) ([]string, error) {
	flat, err := flatten(s)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Change is one key whose value differs between two settings.
type Change struct {
	Key string      `json:"key"`
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Diff lists the leaf keys whose values differ from base to final, sorted by
// key. SETTINGS_MODULE is ignored.
func Diff(base, final *Settings) ([]Change, error) {
	oldFlat, err := flatten(base)
	if err != nil {
		return nil, err
	}
	newFlat, err := flatten(final)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]bool, len(newFlat))
	for k := range oldFlat {
		keys[k] = true
	}
	for k := range newFlat {
		keys[k] = true
	}
	delete(keys, "SETTINGS_MODULE")

	var changes []Change
	for k := range keys {
		if !reflect.DeepEqual(oldFlat[k], newFlat[k]) {
			changes = append(changes, Change{Key: k, Old: oldFlat[k], New: newFlat[k]})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes, nil
}

func flatten(s *Settings) (map[string]interface{}, error) {
	m, err := toMap(s)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{})
	flattenInto(out, "", m)
	return out, nil
}

func flattenInto(out map[string]interface{}, prefix string, m map[string]interface{}) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = v
	}
}
