package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one displayable config setting.
type Entry struct {
	Key    string
	EnvVar string
	Value  string
}

// Entries lists every non-secret setting with its current value, in the
// order the key table declares them. Secrets never appear: they have no
// file representation to show.
func Entries(cfg Config) []Entry {
	var out []Entry
	for _, s := range specs {
		if s.secret {
			continue
		}
		out = append(out, Entry{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprintf("%v", s.extract(cfg)),
		})
	}
	return out
}

// SetKey persists one setting to the config file. Secrets are refused
// toward their environment variable; an unknown key lists the settable
// keys so `config set` is self-documenting.
func SetKey(key, value string) error {
	s, ok := findSpec(key)
	if !ok {
		return fmt.Errorf("unknown config key %q (settable keys: %s)", key, strings.Join(settableKeys(), ", "))
	}
	if s.secret {
		return fmt.Errorf("cannot set secret %q via config; use environment variable %s", key, s.env)
	}

	b := newFileBackend()
	if s.typ == kInt {
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", key, err)
		}
		return b.SetInt(key, i)
	}
	return b.SetString(key, value)
}

func findSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}

func settableKeys() []string {
	var keys []string
	for _, s := range specs {
		if !s.secret {
			keys = append(keys, s.key)
		}
	}
	return keys
}
