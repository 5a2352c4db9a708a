// Package config resolves the run configuration from the process arguments
// and the CASE_INSENSITIVE environment toggle.
package config

import (
	"errors"
	"fmt"
)

// CaseInsensitiveEnv is the environment variable that switches matching to
// case-insensitive. Only its presence matters; the value is ignored.
const CaseInsensitiveEnv = "CASE_INSENSITIVE"

// ErrMissingArgument is matched by every MissingArgumentError.
var ErrMissingArgument = errors.New("missing argument")

// MissingArgumentError reports a required positional argument that was not given.
type MissingArgumentError struct {
	// Name is the argument that is missing, e.g. "query" or "file path".
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("not enough arguments: missing %s", e.Name)
}

func (e *MissingArgumentError) Is(target error) bool {
	return target == ErrMissingArgument
}

// LookupFunc looks up an environment variable. It has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// MapLookup returns a LookupFunc backed by a fixed map.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// Config holds the settings for a single search run
type Config struct {
	Query         string
	FilePath      string
	CaseSensitive bool
}

// Resolve builds a Config from the full argument list, program name first.
// The query and file path are the first two arguments after the program name;
// anything after them is ignored.
func Resolve(args []string, lookup LookupFunc) (*Config, error) {
	if len(args) < 2 {
		return nil, &MissingArgumentError{Name: "query"}
	}
	if len(args) < 3 {
		return nil, &MissingArgumentError{Name: "file path"}
	}

	caseSensitive := true
	if lookup != nil {
		if _, set := lookup(CaseInsensitiveEnv); set {
			caseSensitive = false
		}
	}

	return &Config{
		Query:         args[1],
		FilePath:      args[2],
		CaseSensitive: caseSensitive,
	}, nil
}
