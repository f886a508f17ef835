package ratelimit

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// File is the layout of a rate limit file:
//
//	rate_limits:
//	  fmp:
//	    strategy: token_bucket
//	    requests_per_second: 4
//	    burst: 6
type File struct {
	RateLimits map[string]Config `yaml:"rate_limits"`
}

// ParseFile decodes a rate limit file. Unknown keys and strategies are
// rejected so that a typo does not silently fall back to defaults.
func ParseFile(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, err
	}
	for name, cfg := range f.RateLimits {
		if err := cfg.Strategy.validate(); err != nil {
			return File{}, fmt.Errorf("rate_limits.%s: %w", name, err)
		}
	}
	return f, nil
}

// Source returns the config for the named upstream with defaults filled in.
func (f File) Source(name string) (Config, error) {
	cfg, ok := f.RateLimits[name]
	if !ok {
		return Config{}, fmt.Errorf("no rate_limits entry for %q", name)
	}
	return applyDefaults(cfg), nil
}
