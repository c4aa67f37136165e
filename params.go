// Package nbody wires the pieces of a gravitational N-body run
// together: typed run parameters, the string-keyed engine and solver
// factories, and the integration driver that advances a dataset to a
// target time while streaming snapshots and conservation diagnostics.
package nbody

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Params is the typed key-value configuration of a run. Every getter
// takes a default that is returned when the key is absent or not
// convertible, so callers never distinguish "missing" from "default".
type Params map[string]interface{}

// Float returns the float64 under key, converting integer and string
// values the way a loosely typed front-end would supply them.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the int under key with the same conversion leniency as
// Float.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case float32:
		return int(x)
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n
		}
	}
	return def
}

// Str returns the string under key.
func (p Params) Str(key, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool under key, accepting strconv-style strings.
func (p Params) Bool(key string, def bool) bool {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
	}
	return def
}

// LoadParams decodes a YAML document into Params.
func LoadParams(r io.Reader) (Params, error) {
	p := Params{}
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "params: decoding yaml")
	}
	return p, nil
}
