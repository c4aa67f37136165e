package nbody

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsGetters(t *testing.T) {
	p := Params{
		"min_step":  1e-6,
		"rank":      3,
		"engine":    "simple_bh",
		"threads":   "8",
		"theta_str": "0.75",
		"record":    true,
	}
	assert.Equal(t, 1e-6, p.Float("min_step", 1e-9))
	assert.Equal(t, 1e-9, p.Float("missing", 1e-9))
	assert.Equal(t, 0.75, p.Float("theta_str", 0))
	assert.Equal(t, 3.0, p.Float("rank", 0), "ints convert to floats")
	assert.Equal(t, 3, p.Int("rank", 1))
	assert.Equal(t, 8, p.Int("threads", 0), "strings convert to ints")
	assert.Equal(t, 1, p.Int("missing", 1))
	assert.Equal(t, "simple_bh", p.Str("engine", ""))
	assert.Equal(t, "fallback", p.Str("rank", "fallback"), "wrong type falls back")
	assert.True(t, p.Bool("record", false))
	assert.False(t, p.Bool("missing", false))
}

func TestLoadParamsYAML(t *testing.T) {
	const doc = `
engine: simple_bh
solver: rkdp
distance_to_node_radius_ratio: 0.5
tree_layout: heap
error_threshold: 1e-5
max_recursion: 6
`
	p, err := LoadParams(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "simple_bh", p.Str("engine", ""))
	assert.Equal(t, 0.5, p.Float("distance_to_node_radius_ratio", 1))
	assert.Equal(t, "heap", p.Str("tree_layout", "tree"))
	assert.Equal(t, 1e-5, p.Float("error_threshold", 1e-4))
	assert.Equal(t, 6, p.Int("max_recursion", 8))
}

func TestLoadParamsRejectsGarbage(t *testing.T) {
	_, err := LoadParams(strings.NewReader("\t:::"))
	require.Error(t, err)
}
