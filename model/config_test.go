package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, testingConfig(Gibbs).Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"unknown method":     func(c *Config) { c.Method = Method(42) },
		"negative threshold": func(c *Config) { c.Threshold = -1 },
		"negative inference": func(c *Config) { c.MaxIterInference = -1 },
		"negative md":        func(c *Config) { c.MaxIterMD = -1 },
		"small tau":          func(c *Config) { c.Tau = 0.5 },
		"negative kappa":     func(c *Config) { c.Kappa = -0.1 },
		"rho above one":      func(c *Config) { c.Rho = 1.5 },
		"no samples":         func(c *Config) { c.NumSamples = 0 },
		"negative burn in":   func(c *Config) { c.BurnIn = -1 },
		"negative workers":   func(c *Config) { c.NumWorkers = -2 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrConfiguration)
		})
	}

	var c *Config
	assert.ErrorIs(t, c.Validate(), ErrConfiguration)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("VI")
	require.NoError(t, err)
	assert.Equal(t, VI, m)

	m, err = ParseMethod("gibbs")
	require.NoError(t, err)
	assert.Equal(t, Gibbs, m)

	_, err = ParseMethod("em")
	assert.ErrorIs(t, err, ErrConfiguration)

	assert.Equal(t, "vi", VI.String())
	assert.Equal(t, "gibbs", Gibbs.String())
	assert.Equal(t, "method(7)", Method(7).String())
}

func TestGetInference(t *testing.T) {
	_, err := GetInference(VI)
	assert.NoError(t, err)
	_, err = GetInference(Gibbs)
	assert.NoError(t, err)
	_, err = GetInference(Method(9))
	assert.ErrorIs(t, err, ErrConfiguration)
}
