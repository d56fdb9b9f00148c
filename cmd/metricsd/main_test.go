package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSample(t *testing.T) {
	tenant, name, value, labels, err := parseSample("t1 cpu_usage_percent 42.5 host=a region=eu")
	require.NoError(t, err)
	assert.Equal(t, "t1", tenant)
	assert.Equal(t, "cpu_usage_percent", name)
	assert.Equal(t, 42.5, value)
	assert.Equal(t, map[string]string{"host": "a", "region": "eu"}, labels)
}

func TestParseSample_NoLabels(t *testing.T) {
	_, _, value, labels, err := parseSample("t1 error_rate 0.01")
	require.NoError(t, err)
	assert.Equal(t, 0.01, value)
	assert.Nil(t, labels)
}

func TestParseSample_Malformed(t *testing.T) {
	cases := []string{
		"t1 cpu_usage_percent",       // missing value
		"t1 cpu_usage_percent abc",   // non-numeric value
		"t1 cpu_usage_percent 1 =v",  // empty label key
		"t1 cpu_usage_percent 1 x:y", // not k=v
	}
	for _, line := range cases {
		_, _, _, _, err := parseSample(line)
		assert.Error(t, err, "line %q", line)
	}
}
