package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShowDefaultsToYAML(t *testing.T) {
	out := &bytes.Buffer{}
	showOutput = "yaml"
	showCmd.SetOut(out)
	showCmd.SetErr(out)
	showCmd.SetArgs(nil)

	require.NoError(t, showCmd.Execute())
	assert.Contains(t, out.String(), "logging:")
}

func TestConfigShowJSON(t *testing.T) {
	out := &bytes.Buffer{}
	showOutput = "json"
	showCmd.SetOut(out)
	showCmd.SetErr(out)
	showCmd.SetArgs([]string{"--output", "json"})

	require.NoError(t, showCmd.Execute())
	assert.True(t, strings.Contains(out.String(), "{"))
}

func TestConfigValidateSucceedsForDefaults(t *testing.T) {
	out := &bytes.Buffer{}
	validateCmd.SetOut(out)
	validateCmd.SetErr(out)
	validateCmd.SetArgs(nil)

	require.NoError(t, validateCmd.Execute())
	assert.Contains(t, out.String(), "configuration is valid")
}
