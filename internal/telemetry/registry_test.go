package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledByDefault(t *testing.T) {
	Reset()
	assert.False(t, IsEnabled())
	assert.Nil(t, Handler())
	assert.Nil(t, NewCacheMetrics())
}

func TestInitRegistryEnablesMetrics(t *testing.T) {
	Reset()
	reg := InitRegistry()
	t.Cleanup(Reset)

	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())
	assert.NotNil(t, Handler())
}

func TestResetDisablesMetrics(t *testing.T) {
	InitRegistry()
	Reset()
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())
}
