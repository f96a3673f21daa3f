package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlugin_RoundTrips(t *testing.T) {
	name, opts := ParsePlugin("obfs-local;obfs=tls;obfs-host=example.com")
	assert.Equal(t, "obfs-local", name)
	require.Len(t, opts, 2)
	assert.Equal(t, "obfs=tls;obfs-host=example.com", opts.String())
}

func TestParsePlugin_PreservesOrder(t *testing.T) {
	_, opts := ParsePlugin("p;b=2;a=1")
	assert.Equal(t, "b=2;a=1", opts.String())
}

func TestParsePlugin_BareOption(t *testing.T) {
	_, opts := ParsePlugin("p;tls")
	v, ok := opts.Get("tls")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestPluginOptsFromMap_SortsByKey(t *testing.T) {
	opts := PluginOptsFromMap(map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, "a=1;b=2", opts.String())
}
