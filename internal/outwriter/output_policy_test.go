package outwriter

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/huangsam/basket/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWritePolicyYAML(t *testing.T) {
	var buf bytes.Buffer
	policy := schema.DefaultPolicy()
	require.NoError(t, writePolicyYAML(&buf, policy))

	out := buf.String()
	assert.Contains(t, out, "commission-rate: 0.05")
	assert.Contains(t, out, "reject-statuses:")
	assert.Contains(t, out, "  window: 12")

	var decoded schema.Policy
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, policy, decoded)
}

func TestWritePolicyJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = path
	require.NoError(t, WritePolicy(schema.DefaultPolicy(), cfg))

	var decoded schema.Policy
	require.NoError(t, json.Unmarshal(readFile(t, path), &decoded))
	assert.Equal(t, schema.DefaultPolicy(), decoded)
}
