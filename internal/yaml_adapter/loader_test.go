package yaml_adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/spacecomm/internal/config"
	"github.com/vk/spacecomm/internal/testutil"
)

const galaxyYAML = `
explorers:
  count: 2
  hash_count: 4
  algorithm: blake2b-256
  timeout: 1m
galaxy:
  start: 1
  systems:
    - id: 1
      frequency: abc
      neighbours: [2]
    - id: 2
      frequency: xyz
visited:
  backend: redis
  url: ${SPACECOMM_TEST_YAML_REDIS}
  run_id: shared
`

func TestLoad(t *testing.T) {
	// --- Arrange ---
	t.Setenv("SPACECOMM_TEST_YAML_REDIS", "redis://cache:6379/0")
	dir := testutil.WriteFiles(t, map[string]string{
		"galaxy.yaml": galaxyYAML,
		"relay.yml": `
relay:
  url: http://localhost:3000/socket.io/
  event: found
`,
		"ignored.hcl": `this is not yaml {`,
	})

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, config.Explorers{Count: 2, HashCount: 4, Algorithm: "blake2b-256", Timeout: time.Minute}, model.Explorers)
	assert.Equal(t, config.Visited{Backend: "redis", URL: "redis://cache:6379/0", RunID: "shared"}, model.Visited)
	assert.Equal(t, []int{1, 2}, model.Galaxy.IDs())
	assert.Equal(t, []int{2}, model.Galaxy.Systems[1].Neighbours)
	require.NotNil(t, model.Relay)
	assert.Equal(t, "found", model.Relay.Event)

	model.ApplyDefaults()
	assert.NoError(t, model.Validate())
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errPart string
	}{
		{name: "unknown field", content: "explorers:\n  workers: 3\n", errPart: "error parsing YAML file"},
		{name: "bad duration", content: "relay:\n  url: x\n  timeout: later\n", errPart: "invalid relay.timeout"},
		{
			name:    "duplicate system",
			content: "galaxy:\n  systems:\n    - id: 3\n    - id: 3\n",
			errPart: "solar system 3 is defined more than once",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, map[string]string{"c.yaml": tc.content})
			_, err := NewLoader().Load(context.Background(), dir)
			assert.ErrorContains(t, err, tc.errPart)
		})
	}
}

func TestLoad_NoFiles(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no YAML files found")
}
