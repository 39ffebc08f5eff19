package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientConfigNoAuth(t *testing.T) {
	topo, err := NewTopology(&TopologyOptions{
		NumNodes:  1,
		KRaftMode: true,
	})
	require.NoError(t, err)

	clientConfig, err := ClientConfig(topo, "localhost:10001")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"bootstrap.servers": "localhost:10001",
	}, clientConfig)
}

func TestClientConfigPlain(t *testing.T) {
	topo, err := NewTopology(&TopologyOptions{
		NumNodes:      1,
		KRaftMode:     true,
		SaslMechanism: SaslMechanismPlain,
		Users: map[string]string{
			"alice": "secret",
		},
	})
	require.NoError(t, err)

	clientConfig, err := ClientConfigForUser(topo, "localhost:10001", "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "localhost:10001", clientConfig["bootstrap.servers"])
	assert.Equal(t, "SASL_PLAINTEXT", clientConfig["security.protocol"])
	assert.Equal(t, "PLAIN", clientConfig["sasl.mechanism"])
	assert.Equal(t,
		`org.apache.kafka.common.security.plain.PlainLoginModule required username="alice" password="secret";`,
		clientConfig["sasl.jaas.config"])
}

func TestClientConfigPicksFirstUserByName(t *testing.T) {
	topo, err := NewTopology(&TopologyOptions{
		NumNodes:      1,
		KRaftMode:     true,
		SaslMechanism: SaslMechanismPlain,
		Users: map[string]string{
			"zoe":   "pass-z",
			"alice": "pass-a",
		},
	})
	require.NoError(t, err)

	clientConfig, err := ClientConfig(topo, "localhost:10001")
	require.NoError(t, err)

	assert.Contains(t, clientConfig["sasl.jaas.config"], `username="alice"`)
	assert.Contains(t, clientConfig["sasl.jaas.config"], `password="pass-a"`)
}

func TestClientConfigPlainWithoutCredentialsOmitsJaas(t *testing.T) {
	topo, err := NewTopology(&TopologyOptions{
		NumNodes:      1,
		KRaftMode:     true,
		SaslMechanism: SaslMechanismPlain,
	})
	require.NoError(t, err)

	clientConfig, err := ClientConfig(topo, "localhost:10001")
	require.NoError(t, err)

	assert.Equal(t, "SASL_PLAINTEXT", clientConfig["security.protocol"])
	assert.NotContains(t, clientConfig, "sasl.jaas.config")
}

func TestClientConfigUnsupportedMechanism(t *testing.T) {
	topo, err := NewTopology(&TopologyOptions{
		NumNodes:      1,
		KRaftMode:     true,
		SaslMechanism: "SCRAM-SHA-256",
		Users: map[string]string{
			"alice": "secret",
		},
	})
	require.NoError(t, err)

	_, err = ClientConfig(topo, "localhost:10001")
	require.Error(t, err)

	var mechErr *UnsupportedMechanismError
	require.ErrorAs(t, err, &mechErr)
	assert.Equal(t, "SCRAM-SHA-256", mechErr.Mechanism)
}
