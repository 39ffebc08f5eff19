package configout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/magiconair/properties"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafkaworks/kafkacluster/cluster"
)

func generateTestConfigs(t *testing.T) []*cluster.NodeConfig {
	t.Helper()

	topo, err := cluster.NewTopology(&cluster.TopologyOptions{
		NumNodes:       2,
		NumQuorumNodes: 1,
		KRaftMode:      true,
		ClusterID:      "test-cluster",
	})
	require.NoError(t, err)

	resolver := &staticResolver{}
	configs, err := cluster.GenerateConfigs(topo, resolver, nil)
	require.NoError(t, err)

	return configs
}

type staticResolver struct{}

func (r *staticResolver) pairAt(nodeID, offset int) cluster.EndpointPair {
	ep := cluster.Endpoint{Host: "localhost", Port: 10000 + nodeID*3 + offset}
	return cluster.EndpointPair{Bind: ep, Connect: ep}
}

func (r *staticResolver) InterNodeEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return r.pairAt(nodeID, 0), nil
}

func (r *staticResolver) ClientEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return r.pairAt(nodeID, 1), nil
}

func (r *staticResolver) ControllerEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return r.pairAt(nodeID, 2), nil
}

func TestWriteClusterProperties(t *testing.T) {
	dir := t.TempDir()
	configs := generateTestConfigs(t)

	require.NoError(t, WriteCluster(dir, configs))

	loaded, err := properties.LoadFile(filepath.Join(dir, "node-0", "server.properties"), properties.UTF8)
	require.NoError(t, err)

	assert.Equal(t, "0", loaded.GetString("broker.id", ""))
	assert.Equal(t, "broker,controller", loaded.GetString("process.roles", ""))
	assert.Equal(t, "0@//localhost:10002", loaded.GetString("controller.quorum.voters", ""))

	loaded, err = properties.LoadFile(filepath.Join(dir, "node-1", "server.properties"), properties.UTF8)
	require.NoError(t, err)
	assert.Equal(t, "broker", loaded.GetString("process.roles", ""))
}

func TestWriteClusterInfo(t *testing.T) {
	dir := t.TempDir()
	configs := generateTestConfigs(t)

	require.NoError(t, WriteCluster(dir, configs))

	infoBytes, err := os.ReadFile(filepath.Join(dir, "cluster-info.json"))
	require.NoError(t, err)

	var info ClusterInfo
	require.NoError(t, json.Unmarshal(infoBytes, &info))

	assert.Equal(t, "test-cluster", info.ClusterID)
	assert.Equal(t, "localhost:10001,localhost:10004", info.BootstrapServers)
	assert.Equal(t, []string{"localhost:10001", "localhost:10004"}, info.NodeEndpoints)
}

func TestWriteClusterIsByteStable(t *testing.T) {
	configs := generateTestConfigs(t)

	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, WriteCluster(dirA, configs))
	require.NoError(t, WriteCluster(dirB, configs))

	bytesA, err := os.ReadFile(filepath.Join(dirA, "node-0", "server.properties"))
	require.NoError(t, err)
	bytesB, err := os.ReadFile(filepath.Join(dirB, "node-0", "server.properties"))
	require.NoError(t, err)

	assert.Equal(t, bytesA, bytesB)
}
