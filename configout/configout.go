package configout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/kafkaworks/kafkacluster/cluster"
)

// ClusterInfo summarizes a generated cluster for harnesses that only need
// to know how to reach it.
type ClusterInfo struct {
	ClusterID        string   `json:"clusterId,omitempty"`
	BootstrapServers string   `json:"bootstrapServers"`
	NodeEndpoints    []string `json:"nodeEndpoints"`
}

// WriteCluster writes one node-<id>/server.properties per node config plus
// a cluster-info.json summary into dir. Output is byte-stable for a fixed
// input: properties are written in sorted key order.
func WriteCluster(dir string, configs []*cluster.NodeConfig) error {
	var clusterID string
	endpoints := make([]string, 0, len(configs))

	for _, config := range configs {
		if err := writeNodeProperties(dir, config); err != nil {
			return errors.Wrapf(err, "failed to write config for node %d", config.NodeID)
		}

		endpoints = append(endpoints, config.Endpoint)
		clusterID = config.ClusterID
	}

	info := &ClusterInfo{
		ClusterID:        clusterID,
		BootstrapServers: strings.Join(endpoints, ","),
		NodeEndpoints:    endpoints,
	}

	infoBytes, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode cluster info")
	}

	if err := os.WriteFile(filepath.Join(dir, "cluster-info.json"), infoBytes, 0644); err != nil {
		return errors.Wrap(err, "failed to write cluster info")
	}

	return nil
}

func writeNodeProperties(dir string, config *cluster.NodeConfig) error {
	nodeDir := filepath.Join(dir, fmt.Sprintf("node-%d", config.NodeID))
	if err := os.MkdirAll(nodeDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create node directory")
	}

	props := properties.NewProperties()

	keys := maps.Keys(config.Properties)
	slices.Sort(keys)
	for _, key := range keys {
		if _, _, err := props.Set(key, config.Properties[key]); err != nil {
			return errors.Wrapf(err, "failed to set property %q", key)
		}
	}

	file, err := os.Create(filepath.Join(nodeDir, "server.properties"))
	if err != nil {
		return errors.Wrap(err, "failed to create server.properties")
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := props.Write(file, properties.UTF8); err != nil {
		return errors.Wrap(err, "failed to write server.properties")
	}

	return nil
}
