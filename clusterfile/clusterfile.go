package clusterfile

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/kafkaworks/kafkacluster/cluster"
)

// Definition mirrors the on-disk cluster definition file. Any format viper
// understands works; yaml is the usual choice.
type Definition struct {
	NumNodes       int               `mapstructure:"numNodes" validate:"gte=1"`
	NumQuorumNodes int               `mapstructure:"numQuorumNodes" validate:"gte=1"`
	KRaftMode      bool              `mapstructure:"kraftMode"`
	SaslMechanism  string            `mapstructure:"saslMechanism"`
	Users          map[string]string `mapstructure:"users"`
	ExtraConfig    map[string]string `mapstructure:"extraConfig"`
	ClusterID      string            `mapstructure:"clusterId"`
}

var validate = validator.New()

// Load reads a cluster definition file and turns it into a topology.
func Load(path string) (*cluster.Topology, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("numNodes", 1)
	v.SetDefault("numQuorumNodes", 1)
	v.SetDefault("kraftMode", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read cluster definition")
	}

	var def Definition
	if err := v.Unmarshal(&def); err != nil {
		return nil, errors.Wrap(err, "failed to parse cluster definition")
	}

	return def.Topology()
}

// Topology validates the definition and builds the immutable topology
// descriptor from it.
func (d *Definition) Topology() (*cluster.Topology, error) {
	if err := validate.Struct(d); err != nil {
		return nil, errors.Wrap(err, "invalid cluster definition")
	}

	topo, err := cluster.NewTopology(&cluster.TopologyOptions{
		NumNodes:       d.NumNodes,
		NumQuorumNodes: d.NumQuorumNodes,
		KRaftMode:      d.KRaftMode,
		SaslMechanism:  d.SaslMechanism,
		Users:          d.Users,
		ExtraConfig:    d.ExtraConfig,
		ClusterID:      d.ClusterID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid cluster definition")
	}

	return topo, nil
}
