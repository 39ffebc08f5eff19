package cluster

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SaslMechanismPlain is the only SASL mechanism the generator can wire
// end-to-end. Other mechanism names are accepted on the topology but
// produce no credential material.
const SaslMechanismPlain = "PLAIN"

type TopologyOptions struct {
	// NumNodes is the number of nodes in the cluster. Defaults to 1.
	NumNodes int

	// NumQuorumNodes is the number of metadata quorum voters. Only
	// meaningful in KRaft mode. Defaults to 1.
	NumQuorumNodes int

	// KRaftMode selects quorum-based self-managed coordination. When
	// false the cluster coordinates through an external ZooKeeper.
	KRaftMode bool

	// SaslMechanism names the SASL mechanism configured on the external
	// listener. Empty means anonymous communication.
	SaslMechanism string

	// Users holds the username/password pairs configured into the
	// server's JAAS configuration for the external listener.
	Users map[string]string

	// ExtraConfig is merged into every node's configuration before any
	// derived keys. A key here that collides with a derived key fails
	// generation.
	ExtraConfig map[string]string

	// ClusterID overrides the randomly generated cluster identifier.
	ClusterID string
}

// Topology is an immutable description of a cluster's shape. Construct one
// with NewTopology; all fields are fixed for its lifetime, including the
// cluster identifier.
type Topology struct {
	numNodes       int
	numQuorumNodes int
	kraftMode      bool
	saslMechanism  string
	users          map[string]string
	extraConfig    map[string]string
	clusterID      string
}

func NewTopology(opts *TopologyOptions) (*Topology, error) {
	numNodes := opts.NumNodes
	if numNodes == 0 {
		numNodes = 1
	}
	if numNodes < 1 {
		return nil, errors.New("cluster must have at least one node")
	}

	numQuorumNodes := opts.NumQuorumNodes
	if numQuorumNodes == 0 {
		numQuorumNodes = 1
	}
	if numQuorumNodes < 1 {
		return nil, errors.New("quorum must have at least one voter")
	}
	if opts.KRaftMode && numQuorumNodes > numNodes {
		return nil, errors.New("quorum cannot be larger than the cluster")
	}

	clusterID := opts.ClusterID
	if clusterID == "" {
		clusterID = uuid.NewString()
	}

	users := make(map[string]string, len(opts.Users))
	for name, password := range opts.Users {
		users[name] = password
	}

	extraConfig := make(map[string]string, len(opts.ExtraConfig))
	for key, value := range opts.ExtraConfig {
		extraConfig[key] = value
	}

	return &Topology{
		numNodes:       numNodes,
		numQuorumNodes: numQuorumNodes,
		kraftMode:      opts.KRaftMode,
		saslMechanism:  opts.SaslMechanism,
		users:          users,
		extraConfig:    extraConfig,
		clusterID:      clusterID,
	}, nil
}

func (t *Topology) NumNodes() int {
	return t.numNodes
}

func (t *Topology) NumQuorumNodes() int {
	return t.numQuorumNodes
}

func (t *Topology) IsKRaftMode() bool {
	return t.kraftMode
}

func (t *Topology) SaslMechanism() string {
	return t.saslMechanism
}

// Users returns a copy of the configured user table.
func (t *Topology) Users() map[string]string {
	users := make(map[string]string, len(t.users))
	for name, password := range t.users {
		users[name] = password
	}
	return users
}

// ExtraConfig returns a copy of the caller-supplied base configuration.
func (t *Topology) ExtraConfig() map[string]string {
	extraConfig := make(map[string]string, len(t.extraConfig))
	for key, value := range t.extraConfig {
		extraConfig[key] = value
	}
	return extraConfig
}

// ClusterID returns the cluster identifier, or an empty string in ZooKeeper
// mode where the identifier has no meaning.
func (t *Topology) ClusterID() string {
	if !t.kraftMode {
		return ""
	}
	return t.clusterID
}
