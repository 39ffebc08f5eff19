package cluster

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Listener role names shared by both coordination modes.
//   - EXTERNAL carries producer/consumer traffic and is the only listener
//     that ever authenticates.
//   - INTERNAL carries inter-broker traffic, always unauthenticated.
//   - CONTROLLER carries quorum controller traffic (KRaft only), always
//     unauthenticated.
const (
	ListenerExternal   = "EXTERNAL"
	ListenerInternal   = "INTERNAL"
	ListenerController = "CONTROLLER"
)

const (
	protocolPlaintext     = "PLAINTEXT"
	protocolSaslPlaintext = "SASL_PLAINTEXT"
)

// NodeConfig is the fully resolved configuration for a single node, ready
// to be handed to a node launcher.
type NodeConfig struct {
	// Properties holds the node's configuration keys. Every key was
	// derived exactly once.
	Properties map[string]string

	// ExternalPort is the port clients reach this node on.
	ExternalPort int

	// Endpoint is the externally reachable host:port for this node.
	Endpoint string

	NodeID int

	// ClusterID echoes the topology's identifier. Empty in ZooKeeper
	// mode.
	ClusterID string
}

// listenerTables are the three parallel role-keyed tables the listener
// configuration keys are derived from.
type listenerTables struct {
	protocolMap         map[string]string
	listeners           map[string]string
	advertisedListeners map[string]string
}

/*
GenerateConfigs produces one NodeConfig per node index, in index order.

Generation is a pure function of the topology and the resolver: repeated
calls yield identical output, nothing is mutated, and no I/O is performed
beyond consulting the resolver. Resolver failures propagate to the caller
unchanged apart from node context; there is no retry.
*/
func GenerateConfigs(topo *Topology, resolver EndpointResolver, coordinator CoordinatorSupplier) ([]*NodeConfig, error) {
	var coordEndpoint Endpoint
	if !topo.IsKRaftMode() {
		if coordinator == nil {
			return nil, errors.New("zookeeper mode requires a coordinator supplier")
		}

		// The coordinator address is cluster-global, so it is resolved
		// once rather than per node.
		ep, err := coordinator()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve coordinator endpoint")
		}
		coordEndpoint = ep
	}

	configs := make([]*NodeConfig, 0, topo.NumNodes())
	for nodeID := 0; nodeID < topo.NumNodes(); nodeID++ {
		config, err := generateNodeConfig(topo, resolver, coordEndpoint, nodeID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate config for node %d", nodeID)
		}

		configs = append(configs, config)
	}

	return configs, nil
}

func generateNodeConfig(
	topo *Topology,
	resolver EndpointResolver,
	coordEndpoint Endpoint,
	nodeID int,
) (*NodeConfig, error) {
	props := newPropertySet(topo.ExtraConfig())

	if err := props.putInt("broker.id", nodeID); err != nil {
		return nil, err
	}

	interNode, err := resolver.InterNodeEndpoint(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve inter-node endpoint")
	}

	client, err := resolver.ClientEndpoint(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve client endpoint")
	}

	externalTransport := protocolPlaintext
	if topo.SaslMechanism() != "" {
		externalTransport = protocolSaslPlaintext
	}

	tables := &listenerTables{
		protocolMap: map[string]string{
			ListenerExternal: externalTransport,
			ListenerInternal: protocolPlaintext,
		},
		listeners: map[string]string{
			ListenerExternal: client.Bind.String(),
			ListenerInternal: interNode.Bind.String(),
		},
		advertisedListeners: map[string]string{
			ListenerExternal: client.Connect.String(),
			ListenerInternal: interNode.Connect.String(),
		},
	}

	if err := props.put("inter.broker.listener.name", ListenerInternal); err != nil {
		return nil, err
	}

	if topo.IsKRaftMode() {
		if err := applyKRaftConfig(props, tables, topo, resolver, nodeID); err != nil {
			return nil, err
		}
	} else {
		if err := applyZookeeperConfig(props, coordEndpoint); err != nil {
			return nil, err
		}
	}

	if err := props.put("listener.security.protocol.map", joinRoleTable(tables.protocolMap)); err != nil {
		return nil, err
	}
	if err := props.put("listeners", joinRoleTable(tables.listeners)); err != nil {
		return nil, err
	}
	if err := props.put("advertised.listeners", joinRoleTable(tables.advertisedListeners)); err != nil {
		return nil, err
	}
	if err := props.put("early.start.listeners", strings.Join(sortedRoles(tables.advertisedListeners), ",")); err != nil {
		return nil, err
	}

	if topo.SaslMechanism() != "" {
		if err := applySaslConfig(props, topo); err != nil {
			return nil, err
		}
	}

	// Single-node friendly defaults for the offsets topic, and no delay
	// before the first rebalance.
	if err := props.putInt("offsets.topic.replication.factor", 1); err != nil {
		return nil, err
	}
	if err := props.putInt("offsets.topic.num.partitions", 1); err != nil {
		return nil, err
	}
	if err := props.putInt("group.initial.rebalance.delay.ms", 0); err != nil {
		return nil, err
	}

	return &NodeConfig{
		Properties:   props.freeze(),
		ExternalPort: client.Connect.Port,
		Endpoint:     client.Connect.Address(),
		NodeID:       nodeID,
		ClusterID:    topo.ClusterID(),
	}, nil
}

func applyKRaftConfig(
	props *propertySet,
	tables *listenerTables,
	topo *Topology,
	resolver EndpointResolver,
	nodeID int,
) error {
	if err := props.putInt("node.id", nodeID); err != nil {
		return err
	}

	// Every node carries the full voter table, so the controller endpoint
	// of every quorum member is resolved on every node's pass.
	voters := make([]string, 0, topo.NumQuorumNodes())
	for q := 0; q < topo.NumQuorumNodes(); q++ {
		quorumEndpoint, err := resolver.ControllerEndpoint(q)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve controller endpoint for voter %d", q)
		}

		voters = append(voters, fmt.Sprintf("%d@%s", q, quorumEndpoint.Connect.String()))
	}

	if err := props.put("controller.quorum.voters", strings.Join(voters, ",")); err != nil {
		return err
	}
	if err := props.put("controller.listener.names", ListenerController); err != nil {
		return err
	}
	tables.protocolMap[ListenerController] = protocolPlaintext

	if nodeID == 0 {
		// Only the first node binds the controller-plane listener. The
		// controller role is never advertised.
		controller, err := resolver.ControllerEndpoint(nodeID)
		if err != nil {
			return errors.Wrap(err, "failed to resolve controller endpoint")
		}

		if err := props.put("process.roles", "broker,controller"); err != nil {
			return err
		}
		tables.listeners[ListenerController] = controller.Bind.String()
	} else {
		if err := props.put("process.roles", "broker"); err != nil {
			return err
		}
	}

	return nil
}

func applyZookeeperConfig(props *propertySet, coordEndpoint Endpoint) error {
	if err := props.put("zookeeper.connect", coordEndpoint.Address()); err != nil {
		return err
	}
	if err := props.put("zookeeper.sasl.enabled", "false"); err != nil {
		return err
	}
	return props.put("zookeeper.connection.timeout.ms", "60000")
}

func applySaslConfig(props *propertySet, topo *Topology) error {
	mechanism := topo.SaslMechanism()
	if err := props.put("sasl.enabled.mechanisms", mechanism); err != nil {
		return err
	}

	if mechanism != SaslMechanismPlain {
		// No JAAS wiring exists for other mechanisms; callers asking for
		// one must detect the missing key themselves.
		return nil
	}

	names := maps.Keys(topo.users)
	slices.Sort(names)

	var saslPairs strings.Builder
	for _, name := range names {
		fmt.Fprintf(&saslPairs, "user_%s=%s ", name, topo.users[name])
	}

	jaasConfig := fmt.Sprintf("org.apache.kafka.common.security.plain.PlainLoginModule required %s;", saslPairs.String())
	jaasKey := fmt.Sprintf("listener.name.%s.plain.sasl.jaas.config", strings.ToLower(ListenerExternal))
	return props.put(jaasKey, jaasConfig)
}

// joinRoleTable renders a role-keyed table as a comma-joined role:value
// list in sorted role order.
func joinRoleTable(table map[string]string) string {
	roles := maps.Keys(table)
	slices.Sort(roles)

	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		parts = append(parts, role+":"+table[role])
	}
	return strings.Join(parts, ",")
}

func sortedRoles(table map[string]string) []string {
	roles := maps.Keys(table)
	slices.Sort(roles)
	return roles
}
