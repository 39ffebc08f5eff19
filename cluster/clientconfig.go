package cluster

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Kafka client configuration keys.
const (
	configBootstrapServers = "bootstrap.servers"
	configSecurityProtocol = "security.protocol"
	configSaslMechanism    = "sasl.mechanism"
	configSaslJaasConfig   = "sasl.jaas.config"
)

// ClientConfig builds the connection configuration for a client of the
// generated cluster, authenticating as the first configured user (in name
// order) when authentication is enabled, or anonymously when the user
// table is empty.
func ClientConfig(topo *Topology, bootstrapServers string) (map[string]string, error) {
	if topo.SaslMechanism() != "" && len(topo.users) > 0 {
		names := maps.Keys(topo.users)
		slices.Sort(names)

		first := names[0]
		return ClientConfigForUser(topo, bootstrapServers, first, topo.users[first])
	}

	return ClientConfigForUser(topo, bootstrapServers, "", "")
}

// ClientConfigForUser builds the connection configuration for a client
// authenticating with explicit credentials. For a topology whose mechanism
// is not PLAIN, no credential material can be derived and an
// UnsupportedMechanismError is returned.
func ClientConfigForUser(topo *Topology, bootstrapServers, username, password string) (map[string]string, error) {
	clientConfig := make(map[string]string)

	mechanism := topo.SaslMechanism()
	if mechanism != "" {
		if mechanism != SaslMechanismPlain {
			return nil, &UnsupportedMechanismError{Mechanism: mechanism}
		}

		clientConfig[configSecurityProtocol] = protocolSaslPlaintext
		clientConfig[configSaslMechanism] = mechanism

		if username != "" && password != "" {
			clientConfig[configSaslJaasConfig] = fmt.Sprintf(
				"org.apache.kafka.common.security.plain.PlainLoginModule required username=%q password=%q;",
				username, password)
		}
	}

	clientConfig[configBootstrapServers] = bootstrapServers

	return clientConfig, nil
}
