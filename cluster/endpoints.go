package cluster

import "fmt"

// Endpoint is a single network address used by a cluster node.
type Endpoint struct {
	Host string
	Port int
}

// String renders the endpoint in Kafka listener form.
func (e Endpoint) String() string {
	return fmt.Sprintf("//%s:%d", e.Host, e.Port)
}

// Address renders the endpoint as a plain host:port pair.
func (e Endpoint) Address() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// EndpointPair couples the address a node binds locally with the address
// advertised to clients and peers. The two may be equal.
type EndpointPair struct {
	Bind    Endpoint
	Connect Endpoint
}

/*
EndpointResolver supplies the endpoints for each of a node's listener roles.

Implementations must return the same answer for the same index for the full
duration of a generation run. Controller endpoints are resolved for every
quorum member index on every node's pass, so implementations should expect
repeated lookups for the same index.
*/
type EndpointResolver interface {
	InterNodeEndpoint(nodeID int) (EndpointPair, error)
	ControllerEndpoint(nodeID int) (EndpointPair, error)
	ClientEndpoint(nodeID int) (EndpointPair, error)
}

// CoordinatorSupplier returns the address of the external coordination
// service. It is consulted once per generation run, and only in ZooKeeper
// mode.
type CoordinatorSupplier func() (Endpoint, error)
