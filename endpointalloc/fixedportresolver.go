package endpointalloc

import (
	"github.com/kafkaworks/kafkacluster/cluster"
	"github.com/kafkaworks/kafkacluster/utils/netutils"
)

// Each node owns a contiguous block of ports, one per listener role.
const (
	portsPerNode     = 3
	interNodeOffset  = 0
	clientOffset     = 1
	controllerOffset = 2
)

const defaultBasePort = 19092

type FixedPortResolverOptions struct {
	// BindHost is the local address nodes bind to. Defaults to
	// "127.0.0.1".
	BindHost string

	// AdvertiseHost is the address published to clients and peers. When
	// empty it is derived from the bind host, falling back to the
	// system's outbound address for an inaddr_any bind.
	AdvertiseHost string

	// BasePort is the first port of node 0's block. Defaults to 19092.
	BasePort int
}

// FixedPortResolver assigns each node a fixed block of consecutive ports
// on a single host. Resolution is pure arithmetic, so it is deterministic
// and safe for concurrent use.
type FixedPortResolver struct {
	bindHost      string
	advertiseHost string
	basePort      int
}

var _ cluster.EndpointResolver = (*FixedPortResolver)(nil)

func NewFixedPortResolver(opts *FixedPortResolverOptions) (*FixedPortResolver, error) {
	bindHost := opts.BindHost
	if bindHost == "" {
		bindHost = "127.0.0.1"
	}

	advertiseHost := opts.AdvertiseHost
	if advertiseHost == "" {
		advertiseAddr, err := netutils.GetAdvertiseAddress(bindHost)
		if err != nil {
			return nil, err
		}
		advertiseHost = advertiseAddr
	}

	basePort := opts.BasePort
	if basePort == 0 {
		basePort = defaultBasePort
	}

	return &FixedPortResolver{
		bindHost:      bindHost,
		advertiseHost: advertiseHost,
		basePort:      basePort,
	}, nil
}

func (r *FixedPortResolver) pairAt(nodeID int, offset int) cluster.EndpointPair {
	port := r.basePort + nodeID*portsPerNode + offset
	return cluster.EndpointPair{
		Bind:    cluster.Endpoint{Host: r.bindHost, Port: port},
		Connect: cluster.Endpoint{Host: r.advertiseHost, Port: port},
	}
}

func (r *FixedPortResolver) InterNodeEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return r.pairAt(nodeID, interNodeOffset), nil
}

func (r *FixedPortResolver) ClientEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return r.pairAt(nodeID, clientOffset), nil
}

func (r *FixedPortResolver) ControllerEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return r.pairAt(nodeID, controllerOffset), nil
}
