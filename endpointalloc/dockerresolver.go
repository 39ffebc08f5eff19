package endpointalloc

import (
	"fmt"

	"github.com/kafkaworks/kafkacluster/cluster"
)

// Well-known container-side ports for each listener role. Every container
// has its own network namespace, so these do not vary per node.
const (
	containerInterNodePort  = 9092
	containerClientPort     = 9093
	containerControllerPort = 9094
)

const defaultPublishedBasePort = 29092

type DockerNetworkResolverOptions struct {
	// NamePrefix is the container name prefix; node i is reachable on
	// the container network as "<prefix>-<i>". Defaults to "kafka".
	NamePrefix string

	// PublishedHost is the host clients outside the container network
	// connect through. Defaults to "localhost".
	PublishedHost string

	// PublishedBasePort is the host port node 0's client listener is
	// published on; node i uses PublishedBasePort+i. Defaults to 29092.
	PublishedBasePort int
}

// DockerNetworkResolver resolves endpoints for nodes running as containers
// on a shared network. Inter-node and controller traffic stays on the
// container network using DNS names; only the client listener is published
// to the host, one port per node.
type DockerNetworkResolver struct {
	namePrefix        string
	publishedHost     string
	publishedBasePort int
}

var _ cluster.EndpointResolver = (*DockerNetworkResolver)(nil)

func NewDockerNetworkResolver(opts *DockerNetworkResolverOptions) (*DockerNetworkResolver, error) {
	namePrefix := opts.NamePrefix
	if namePrefix == "" {
		namePrefix = "kafka"
	}

	publishedHost := opts.PublishedHost
	if publishedHost == "" {
		publishedHost = "localhost"
	}

	publishedBasePort := opts.PublishedBasePort
	if publishedBasePort == 0 {
		publishedBasePort = defaultPublishedBasePort
	}

	return &DockerNetworkResolver{
		namePrefix:        namePrefix,
		publishedHost:     publishedHost,
		publishedBasePort: publishedBasePort,
	}, nil
}

func (r *DockerNetworkResolver) containerHost(nodeID int) string {
	return fmt.Sprintf("%s-%d", r.namePrefix, nodeID)
}

func (r *DockerNetworkResolver) networkLocalPair(nodeID int, port int) cluster.EndpointPair {
	return cluster.EndpointPair{
		Bind:    cluster.Endpoint{Host: "0.0.0.0", Port: port},
		Connect: cluster.Endpoint{Host: r.containerHost(nodeID), Port: port},
	}
}

func (r *DockerNetworkResolver) InterNodeEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return r.networkLocalPair(nodeID, containerInterNodePort), nil
}

func (r *DockerNetworkResolver) ControllerEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return r.networkLocalPair(nodeID, containerControllerPort), nil
}

func (r *DockerNetworkResolver) ClientEndpoint(nodeID int) (cluster.EndpointPair, error) {
	return cluster.EndpointPair{
		Bind:    cluster.Endpoint{Host: "0.0.0.0", Port: containerClientPort},
		Connect: cluster.Endpoint{Host: r.publishedHost, Port: r.publishedBasePort + nodeID},
	}, nil
}
