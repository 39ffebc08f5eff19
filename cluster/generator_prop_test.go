package cluster

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestGenerateProperties checks the generator invariants across a range of
// cluster shapes rather than a handful of fixed examples.
func TestGenerateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	makeTopology := func(numNodes, numQuorumNodes int, kraftMode bool, withAuth bool) *Topology {
		opts := &TopologyOptions{
			NumNodes:  numNodes,
			KRaftMode: kraftMode,
			ClusterID: "fixed-cluster-id",
		}
		if kraftMode {
			opts.NumQuorumNodes = numQuorumNodes
		}
		if withAuth {
			opts.SaslMechanism = SaslMechanismPlain
			opts.Users = map[string]string{"alice": "secret"}
		}

		topo, err := NewTopology(opts)
		if err != nil {
			t.Fatalf("failed to build topology: %s", err)
		}
		return topo
	}

	properties.Property("generation is deterministic", prop.ForAll(
		func(numNodes, quorumSeed int, kraftMode, withAuth bool) bool {
			numQuorumNodes := quorumSeed%numNodes + 1
			topo := makeTopology(numNodes, numQuorumNodes, kraftMode, withAuth)
			resolver := &stubResolver{basePort: 10000}

			first, err := GenerateConfigs(topo, resolver, testCoordinator)
			if err != nil {
				return false
			}
			second, err := GenerateConfigs(topo, resolver, testCoordinator)
			if err != nil {
				return false
			}

			if len(first) != len(second) {
				return false
			}
			for i := range first {
				if !reflect.DeepEqual(first[i], second[i]) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 64),
		gen.Bool(),
		gen.Bool(),
	))

	properties.Property("every node shares one voter table", prop.ForAll(
		func(numNodes, quorumSeed int) bool {
			numQuorumNodes := quorumSeed%numNodes + 1
			topo := makeTopology(numNodes, numQuorumNodes, true, false)

			configs, err := GenerateConfigs(topo, &stubResolver{basePort: 10000}, nil)
			if err != nil {
				return false
			}

			voters := configs[0].Properties["controller.quorum.voters"]
			for _, config := range configs {
				if config.Properties["controller.quorum.voters"] != voters {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 64),
	))

	properties.Property("mode keys never leak across modes", prop.ForAll(
		func(numNodes int, kraftMode bool) bool {
			topo := makeTopology(numNodes, 1, kraftMode, false)

			configs, err := GenerateConfigs(topo, &stubResolver{basePort: 10000}, testCoordinator)
			if err != nil {
				return false
			}

			for _, config := range configs {
				_, hasZk := config.Properties["zookeeper.connect"]
				_, hasRoles := config.Properties["process.roles"]
				if kraftMode && hasZk {
					return false
				}
				if !kraftMode && hasRoles {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
