package selfmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axo-lotto/dae-hyphae/internal/nexus"
)

func TestZoneOfBoundaries(t *testing.T) {
	assert.Equal(t, Z1CoreSelf, ZoneOf(0.0))
	assert.Equal(t, Z1CoreSelf, ZoneOf(0.15))
	assert.Equal(t, Z2InnerRelational, ZoneOf(0.16))
	assert.Equal(t, Z2InnerRelational, ZoneOf(0.25))
	assert.Equal(t, Z3SymbolicThreshold, ZoneOf(0.26))
	assert.Equal(t, Z3SymbolicThreshold, ZoneOf(0.35))
	assert.Equal(t, Z4ShadowCompost, ZoneOf(0.36))
	assert.Equal(t, Z4ShadowCompost, ZoneOf(0.60))
	assert.Equal(t, Z5ExileCollapse, ZoneOf(0.61))
	assert.Equal(t, Z5ExileCollapse, ZoneOf(1.0))
}

func TestGovernConstitutionalHealthy(t *testing.T) {
	n := &nexus.Nexus{NexusCategory: nexus.Constitutional, NexusType: nexus.TypePreExisting}
	zone := Govern(n, 0.10, 0.8)
	assert.Equal(t, Z1CoreSelf, zone)
	assert.Equal(t, nexus.StanceWitness, n.TherapeuticStance)
	assert.Equal(t, nexus.SafetySafe, n.SafetyLevel)
	assert.InDelta(t, -0.04, n.SelfDistanceInfluence, 1e-9)
	assert.Equal(t, "toward_self", n.ModulationDirection)
}

func TestGovernCrisisBreach(t *testing.T) {
	n := &nexus.Nexus{NexusCategory: nexus.CrisisOriented, NexusType: nexus.TypeDissociative}
	zone := Govern(n, 0.9, 0.4)
	assert.Equal(t, Z5ExileCollapse, zone)
	assert.Equal(t, nexus.StanceMinimal, n.TherapeuticStance)
	assert.Equal(t, nexus.SafetyBreach, n.SafetyLevel)
}

func TestGovernStuckCrisisNeutralInfluence(t *testing.T) {
	n := &nexus.Nexus{NexusCategory: nexus.CrisisOriented, NexusType: nexus.TypeLooped}
	Govern(n, 0.4, 0.5)
	assert.Equal(t, 0.0, n.SelfDistanceInfluence)
	assert.Equal(t, "neutral", n.ModulationDirection)
}

func TestIntrusivenessOrdering(t *testing.T) {
	assert.Less(t, nexus.Intrusiveness(nexus.StanceWitness), nexus.Intrusiveness(nexus.StanceMinimal))
	assert.Less(t, nexus.Intrusiveness(nexus.StanceAttune), nexus.Intrusiveness(nexus.StanceGround))
}
