package organs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
)

func TestNewAllBuildsTwelveOrgansInAtomsOrder(t *testing.T) {
	cat, err := atoms.Load(EmbeddingDim)
	require.NoError(t, err)

	roster := NewAll(cat)
	require.Len(t, roster, len(atoms.All))
	for i, o := range roster {
		assert.Equal(t, atoms.All[i], o.Name())
	}
}

func TestBaseResultScalesCoherenceByEntityBoost(t *testing.T) {
	cat, err := atoms.Load(EmbeddingDim)
	require.NoError(t, err)

	plain := baseResult(atoms.Empathy, cat, Context{UserInput: "feeling happy today"})
	boosted := baseResult(atoms.Empathy, cat, Context{
		UserInput: "feeling happy today",
		Entity:    EntityPrehension{OrganBoost: map[atoms.Organ]float64{atoms.Empathy: 1.0}},
	})

	assert.GreaterOrEqual(t, boosted.Coherence, plain.Coherence)
}

func TestSafeRecoversFromPanickingOrgan(t *testing.T) {
	cat, err := atoms.Load(EmbeddingDim)
	require.NoError(t, err)

	res := Safe(panickyOrgan{}, cat, Context{UserInput: "hello"})
	assert.Equal(t, atoms.Listening, res.Organ)
	assert.Equal(t, 0.0, res.Coherence)

	names := atomNamesOf(cat.AtomsFor(atoms.Listening))
	require.NotEmpty(t, names)
	sum := 0.0
	for _, n := range names {
		sum += res.LureField[n]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

type panickyOrgan struct{}

func (panickyOrgan) Name() atoms.Organ { return atoms.Listening }
func (panickyOrgan) Process(c Context) Result {
	panic("boom")
}

func TestBondClassifiesExileWhenExileSignalDominates(t *testing.T) {
	cat, err := atoms.Load(EmbeddingDim)
	require.NoError(t, err)
	bond := NewBond(cat)

	res := bond.Process(Context{UserInput: "i feel so little and helpless and alone, abandoned by everyone"})
	require.NotNil(t, res.Bond)
	assert.Equal(t, PartExile, res.Bond.DominantPart)
	assert.Greater(t, res.Bond.SelfDistance, 0.0)
}

func TestNDAMUrgencyRisesWithCrisisLanguage(t *testing.T) {
	cat, err := atoms.Load(EmbeddingDim)
	require.NoError(t, err)
	ndam := NewNDAM(cat)

	calm := ndam.Process(Context{UserInput: "just a normal day, nothing much happening"})
	crisis := ndam.Process(Context{UserInput: "i can't go on, i want to give up, this is an emergency, can't wait"})

	require.NotNil(t, calm.NDAM)
	require.NotNil(t, crisis.NDAM)
	assert.Greater(t, crisis.NDAM.UrgencyLevel, calm.NDAM.UrgencyLevel)
}

func TestEOClassifiesVentralByDefault(t *testing.T) {
	assert.Equal(t, Ventral, classifyPolyvagal(0, 0, 0))
}

func TestEOClassifiesMixedWhenTopTwoClose(t *testing.T) {
	assert.Equal(t, Mixed, classifyPolyvagal(0.5, 0.48, 0.1))
}

func TestEOClassifiesDorsalWhenDominant(t *testing.T) {
	assert.Equal(t, Dorsal, classifyPolyvagal(0.1, 0.1, 0.9))
}

func TestNeutralResultHasUniformLureField(t *testing.T) {
	res := Neutral(atoms.Wisdom, []string{"a", "b"})
	assert.Equal(t, 0.0, res.Coherence)
	assert.InDelta(t, 0.5, res.LureField["a"], 1e-9)
	assert.InDelta(t, 0.5, res.LureField["b"], 1e-9)
}
