package organs

import "github.com/axo-lotto/dae-hyphae/internal/atoms"

// NewAll constructs the fixed set of 12 organs in atoms.All order.
func NewAll(cat *atoms.Catalog) []Organ {
	return []Organ{
		NewListening(cat),
		NewEmpathy(cat),
		NewWisdom(cat),
		NewAuthenticity(cat),
		NewPresence(cat),
		NewBond(cat),
		NewSans(cat),
		NewNDAM(cat),
		NewRNX(cat),
		NewEO(cat),
		NewCard(cat),
		NewNexusOrgan(cat),
	}
}
