// Package hebbian implements the 12x12 Hebbian coupling matrix (C10):
// symmetric, zero-diagonal, outcome-gated updates at turn end. Reads take
// the shared read lock and never block one another during a turn's own
// cycles (the matrix is read-only mid-turn per spec.md §5); writes take the
// single process-wide writer lock.
package hebbian

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/axo-lotto/dae-hyphae/internal/atoms"
	"github.com/axo-lotto/dae-hyphae/internal/vecmath"
)

// Matrix is the symmetric, zero-diagonal 12x12 coupling matrix.
type Matrix struct {
	mu   sync.RWMutex
	rows [len(atoms.All)][len(atoms.All)]float64
	rMax float64
}

// New returns a matrix initialized to 0.05 on off-diagonals, zero diagonal
// (spec.md §3).
func New(rMax float64) *Matrix {
	m := &Matrix{rMax: rMax}
	for i := range m.rows {
		for j := range m.rows[i] {
			if i != j {
				m.rows[i][j] = 0.05
			}
		}
	}
	return m
}

// Get returns R[i,j] for two organs.
func (m *Matrix) Get(a, b atoms.Organ) float64 {
	i, j := atoms.Index(a), atoms.Index(b)
	if i < 0 || j < 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rows[i][j]
}

// Snapshot returns a copy of the full matrix for read-heavy consumers
// (nexus composition, diagnostics) that want to avoid repeated locking.
func (m *Matrix) Snapshot() [len(atoms.All)][len(atoms.All)]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rows
}

// Gate is the outcome gate applied to a Hebbian update (spec.md §4.10).
type Gate float64

const (
	GatePositive Gate = 1.0
	GateNegative Gate = -0.5
	GateNeutral  Gate = 0.0
)

// Update applies the outcome-gated Hebbian rule for every organ pair using
// that organ's coherence for the turn, then re-enforces symmetry, zero
// diagonal and the [0, rMax] clip.
func (m *Matrix) Update(coherence map[atoms.Organ]float64, eta float64, gate Gate) {
	if gate == GateNeutral {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, oi := range atoms.All {
		for j, oj := range atoms.All {
			if i == j {
				continue
			}
			if j < i {
				continue // symmetric: compute once per pair, mirror below
			}
			ai, aj := coherence[oi], coherence[oj]
			delta := eta * (ai*aj - m.rows[i][j]) * float64(gate)
			updated := vecmath.Clip(m.rows[i][j]+delta, 0, m.rMax)
			m.rows[i][j] = updated
			m.rows[j][i] = updated
		}
	}
	for i := range m.rows {
		m.rows[i][i] = 0
	}
}

// StdDev returns the standard deviation of all off-diagonal entries, used
// to decide whether to lower the Hebbian learning rate (spec.md §4.10,
// §9: "escape valve to lower it if R-matrix std saturates").
func (m *Matrix) StdDev() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vals := make([]float64, 0, len(atoms.All)*(len(atoms.All)-1))
	for i := range m.rows {
		for j := range m.rows[i] {
			if i != j {
				vals = append(vals, m.rows[i][j])
			}
		}
	}
	return vecmath.StdDev(vals)
}

// persisted is the JSON-on-disk shape (spec.md §6 hebbian_r_matrix.json).
type persisted struct {
	Organs []atoms.Organ `json:"organs"`
	Matrix [][]float64   `json:"matrix"`
	RMax   float64       `json:"r_max"`
}

// Save writes the matrix to path as human-readable JSON (single-writer).
func (m *Matrix) Save(path string) error {
	m.mu.RLock()
	rows := m.rows
	rMax := m.rMax
	m.mu.RUnlock()

	out := persisted{Organs: atoms.All, RMax: rMax}
	for i := range rows {
		row := make([]float64, len(rows[i]))
		copy(row, rows[i][:])
		out.Matrix = append(out.Matrix, row)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("hebbian: marshal: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Load reads a matrix previously written by Save.
func Load(path string) (*Matrix, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hebbian: read %s: %w", path, err)
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("hebbian: unmarshal %s: %w", path, err)
	}
	m := &Matrix{rMax: p.RMax}
	for i := range p.Matrix {
		copy(m.rows[i][:], p.Matrix[i])
	}
	return m, nil
}
