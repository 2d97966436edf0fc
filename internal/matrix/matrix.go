package matrix

import (
	"log/slog"
)

// DefaultSize is the node count of the placeholder matrix.
const DefaultSize = 100

// Matrix is a dense square float32 adjacency matrix in row-major order.
type Matrix struct {
	Size int
	Data []float32
}

// New returns a size x size zero matrix.
func New(size int) *Matrix {
	if size <= 0 {
		size = DefaultSize
	}
	return &Matrix{Size: size, Data: make([]float32, size*size)}
}

func (m *Matrix) At(i, j int) float32 {
	return m.Data[i*m.Size+j]
}

// Build returns the adjacency matrix for rels. Company-to-index mapping and
// strength scoring are not implemented yet, so the result is always zero.
func Build(rels *Relationships, size int, log *slog.Logger) *Matrix {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := New(size)

	attrs := []any{"size", m.Size}
	if rels != nil {
		attrs = append(attrs,
			"company_a", rels.CompanyA,
			"company_b", rels.CompanyB,
			"relationships", len(rels.Relationships),
		)
	}
	log.Warn("relationship mapping not implemented, matrix left empty", attrs...)
	return m
}
