package dataset

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"txindex/pkg/common"
)

var (
	Origins = []string{
		"BancoCentral", "BancoNacional", "BancoInternacional", "BancoDigital", "BancoRegional",
		"Fintech1", "Fintech2", "Fintech3", "CooperativaA", "CooperativaB",
		"InstitutoFinanceiro", "AgenciaCredito", "CasaCambio", "BancoInvestimento", "BancoComercial",
	}
	Destinations = []string{
		"ClientePF001", "ClientePF002", "ClientePF003", "ClientePF004", "ClientePF005",
		"ClientePJ001", "ClientePJ002", "ClientePJ003", "ClientePJ004", "ClientePJ005",
		"Fornecedor01", "Fornecedor02", "Fornecedor03", "Parceiro01", "Parceiro02",
	}
)

type IDStyle int

const (
	IDSequential IDStyle = iota // TRX00000042
	IDUUID
)

// Generator produces random transactions. Equal seeds give equal datasets
// as long as the id style is sequential.
type Generator struct {
	rng   *rand.Rand
	style IDStyle
}

func NewGenerator(seed int64, style IDStyle) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), style: style}
}

func (g *Generator) id(i int) string {
	if g.style == IDUUID {
		return uuid.NewString()
	}
	return fmt.Sprintf("TRX%08d", i)
}

// Timestamp is a random instant in 2020..2024 with days capped at 28.
func (g *Generator) Timestamp() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		2020+g.rng.Intn(5), 1+g.rng.Intn(12), 1+g.rng.Intn(28),
		g.rng.Intn(24), g.rng.Intn(60), g.rng.Intn(60))
}

func (g *Generator) record(i int, origins []string) common.Record {
	return common.Record{
		ID:          g.id(i),
		Amount:      0.01 + g.rng.Float64()*99999.99,
		Origin:      origins[g.rng.Intn(len(origins))],
		Destination: Destinations[g.rng.Intn(len(Destinations))],
		Timestamp:   g.Timestamp(),
	}
}

// Generate returns n records drawn from the full origin pool.
func (g *Generator) Generate(n int) []common.Record {
	out := make([]common.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.record(i, Origins))
	}
	return out
}

// GenerateWithCollisions concentrates n records on fewer origins: the pool
// is cut to max(1, n*(1-rate)) entries, never more than len(Origins).
func (g *Generator) GenerateWithCollisions(n int, rate float64) []common.Record {
	out := make([]common.Record, 0, n)
	pool := Origins[:DistinctOrigins(n, rate)]
	for i := 0; i < n; i++ {
		out = append(out, g.record(i, pool))
	}
	return out
}

// DistinctOrigins is the origin pool size used for n records at the given
// collision rate.
func DistinctOrigins(n int, rate float64) int {
	k := int(float64(n) * (1 - rate))
	if k < 1 {
		k = 1
	}
	if k > len(Origins) {
		k = len(Origins)
	}
	return k
}
