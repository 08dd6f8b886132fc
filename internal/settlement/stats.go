package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/keirin-edge/internal/models"
)

// Stats accumulates hit and recovery figures over a set of settled races
// or tickets. Rates are percentages.
type Stats struct {
	Count      int             `json:"count"`
	Hits       int             `json:"hits"`
	Investment decimal.Decimal `json:"investment"`
	Return     decimal.Decimal `json:"return"`
}

func (s *Stats) add(hit bool, investment, ret decimal.Decimal) {
	s.Count++
	if hit {
		s.Hits++
	}
	s.Investment = s.Investment.Add(investment)
	s.Return = s.Return.Add(ret)
}

// HitRate returns hits over count as a percentage
func (s *Stats) HitRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Count) * 100
}

// RecoveryRate returns total return over total investment as a percentage
func (s *Stats) RecoveryRate() float64 {
	if !s.Investment.IsPositive() {
		return 0
	}
	rate, _ := s.Return.Div(s.Investment).Mul(decimal.NewFromInt(100)).Float64()
	return rate
}

// Summary aggregates a settlement batch. Only SETTLED records enter the
// denominators: PENDING races have no outcome yet and ERROR records have
// unreliable financials, and either would skew the rates.
type Summary struct {
	Settled Stats `json:"settled"`
	Pending int   `json:"pending"`
	Errors  int   `json:"errors"`

	ByKind      map[models.BetKind]*Stats   `json:"by_kind"`
	ByArchetype map[models.Archetype]*Stats `json:"by_archetype"`
}

// Aggregate folds settlement records into a summary
func Aggregate(records []models.SettlementRecord) Summary {
	sum := Summary{
		ByKind:      make(map[models.BetKind]*Stats),
		ByArchetype: make(map[models.Archetype]*Stats),
	}

	for i := range records {
		rec := &records[i]
		switch rec.Status {
		case models.SettlementPending:
			sum.Pending++
			continue
		case models.SettlementError:
			sum.Errors++
			continue
		}

		sum.Settled.add(rec.Hit, rec.Investment, rec.Return)

		arch := sum.ByArchetype[rec.Archetype]
		if arch == nil {
			arch = &Stats{}
			sum.ByArchetype[rec.Archetype] = arch
		}
		arch.add(rec.Hit, rec.Investment, rec.Return)

		for _, ts := range rec.Tickets {
			if ts.Error != "" {
				continue
			}
			ks := sum.ByKind[ts.Kind]
			if ks == nil {
				ks = &Stats{}
				sum.ByKind[ts.Kind] = ks
			}
			ks.add(ts.Hit, ts.Stake, ts.Return)
		}
	}
	return sum
}
