package tickets

import (
	"github.com/yourusername/keirin-edge/internal/classify"
	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/scoring"
)

// Config holds the generator knobs
type Config struct {
	// BoxSize is how many top-ranked cars a LINE_BREAKER box spans
	BoxSize int `mapstructure:"box_size"`
	// BaseExactaDepth is how deep the base exacta coverage reaches
	// below the top car
	BaseExactaDepth int `mapstructure:"base_exacta_depth"`
	// BonusAxisHigh and BonusAxisMedium are the accumulated-bonus
	// thresholds for the bonus play's confidence tiers
	BonusAxisHigh   float64 `mapstructure:"bonus_axis_high"`
	BonusAxisMedium float64 `mapstructure:"bonus_axis_medium"`
}

// DefaultConfig returns the production generator settings
func DefaultConfig() Config {
	return Config{BoxSize: 3, BaseExactaDepth: 3, BonusAxisHigh: 9.0, BonusAxisMedium: 7.0}
}

// field is the ranked view the patterns draw from
type field struct {
	cars    []int // ranked by final score
	partner int
	bonus   int // car with the largest accumulated bonus
	hole    int
}

// car returns the n-th ranked car (1-based), or 0 past the field
func (f *field) car(n int) int {
	if n < 1 || n > len(f.cars) {
		return 0
	}
	return f.cars[n-1]
}

// pick builds a group from ranked positions, dropping anything past the
// field and anything in the exclusion list.
func (f *field) pick(positions []int, exclude ...int) []int {
	var out []int
next:
	for _, p := range positions {
		c := f.car(p)
		if c == 0 {
			continue
		}
		for _, e := range exclude {
			if c == e {
				continue next
			}
		}
		out = append(out, c)
	}
	return out
}

// Generate produces the wager tickets for a classified race. Patterns
// are deterministic per archetype; SKIP and INSUFFICIENT_DATA produce
// none. The returned unit counts are the distinct combination totals per
// bet kind, for display alongside the tickets.
func Generate(v classify.Verdict, scored *scoring.Result, race *models.Race, cfg Config) ([]models.WagerTicket, map[models.BetKind]int) {
	if v.Archetype == models.ArchetypeSkip || v.Archetype == models.ArchetypeInsufficientData {
		return nil, nil
	}

	f := buildField(v, scored, race)
	tickets := prependBaseExactas(archetypeTickets(v, f, cfg), f, cfg)
	return tickets, UnitCounts(tickets)
}

// UnitCounts sums distinct combination counts per bet kind
func UnitCounts(tickets []models.WagerTicket) map[models.BetKind]int {
	if len(tickets) == 0 {
		return nil
	}
	counts := make(map[models.BetKind]int)
	for _, t := range tickets {
		counts[t.Kind] += t.CombinationCount()
	}
	return counts
}

func buildField(v classify.Verdict, scored *scoring.Result, race *models.Race) *field {
	f := &field{hole: v.Hole}
	score := make(map[int]float64, len(scored.Riders))
	for _, r := range scored.Riders {
		f.cars = append(f.cars, r.CarNumber)
		score[r.CarNumber] = r.Score
	}

	// Bonus leader: the car the rules lifted furthest above its rating.
	best := -1.0
	for _, r := range scored.Riders {
		if b := r.Bonus(); b > best {
			best = b
			f.bonus = r.CarNumber
		}
	}

	// Partner: strongest other member of the top car's line by final
	// score, falling back to the runner-up when the top car is unlined.
	top := f.car(1)
	ln := race.LineOf(top)
	for _, c := range ln.Members {
		if c == top {
			continue
		}
		if f.partner == 0 || score[c] > score[f.partner] {
			f.partner = c
		}
	}
	if f.partner == 0 {
		f.partner = f.car(2)
	}
	return f
}

func archetypeTickets(v classify.Verdict, f *field, cfg Config) []models.WagerTicket {
	c1, pt := f.car(1), f.partner

	switch v.Archetype {
	case models.ArchetypeStarChaseJump:
		return []models.WagerTicket{
			models.NewTrifecta([]int{c1}, f.pick([]int{2, 3}), f.pick([]int{2, 3, 4})),
			models.NewExacta([]int{c1}, f.pick([]int{2, 3})),
		}

	case models.ArchetypeStarEscapeShort:
		return []models.WagerTicket{
			models.NewTrifecta([]int{c1}, []int{pt}, f.pick([]int{2, 3, 4}, c1, pt)),
			models.NewExacta([]int{c1}, []int{pt}),
		}

	case models.ArchetypeStarBacklineShort:
		axis := []int{c1, pt}
		return []models.WagerTicket{
			models.NewFoldTrifecta(axis, f.pick([]int{2, 3, 4}, pt)),
			models.NewFoldExacta([]int{c1}, []int{pt}),
		}

	case models.ArchetypeSnipe:
		return []models.WagerTicket{
			models.NewTrifecta([]int{f.hole}, f.pick([]int{1, 2}), f.pick([]int{1, 2, 3})),
		}

	case models.ArchetypeSujiFix:
		third := f.pick([]int{2, 3, 4}, c1, pt)
		out := []models.WagerTicket{
			models.NewTrifecta([]int{c1}, []int{pt}, third),
		}
		if v.ReversePair {
			out = append(out,
				models.NewTrifecta([]int{pt}, []int{c1}, third),
				models.NewFoldExacta([]int{c1}, []int{pt}),
			)
		} else {
			out = append(out, models.NewExacta([]int{c1}, []int{pt}))
		}
		return out

	case models.ArchetypeSujiLead:
		second := dedup(append([]int{pt}, f.pick([]int{2}, pt)...))
		third := dedup(append(append([]int{pt}, f.pick([]int{2, 3}, pt)...), f.bonus))
		return []models.WagerTicket{
			models.NewTrifecta([]int{c1}, second, third),
		}

	case models.ArchetypeLineBreaker:
		span := make([]int, 0, cfg.BoxSize)
		for i := 1; i <= cfg.BoxSize; i++ {
			if c := f.car(i); c != 0 {
				span = append(span, c)
			}
		}
		return []models.WagerTicket{models.NewBox(span)}

	case models.ArchetypeTeppan:
		return []models.WagerTicket{
			models.NewTrifecta([]int{c1}, f.pick([]int{2, 3}), f.pick([]int{3, 4})),
		}

	case models.ArchetypeTwoStrong:
		return []models.WagerTicket{
			models.NewFoldTrifecta(f.pick([]int{1, 2}), f.pick([]int{3, 4})),
		}

	case models.ArchetypeChaos:
		return []models.WagerTicket{
			models.NewTrifecta(f.pick([]int{1, 2}), f.pick([]int{1, 2, 3}), f.pick([]int{2, 3, 4, 5})),
		}

	case models.ArchetypeStandard:
		return []models.WagerTicket{
			models.NewTrifecta([]int{c1}, f.pick([]int{2, 3}), f.pick([]int{3, 4, 5})),
		}
	}
	return nil
}

// prependBaseExactas adds the standing c1-to-contenders exacta coverage,
// minus any ordered pair an archetype ticket already stakes.
func prependBaseExactas(tickets []models.WagerTicket, f *field, cfg Config) []models.WagerTicket {
	if len(tickets) == 0 {
		return tickets
	}
	c1 := f.car(1)

	var targets []int
	for i := 2; i <= 1+cfg.BaseExactaDepth; i++ {
		c := f.car(i)
		if c == 0 {
			continue
		}
		covered := false
		for _, t := range tickets {
			if t.CoversExactaPair(c1, c) {
				covered = true
				break
			}
		}
		if !covered {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 {
		return tickets
	}

	out := make([]models.WagerTicket, 0, len(tickets)+1)
	out = append(out, models.NewExacta([]int{c1}, targets))
	return append(out, tickets...)
}

func dedup(cars []int) []int {
	seen := make(map[int]bool, len(cars))
	out := cars[:0]
	for _, c := range cars {
		if c != 0 && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
