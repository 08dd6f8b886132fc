package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/keirin-edge/internal/classify"
	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/scoring"
)

// ranked builds a scored field where car numbers 1..n are already in
// score order, car 1 strongest.
func ranked(n int) *scoring.Result {
	res := &scoring.Result{}
	for i := 0; i < n; i++ {
		score := float64(100 - i*2)
		res.Riders = append(res.Riders, models.ScoredRider{
			Rider: models.Rider{CarNumber: i + 1, BaseScore: score},
			Score: score,
		})
	}
	return res
}

func genRace(composition string) *models.Race {
	return &models.Race{Place: "Iwaki", Date: "2026-04-03", Number: 9, LineComposition: composition}
}

func verdict(a models.Archetype) classify.Verdict {
	return classify.Verdict{Archetype: a, TopCar: 1}
}

func kinds(tickets []models.WagerTicket) []models.BetKind {
	out := make([]models.BetKind, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.Kind)
	}
	return out
}

func TestGenerateSkipProducesNothing(t *testing.T) {
	for _, a := range []models.Archetype{models.ArchetypeSkip, models.ArchetypeInsufficientData} {
		tickets, units := Generate(verdict(a), ranked(7), genRace(""), DefaultConfig())
		assert.Nil(t, tickets)
		assert.Nil(t, units)
	}
}

func TestGenerateStarChaseJump(t *testing.T) {
	tickets, units := Generate(verdict(models.ArchetypeStarChaseJump), ranked(7), genRace(""), DefaultConfig())

	require.Len(t, tickets, 3)
	// Base coverage first, then the archetype tickets.
	assert.Equal(t, []models.BetKind{models.BetKindExacta, models.BetKindTrifecta, models.BetKindExacta}, kinds(tickets))

	tri := tickets[1]
	assert.Equal(t, [][]int{{1}, {2, 3}, {2, 3, 4}}, tri.Groups)
	assert.Equal(t, 4, tri.CombinationCount())

	// Archetype exacta covers 1-2 and 1-3; base coverage holds only 1-4.
	assert.Equal(t, [][]int{{1}, {4}}, tickets[0].Groups)
	assert.Equal(t, 4, units[models.BetKindTrifecta])
	assert.Equal(t, 3, units[models.BetKindExacta])
}

func TestGeneratePartnerFromLine(t *testing.T) {
	// Car 1's line is 1-5-6; car 5 outranks car 6, so 5 is the partner.
	tickets, _ := Generate(verdict(models.ArchetypeStarEscapeShort), ranked(7), genRace("156 234 7"), DefaultConfig())

	var tri models.WagerTicket
	for _, tk := range tickets {
		if tk.Kind == models.BetKindTrifecta {
			tri = tk
		}
	}
	require.NotNil(t, tri.Groups)
	assert.Equal(t, [][]int{{1}, {5}, {2, 3, 4}}, tri.Groups)
}

func TestGeneratePartnerFallsBackToRunnerUp(t *testing.T) {
	tickets, _ := Generate(verdict(models.ArchetypeStarEscapeShort), ranked(7), genRace("1 234 567"), DefaultConfig())

	var tri models.WagerTicket
	for _, tk := range tickets {
		if tk.Kind == models.BetKindTrifecta {
			tri = tk
		}
	}
	assert.Equal(t, [][]int{{1}, {2}, {3, 4}}, tri.Groups)
}

func TestGenerateSujiFixReversedPairing(t *testing.T) {
	v := verdict(models.ArchetypeSujiFix)
	v.ReversePair = true
	tickets, _ := Generate(v, ranked(7), genRace("12 345 67"), DefaultConfig())

	require.Len(t, tickets, 4)
	assert.Equal(t, [][]int{{1}, {2}, {3, 4}}, tickets[1].Groups)
	assert.Equal(t, [][]int{{2}, {1}, {3, 4}}, tickets[2].Groups)
	assert.True(t, tickets[3].Fold)
	assert.Equal(t, models.BetKindExacta, tickets[3].Kind)

	// The fold covers 1-2 both ways, so base coverage is 1-3 and 1-4.
	assert.Equal(t, [][]int{{1}, {3, 4}}, tickets[0].Groups)
}

func TestGenerateSujiFixPlainPairing(t *testing.T) {
	tickets, _ := Generate(verdict(models.ArchetypeSujiFix), ranked(7), genRace("12 345 67"), DefaultConfig())

	require.Len(t, tickets, 3)
	assert.Equal(t, models.BetKindExacta, tickets[2].Kind)
	assert.False(t, tickets[2].Fold)
	assert.Equal(t, [][]int{{1}, {2}}, tickets[2].Groups)
}

func TestGenerateSujiLeadIncludesBonusLeader(t *testing.T) {
	res := ranked(7)
	// Car 6 carries the largest accumulated bonus.
	res.Riders[5].AddBonus(7.5, "test")

	v := verdict(models.ArchetypeSujiLead)
	tickets, _ := Generate(v, res, genRace("12 345 67"), DefaultConfig())

	var tri models.WagerTicket
	for _, tk := range tickets {
		if tk.Kind == models.BetKindTrifecta {
			tri = tk
		}
	}
	assert.Equal(t, [][]int{{1}, {2}, {2, 3, 6}}, tri.Groups)
}

func TestGenerateLineBreakerBox(t *testing.T) {
	tickets, units := Generate(verdict(models.ArchetypeLineBreaker), ranked(7), genRace(""), DefaultConfig())

	require.Len(t, tickets, 2)
	assert.Equal(t, models.BetKindBox, tickets[1].Kind)
	assert.Equal(t, [][]int{{1, 2, 3}}, tickets[1].Groups)
	assert.Equal(t, 1, units[models.BetKindBox])

	// Base exacta coverage applies here too; the box stakes no ordered pair.
	assert.Equal(t, models.BetKindExacta, tickets[0].Kind)
	assert.Equal(t, [][]int{{1}, {2, 3, 4}}, tickets[0].Groups)
	assert.Equal(t, 3, units[models.BetKindExacta])
}

func TestGenerateTwoStrongFold(t *testing.T) {
	tickets, units := Generate(verdict(models.ArchetypeTwoStrong), ranked(7), genRace(""), DefaultConfig())

	var tri models.WagerTicket
	for _, tk := range tickets {
		if tk.Kind == models.BetKindTrifecta {
			tri = tk
		}
	}
	assert.True(t, tri.Fold)
	assert.Equal(t, [][]int{{1, 2}, {1, 2}, {3, 4}}, tri.Groups)
	assert.Equal(t, 4, units[models.BetKindTrifecta])
}

func TestGenerateChaosSpread(t *testing.T) {
	tickets, units := Generate(verdict(models.ArchetypeChaos), ranked(7), genRace(""), DefaultConfig())

	var tri models.WagerTicket
	for _, tk := range tickets {
		if tk.Kind == models.BetKindTrifecta {
			tri = tk
		}
	}
	assert.Equal(t, [][]int{{1, 2}, {1, 2, 3}, {2, 3, 4, 5}}, tri.Groups)
	assert.Equal(t, 11, units[models.BetKindTrifecta])
}

func TestGenerateSnipeUsesHole(t *testing.T) {
	v := verdict(models.ArchetypeSnipe)
	v.Hole = 7
	tickets, _ := Generate(v, ranked(7), genRace(""), DefaultConfig())

	require.Len(t, tickets, 2)
	assert.Equal(t, [][]int{{7}, {1, 2}, {1, 2, 3}}, tickets[1].Groups)

	// The hole trifecta does not displace the standing exacta coverage.
	assert.Equal(t, models.BetKindExacta, tickets[0].Kind)
	assert.Equal(t, [][]int{{1}, {2, 3, 4}}, tickets[0].Groups)
}

func TestGenerateSmallField(t *testing.T) {
	// A three-rider field must not index past the ranking.
	tickets, _ := Generate(verdict(models.ArchetypeStandard), ranked(3), genRace(""), DefaultConfig())

	var tri models.WagerTicket
	for _, tk := range tickets {
		if tk.Kind == models.BetKindTrifecta {
			tri = tk
		}
	}
	assert.Equal(t, [][]int{{1}, {2, 3}, {3}}, tri.Groups)
	assert.Equal(t, 1, tri.CombinationCount()) // only 1-2-3 survives exclusion
}

func TestUnitCountsSumPerKind(t *testing.T) {
	units := UnitCounts([]models.WagerTicket{
		models.NewExacta([]int{1}, []int{2, 3}),
		models.NewExacta([]int{1}, []int{4}),
		models.NewBox([]int{1, 2, 3, 4}),
	})

	assert.Equal(t, 3, units[models.BetKindExacta])
	assert.Equal(t, 4, units[models.BetKindBox])
}
