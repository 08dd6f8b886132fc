package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/keirin-edge/internal/models"
)

func testRace(riders ...models.Rider) *models.Race {
	return &models.Race{
		Place:  "Kokura",
		Date:   "2026-04-01",
		Number: 7,
		Tier:   models.TierFirst,
		Riders: riders,
	}
}

func rider(car int, base float64) models.Rider {
	return models.Rider{CarNumber: car, BaseScore: base}
}

func findCar(t *testing.T, res *Result, car int) models.ScoredRider {
	t.Helper()
	for _, r := range res.Riders {
		if r.CarNumber == car {
			return r
		}
	}
	t.Fatalf("car %d not in result", car)
	return models.ScoredRider{}
}

func TestScoreRaceDefaultsBase(t *testing.T) {
	race := testRace(models.Rider{CarNumber: 1})
	res := ScoreRace(race, DefaultConfig())

	require.Len(t, res.Riders, 1)
	assert.Equal(t, models.DefaultBaseScore, res.Riders[0].Score)
	assert.Empty(t, res.Riders[0].Tags)
}

func TestScoreRaceResidency(t *testing.T) {
	race := testRace(
		models.Rider{CarNumber: 1, BaseScore: 80, HomeRegion: "Fukuoka"},
		models.Rider{CarNumber: 2, BaseScore: 80, HomeRegion: "Aomori"},
	)
	race.Region = "Fukuoka"
	res := ScoreRace(race, DefaultConfig())

	assert.Equal(t, 83.0, findCar(t, res, 1).Score)
	assert.Equal(t, 80.0, findCar(t, res, 2).Score)
	assert.Contains(t, findCar(t, res, 1).Tags, TagResidency)
}

func TestScoreRaceTacticBonusesStack(t *testing.T) {
	race := testRace(models.Rider{
		CarNumber: 1,
		BaseScore: 80,
		Tactics:   []models.Tactic{models.TacticEscape, models.TacticChaseJump},
	})
	res := ScoreRace(race, DefaultConfig())

	assert.Equal(t, 84.0, res.Riders[0].Score)
}

func TestScoreRaceGeometry(t *testing.T) {
	escape := models.Rider{CarNumber: 1, BaseScore: 80, Tactics: []models.Tactic{models.TacticEscape}}
	closer := models.Rider{CarNumber: 2, BaseScore: 80, Tactics: []models.Tactic{models.TacticCloser}}

	t.Run("short straight favours escape", func(t *testing.T) {
		race := testRace(escape, closer)
		race.StraightLength = 42.7
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 84.0, findCar(t, res, 1).Score) // tactic +2 and geometry +2
		assert.Equal(t, 80.0, findCar(t, res, 2).Score)
	})

	t.Run("long straight favours closer", func(t *testing.T) {
		race := testRace(escape, closer)
		race.StraightLength = 62.0
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 82.0, findCar(t, res, 1).Score)
		assert.Equal(t, 82.0, findCar(t, res, 2).Score)
	})

	t.Run("steep banking favours chase-jump", func(t *testing.T) {
		race := testRace(models.Rider{
			CarNumber: 3, BaseScore: 80,
			Tactics: []models.Tactic{models.TacticChaseJump},
		})
		race.BankingAngle = 34.0
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 84.0, res.Riders[0].Score)
	})

	t.Run("zero geometry skips the rule", func(t *testing.T) {
		race := testRace(escape)
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 82.0, res.Riders[0].Score)
	})
}

func TestScoreRaceLineThirdBonus(t *testing.T) {
	race := testRace(
		rider(1, 90), rider(2, 80), rider(3, 80),
		rider(4, 85), rider(5, 80), rider(6, 80),
		rider(7, 80),
	)
	race.LineComposition = "123 456 7"
	res := ScoreRace(race, DefaultConfig())

	// Two length-3 lines; the one led by the stronger car 1 ranks first.
	assert.Equal(t, 82.0, findCar(t, res, 3).Score)
	assert.Equal(t, 81.0, findCar(t, res, 6).Score)
	assert.Equal(t, 80.0, findCar(t, res, 7).Score)
}

func TestScoreRaceUniqueLongestLine(t *testing.T) {
	t.Run("length four boosts all members", func(t *testing.T) {
		race := testRace(
			rider(1, 80), rider(2, 80), rider(3, 80), rider(4, 80),
			rider(5, 80), rider(6, 80),
		)
		race.LineComposition = "1234 56"
		res := ScoreRace(race, DefaultConfig())

		for _, car := range []int{1, 2, 3, 4} {
			assert.Contains(t, findCar(t, res, car).Tags, TagLineLongest, "car %d", car)
		}
		assert.Equal(t, 82.5, findCar(t, res, 1).Score)
		assert.Equal(t, 84.5, findCar(t, res, 3).Score) // third-pos +2.0 as well
		assert.Equal(t, 80.0, findCar(t, res, 5).Score)
	})

	t.Run("length three splits front and third", func(t *testing.T) {
		race := testRace(
			rider(1, 80), rider(2, 80), rider(3, 80),
			rider(4, 80), rider(5, 80),
		)
		race.LineComposition = "123 45"
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 81.5, findCar(t, res, 1).Score)
		assert.Equal(t, 82.5, findCar(t, res, 3).Score) // 0.5 longest, 2.0 third-pos
	})

	t.Run("tied longest lines get nothing", func(t *testing.T) {
		race := testRace(
			rider(1, 80), rider(2, 80), rider(3, 80), rider(4, 80),
		)
		race.LineComposition = "12 34"
		res := ScoreRace(race, DefaultConfig())

		for _, r := range res.Riders {
			assert.NotContains(t, r.Tags, TagLineLongest)
		}
	})

	t.Run("per-track adjustment applies", func(t *testing.T) {
		race := testRace(
			rider(1, 80), rider(2, 80), rider(3, 80), rider(4, 80),
			rider(5, 80),
		)
		race.LineComposition = "1234 5"
		cfg := DefaultConfig()
		cfg.LineBonusAdjust["Kokura"] = -1.0
		res := ScoreRace(race, cfg)

		assert.Equal(t, 81.5, findCar(t, res, 1).Score)
	})
}

func TestScoreRaceClassLift(t *testing.T) {
	t.Run("rookie top escape", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 88, Tier: models.TierRookie, TopEscape: true},
			rider(2, 80),
			rider(3, 80),
		)
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 92.0, findCar(t, res, 1).Score)
	})

	t.Run("first tier takes larger of the two lifts", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 88, Tier: models.TierFirst, TopEscape: true, TopChaseJump: true},
			rider(2, 80),
		)
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 90.5, findCar(t, res, 1).Score)
	})

	t.Run("weaker rider after a tie gets no lift", func(t *testing.T) {
		race := testRace(
			rider(1, 90),
			rider(2, 90),
			models.Rider{CarNumber: 3, BaseScore: 80, Tier: models.TierRookie, TopEscape: true},
		)
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 80.0, findCar(t, res, 3).Score)
		assert.NotContains(t, findCar(t, res, 3).Tags, TagClassLift)
	})

	t.Run("tied strongest riders get no lift", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 88, Tier: models.TierElite, TopEscape: true},
			models.Rider{CarNumber: 2, BaseScore: 88, Tier: models.TierElite, TopEscape: true},
		)
		res := ScoreRace(race, DefaultConfig())

		for _, r := range res.Riders {
			assert.NotContains(t, r.Tags, TagClassLift)
		}
	})
}

func TestDominanceDetection(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("margin rule", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, ChaseJumpCount: 8},
			models.Rider{CarNumber: 2, BaseScore: 80, ChaseJumpCount: 3},
		)
		res := ScoreRace(race, cfg)

		assert.Equal(t, 1, res.ChaseJumpDominant)
		assert.Equal(t, 86.0, findCar(t, res, 1).Score)
	})

	t.Run("ratio rule", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, CloserCount: 6},
			models.Rider{CarNumber: 2, BaseScore: 80, CloserCount: 2},
		)
		res := ScoreRace(race, cfg)

		assert.Equal(t, 1, res.CloserDominant)
		assert.Equal(t, 82.0, findCar(t, res, 1).Score)
	})

	t.Run("sole actor rule", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, EscapeCount: 5},
			rider(2, 80),
		)
		res := ScoreRace(race, cfg)

		assert.Equal(t, 1, res.EscapeDominant)
	})

	t.Run("below min count is contested", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, EscapeCount: 4},
			rider(2, 80),
		)
		res := ScoreRace(race, cfg)

		assert.Zero(t, res.EscapeDominant)
	})

	t.Run("close counts are contested", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, EscapeCount: 7},
			models.Rider{CarNumber: 2, BaseScore: 80, EscapeCount: 5},
		)
		res := ScoreRace(race, cfg)

		assert.Zero(t, res.EscapeDominant)
	})
}

func TestDominancePrecedence(t *testing.T) {
	// Car 1 dominates both chase-jump and escape; only the chase-jump
	// bonus may apply.
	race := testRace(
		models.Rider{CarNumber: 1, BaseScore: 80, ChaseJumpCount: 8, EscapeCount: 8},
		rider(2, 80),
	)
	res := ScoreRace(race, DefaultConfig())

	r := findCar(t, res, 1)
	assert.Contains(t, r.Tags, TagDomChaseJump)
	assert.NotContains(t, r.Tags, TagDomEscape)
	assert.Equal(t, 86.0, r.Score)
}

func TestEscapeDominanceStraightDependent(t *testing.T) {
	build := func() *models.Race {
		return testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, EscapeCount: 8},
			rider(2, 80),
		)
	}

	short := build()
	short.StraightLength = 40.0
	assert.Equal(t, 85.0, ScoreRace(short, DefaultConfig()).Riders[0].Score)

	long := build()
	long.StraightLength = 60.0
	assert.Equal(t, 83.0, ScoreRace(long, DefaultConfig()).Riders[0].Score)
}

func TestBackLeaderBonus(t *testing.T) {
	build := func() *models.Race {
		return testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, BackCount: 6},
			models.Rider{CarNumber: 2, BaseScore: 80, BackCount: 2},
		)
	}

	short := build()
	short.StraightLength = 40.0
	assert.Equal(t, 83.0, ScoreRace(short, DefaultConfig()).Riders[0].Score)

	long := build()
	long.StraightLength = 60.0
	assert.Equal(t, 81.0, ScoreRace(long, DefaultConfig()).Riders[0].Score)

	neutral := build()
	neutral.StraightLength = 54.0
	assert.Equal(t, 82.0, ScoreRace(neutral, DefaultConfig()).Riders[0].Score)

	none := testRace(rider(1, 80), rider(2, 80))
	assert.Zero(t, ScoreRace(none, DefaultConfig()).BackLeader)
}

func TestContestedEscape(t *testing.T) {
	t.Run("penalises non-dominant closers and boosts the leader", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, EscapeCount: 4},
			models.Rider{CarNumber: 2, BaseScore: 80, EscapeCount: 3},
			models.Rider{CarNumber: 3, BaseScore: 80, EscapeCount: 3},
			models.Rider{CarNumber: 4, BaseScore: 80, Tactics: []models.Tactic{models.TacticCloser}},
		)
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 82.0, findCar(t, res, 1).Score)
		assert.Equal(t, 79.0, findCar(t, res, 4).Score)
		assert.Contains(t, findCar(t, res, 4).Tags, TagContestedFade)
	})

	t.Run("no boost when escape dominance already paid", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, EscapeCount: 9},
			models.Rider{CarNumber: 2, BaseScore: 80, EscapeCount: 3},
			models.Rider{CarNumber: 3, BaseScore: 80, EscapeCount: 3},
		)
		res := ScoreRace(race, DefaultConfig())

		r := findCar(t, res, 1)
		assert.Contains(t, r.Tags, TagDomEscape)
		assert.NotContains(t, r.Tags, TagContestedLead)
	})

	t.Run("two contenders is not contested", func(t *testing.T) {
		race := testRace(
			models.Rider{CarNumber: 1, BaseScore: 80, EscapeCount: 4},
			models.Rider{CarNumber: 2, BaseScore: 80, EscapeCount: 3},
			models.Rider{CarNumber: 3, BaseScore: 80, Tactics: []models.Tactic{models.TacticCloser}},
		)
		res := ScoreRace(race, DefaultConfig())

		assert.Equal(t, 80.0, findCar(t, res, 3).Score)
	})
}

func TestScoreRaceOrdering(t *testing.T) {
	race := testRace(rider(5, 70), rider(2, 92), rider(7, 92), rider(1, 84))
	res := ScoreRace(race, DefaultConfig())

	cars := make([]int, 0, len(res.Riders))
	for _, r := range res.Riders {
		cars = append(cars, r.CarNumber)
	}
	assert.Equal(t, []int{2, 7, 1, 5}, cars)
}

func TestScoreNeverDropsBelowBaseMinusPenalty(t *testing.T) {
	race := testRace(
		models.Rider{CarNumber: 1, BaseScore: 80, EscapeCount: 4},
		models.Rider{CarNumber: 2, BaseScore: 80, EscapeCount: 3},
		models.Rider{CarNumber: 3, BaseScore: 80, EscapeCount: 3},
		models.Rider{CarNumber: 4, BaseScore: 75, Tactics: []models.Tactic{models.TacticCloser}},
	)
	res := ScoreRace(race, DefaultConfig())

	for _, r := range res.Riders {
		assert.GreaterOrEqual(t, r.Score, r.EffectiveBase()-1.0)
	}
}
