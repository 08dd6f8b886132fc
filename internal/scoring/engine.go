package scoring

import (
	"sort"

	"github.com/yourusername/keirin-edge/internal/models"
)

// Bonus tags attached to ScoredRider entries so downstream consumers
// (classifier, reason strings, tests) can see which rules fired.
const (
	TagResidency       = "residency"
	TagTacticEscape    = "tactic:escape"
	TagTacticChaseJump = "tactic:chase-jump"
	TagGeometry        = "geometry"
	TagLineThird       = "line:third"
	TagLineLongest     = "line:longest"
	TagClassLift       = "class-lift"
	TagDomChaseJump    = "dominance:chase-jump"
	TagDomEscape       = "dominance:escape"
	TagDomCloser       = "dominance:closer"
	TagBackLeader      = "back-leader"
	TagContestedLead   = "contested:leader"
	TagContestedFade   = "contested:fade"
)

// Result carries the scored field plus the dominance facts the classifier
// needs, so they are computed once.
type Result struct {
	Riders []models.ScoredRider // sorted by score desc, car asc on ties

	ChaseJumpDominant int // car number, 0 when none
	EscapeDominant    int
	CloserDominant    int
	BackLeader        int
}

// Top returns the highest-scored rider. Callers must check len(Riders) first.
func (r *Result) Top() models.ScoredRider {
	return r.Riders[0]
}

// ScoreRace applies the full rule set to every rider in the race and
// returns the field ranked by final score. It never fails: missing
// numerics fall back to defaults and absent line data simply skips the
// line rules.
func ScoreRace(race *models.Race, cfg Config) *Result {
	scored := make([]models.ScoredRider, 0, len(race.Riders))
	for _, rd := range race.Riders {
		scored = append(scored, models.ScoredRider{
			Rider: rd,
			Score: rd.EffectiveBase(),
		})
	}

	byCar := make(map[int]*models.ScoredRider, len(scored))
	for i := range scored {
		byCar[scored[i].CarNumber] = &scored[i]
	}

	applyResidency(scored, race, cfg)
	applyTacticTags(scored, cfg)
	applyGeometry(scored, race, cfg)
	applyLineBonuses(byCar, race, cfg)
	applyClassLift(scored, cfg)

	res := &Result{
		ChaseJumpDominant: dominantCar(scored, cfg, func(r *models.Rider) int { return r.ChaseJumpCount }),
		EscapeDominant:    dominantCar(scored, cfg, func(r *models.Rider) int { return r.EscapeCount }),
		CloserDominant:    dominantCar(scored, cfg, func(r *models.Rider) int { return r.CloserCount }),
		BackLeader:        backLeader(scored),
	}
	applyDominance(byCar, race, res, cfg)
	applyContestedEscape(scored, res, cfg)

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].CarNumber < scored[j].CarNumber
	})
	res.Riders = scored
	return res
}

func applyResidency(scored []models.ScoredRider, race *models.Race, cfg Config) {
	if race.Region == "" {
		return
	}
	for i := range scored {
		if scored[i].HomeRegion == race.Region {
			scored[i].AddBonus(cfg.ResidencyBonus, TagResidency)
		}
	}
}

func applyTacticTags(scored []models.ScoredRider, cfg Config) {
	for i := range scored {
		if scored[i].HasTactic(models.TacticEscape) {
			scored[i].AddBonus(cfg.TacticBonus, TagTacticEscape)
		}
		if scored[i].HasTactic(models.TacticChaseJump) {
			scored[i].AddBonus(cfg.TacticBonus, TagTacticChaseJump)
		}
	}
}

func applyGeometry(scored []models.ScoredRider, race *models.Race, cfg Config) {
	for i := range scored {
		r := &scored[i]
		if race.StraightLength > 0 {
			if race.StraightLength < cfg.ShortStraight && r.HasTactic(models.TacticEscape) {
				r.AddBonus(cfg.GeometryBonus, TagGeometry)
			}
			if race.StraightLength > cfg.LongStraight &&
				(r.HasTactic(models.TacticChaseJump) || r.HasTactic(models.TacticCloser)) {
				r.AddBonus(cfg.GeometryBonus, TagGeometry)
			}
		}
		if race.BankingAngle > 0 {
			if race.BankingAngle < cfg.ShallowBank && r.HasTactic(models.TacticEscape) {
				r.AddBonus(cfg.GeometryBonus, TagGeometry)
			}
			if race.BankingAngle > cfg.SteepBank && r.HasTactic(models.TacticChaseJump) {
				r.AddBonus(cfg.GeometryBonus, TagGeometry)
			}
		}
	}
}

// applyLineBonuses ranks the parsed lines and rewards third-position
// riders plus, when a single line clearly out-sizes the rest, its members.
func applyLineBonuses(byCar map[int]*models.ScoredRider, race *models.Race, cfg Config) {
	lines := race.Lines()
	if len(lines) == 0 {
		return
	}

	ranked := make([]models.Line, len(lines))
	copy(ranked, lines)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Length() != ranked[j].Length() {
			return ranked[i].Length() > ranked[j].Length()
		}
		return leaderBase(byCar, ranked[i]) > leaderBase(byCar, ranked[j])
	})

	for rank, ln := range ranked {
		if ln.Length() < 3 {
			continue
		}
		third := byCar[ln.Members[2]]
		if third == nil {
			continue
		}
		if rank == 0 {
			third.AddBonus(cfg.ThirdPosBonusTop, TagLineThird)
		} else {
			third.AddBonus(cfg.ThirdPosBonusOther, TagLineThird)
		}
	}

	maxLen := ranked[0].Length()
	unique := maxLen >= 3
	for _, ln := range ranked[1:] {
		if ln.Length() == maxLen {
			unique = false
			break
		}
	}
	if !unique {
		return
	}

	adj := cfg.LineBonusAdjust[race.Place]
	longest := ranked[0]
	switch {
	case maxLen >= 4:
		for _, car := range longest.Members {
			if r := byCar[car]; r != nil {
				r.AddBonus(cfg.LongestLine4Bonus+adj, TagLineLongest)
			}
		}
	case maxLen == 3:
		for pos, car := range longest.Members {
			r := byCar[car]
			if r == nil {
				continue
			}
			if pos < 2 {
				r.AddBonus(cfg.LongestLine3Front+adj, TagLineLongest)
			} else {
				r.AddBonus(cfg.LongestLine3Third+adj, TagLineLongest)
			}
		}
	}
}

func leaderBase(byCar map[int]*models.ScoredRider, ln models.Line) float64 {
	if r := byCar[ln.Leader()]; r != nil {
		return r.EffectiveBase()
	}
	return 0
}

// applyClassLift boosts the single strongest rider on paper according to
// their class tier. Candidate lifts do not stack; the largest applicable
// one wins.
func applyClassLift(scored []models.ScoredRider, cfg Config) {
	best := -1
	tied := false
	for i := range scored {
		switch {
		case best < 0 || scored[i].EffectiveBase() > scored[best].EffectiveBase():
			best = i
			tied = false
		case scored[i].EffectiveBase() == scored[best].EffectiveBase():
			tied = true
		}
	}
	if best < 0 || tied {
		// tie: nobody is the single strongest
		return
	}

	r := &scored[best]
	var lift float64
	switch r.Tier {
	case models.TierRookie:
		if r.TopEscape || r.TopChaseJump {
			lift = cfg.RookieLift
		}
	case models.TierFirst:
		if r.TopEscape {
			lift = cfg.FirstEscapeLift
		}
		if r.TopChaseJump && cfg.FirstChaseJumpLift > lift {
			lift = cfg.FirstChaseJumpLift
		}
	case models.TierElite:
		if r.TopEscape {
			lift = cfg.EliteEscapeLift
		}
		if r.TopCloser && cfg.EliteCloserLift > lift {
			lift = cfg.EliteCloserLift
		}
	}
	if lift > 0 {
		r.AddBonus(lift, TagClassLift)
	}
}

// dominantCar finds the rider whose count in one tactic towers over the
// rest of the field. Returns 0 when the field is contested.
func dominantCar(scored []models.ScoredRider, cfg Config, count func(*models.Rider) int) int {
	topCar, top, second := 0, 0, 0
	for i := range scored {
		c := count(&scored[i].Rider)
		if c > top {
			second = top
			top = c
			topCar = scored[i].CarNumber
		} else if c > second {
			second = c
		}
	}
	if top < cfg.DominanceMinCount {
		return 0
	}
	if second == 0 {
		return topCar
	}
	if top >= second+cfg.DominanceMargin {
		return topCar
	}
	if float64(top)/float64(second) >= cfg.DominanceRatio {
		return topCar
	}
	return 0
}

func backLeader(scored []models.ScoredRider) int {
	car, top := 0, 0
	for i := range scored {
		if scored[i].BackCount > top {
			top = scored[i].BackCount
			car = scored[i].CarNumber
		}
	}
	return car
}

// applyDominance grants at most one dominance bonus per rider, with
// chase-jump outranking escape outranking closer. The back-straight
// leader bonus is independent and may stack.
func applyDominance(byCar map[int]*models.ScoredRider, race *models.Race, res *Result, cfg Config) {
	if r := byCar[res.ChaseJumpDominant]; r != nil {
		r.AddBonus(cfg.ChaseJumpDomBonus, TagDomChaseJump)
	}
	if r := byCar[res.EscapeDominant]; r != nil && res.EscapeDominant != res.ChaseJumpDominant {
		if race.IsShortStraight(cfg.ShortStraight) {
			r.AddBonus(cfg.EscapeDomShort, TagDomEscape)
		} else {
			r.AddBonus(cfg.EscapeDomOther, TagDomEscape)
		}
	}
	if r := byCar[res.CloserDominant]; r != nil &&
		res.CloserDominant != res.ChaseJumpDominant && res.CloserDominant != res.EscapeDominant {
		r.AddBonus(cfg.CloserDomBonus, TagDomCloser)
	}

	if r := byCar[res.BackLeader]; r != nil {
		switch {
		case race.StraightLength > 0 && race.StraightLength < cfg.ShortStraight:
			r.AddBonus(cfg.BackLeaderShort, TagBackLeader)
		case race.StraightLength > cfg.LongStraight:
			r.AddBonus(cfg.BackLeaderLong, TagBackLeader)
		default:
			r.AddBonus(cfg.BackLeaderNeutral, TagBackLeader)
		}
	}
}

// applyContestedEscape handles races where several riders want the front:
// pure closers lose ground in the scramble and the most committed escape
// rider gains, unless dominance already priced that in.
func applyContestedEscape(scored []models.ScoredRider, res *Result, cfg Config) {
	contenders := 0
	leaderIdx, leaderCount := -1, 0
	for i := range scored {
		ec := scored[i].EscapeCount
		if ec >= cfg.ContestedEscapeForm {
			contenders++
		}
		if ec > leaderCount {
			leaderCount = ec
			leaderIdx = i
		} else if ec == leaderCount && ec > 0 {
			leaderIdx = -1 // tie: no single leader
		}
	}
	if contenders < cfg.ContestedEscapeCount {
		return
	}

	for i := range scored {
		r := &scored[i]
		if r.HasTactic(models.TacticCloser) && r.CarNumber != res.CloserDominant {
			r.AddBonus(-cfg.ContestedCloserPenalty, TagContestedFade)
		}
	}
	if leaderIdx >= 0 {
		leader := &scored[leaderIdx]
		if leader.CarNumber != res.EscapeDominant {
			leader.AddBonus(cfg.ContestedEscapeBonus, TagContestedLead)
		}
	}
}
