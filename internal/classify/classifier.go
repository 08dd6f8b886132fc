package classify

import (
	"fmt"
	"math"

	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/scoring"
)

type lineMode int

const (
	modeNone lineMode = iota
	modeFix
	modeLead
	modeBreak
)

// Verdict is the classifier output: the archetype and its supporting
// facts, before any tickets are attached.
type Verdict struct {
	Archetype  models.Archetype
	Confidence models.Confidence
	Reason     string
	Strict     bool

	TopCar  int
	Partner int     // strongest same-line partner of the top car, 0 when unlined
	Gap     float64 // |top base - partner base|, meaningful only when Partner != 0
	Hole    int     // long-shot override car, SNIPE only

	// ReversePair is set on SUJI_FIX when the partner gap is narrow
	// enough that the pairing may finish either way round, so ticket
	// generation should also cover the reversed order.
	ReversePair bool
}

type rule struct {
	name  string
	match func(*context) bool
	apply func(*context) Verdict
}

type context struct {
	scored *scoring.Result
	race   *models.Race
	cfg    Config

	top     models.ScoredRider
	partner int
	gap     float64
	mode    lineMode
}

// Classify maps a scored field onto exactly one betting archetype. It is
// total over valid input: any field of three or more riders produces an
// archetype, and smaller fields produce INSUFFICIENT_DATA rather than an
// error.
func Classify(scored *scoring.Result, race *models.Race, cfg Config) Verdict {
	if len(scored.Riders) < 3 {
		return Verdict{
			Archetype:  models.ArchetypeInsufficientData,
			Confidence: models.ConfidenceNone,
			Reason:     fmt.Sprintf("only %d scored riders, need 3", len(scored.Riders)),
		}
	}

	ctx := &context{scored: scored, race: race, cfg: cfg, top: scored.Top()}
	ctx.partner, ctx.gap = linePartner(scored, race, ctx.top.CarNumber)
	ctx.mode = lineTrustMode(ctx)

	for _, r := range rules {
		if r.match(ctx) {
			v := r.apply(ctx)
			v.TopCar = ctx.top.CarNumber
			v.Partner = ctx.partner
			v.Gap = ctx.gap
			return v
		}
	}
	// rules end in a catch-all; unreachable
	return Verdict{Archetype: models.ArchetypeStandard, Confidence: models.ConfidenceMedium}
}

// rules are evaluated top to bottom, first match wins.
var rules = []rule{
	{
		name: "snipe",
		match: func(c *context) bool {
			return snipeHole(c) != 0
		},
		apply: func(c *context) Verdict {
			hole := snipeHole(c)
			return Verdict{
				Archetype:  models.ArchetypeSnipe,
				Confidence: models.ConfidenceA,
				Reason:     fmt.Sprintf("long-shot override on car %d against top car %d", hole, c.top.CarNumber),
				Hole:       hole,
			}
		},
	},
	{
		name: "star-chase-jump",
		match: func(c *context) bool {
			return c.scored.ChaseJumpDominant == c.top.CarNumber
		},
		apply: func(c *context) Verdict {
			return Verdict{
				Archetype:  models.ArchetypeStarChaseJump,
				Confidence: models.ConfidenceSS,
				Reason:     fmt.Sprintf("car %d dominates chase-jump counts", c.top.CarNumber),
			}
		},
	},
	{
		name: "star-escape-short",
		match: func(c *context) bool {
			return c.scored.EscapeDominant == c.top.CarNumber &&
				c.race.IsShortStraight(c.cfg.ShortStraight)
		},
		apply: func(c *context) Verdict {
			return Verdict{
				Archetype:  models.ArchetypeStarEscapeShort,
				Confidence: models.ConfidenceS,
				Reason:     fmt.Sprintf("car %d dominates escapes on a short straight", c.top.CarNumber),
			}
		},
	},
	{
		name: "star-backline-short",
		match: func(c *context) bool {
			return c.scored.BackLeader == c.top.CarNumber &&
				c.race.IsShortStraight(c.cfg.ShortStraight)
		},
		apply: func(c *context) Verdict {
			return Verdict{
				Archetype:  models.ArchetypeStarBacklineShort,
				Confidence: models.ConfidenceA,
				Reason:     fmt.Sprintf("car %d leads back-position counts on a short straight", c.top.CarNumber),
			}
		},
	},
	{
		name:  "suji-fix",
		match: func(c *context) bool { return c.mode == modeFix },
		apply: func(c *context) Verdict {
			return Verdict{
				Archetype:   models.ArchetypeSujiFix,
				Confidence:  models.ConfidenceMax,
				Reason:      fmt.Sprintf("line decides it: car %d with partner %d, gap %.1f", c.top.CarNumber, c.partner, c.gap),
				Strict:      strictFlag(c),
				ReversePair: reversePair(c),
			}
		},
	},
	{
		name:  "suji-lead",
		match: func(c *context) bool { return c.mode == modeLead },
		apply: func(c *context) Verdict {
			return Verdict{
				Archetype:  models.ArchetypeSujiLead,
				Confidence: models.ConfidenceHigh,
				Reason:     fmt.Sprintf("line-led race: car %d with partner %d, gap %.1f", c.top.CarNumber, c.partner, c.gap),
				Strict:     strictFlag(c),
			}
		},
	},
	{
		name:  "line-breaker",
		match: func(c *context) bool { return c.mode == modeBreak },
		apply: func(c *context) Verdict {
			return Verdict{
				Archetype:  models.ArchetypeLineBreaker,
				Confidence: models.ConfidenceLow,
				Reason:     fmt.Sprintf("%d lines, formation unlikely to hold", len(c.race.Lines())),
			}
		},
	},
	{
		name:  "score-gap-fallback",
		match: func(c *context) bool { return true },
		apply: scoreGapFallback,
	},
}

func snipeHole(c *context) int {
	for _, car := range c.race.LongShots {
		if car != c.top.CarNumber {
			return car
		}
	}
	return 0
}

// linePartner finds the strongest other member of the top car's line,
// comparing base ratings, and the absolute base gap to them.
func linePartner(scored *scoring.Result, race *models.Race, topCar int) (int, float64) {
	ln := race.LineOf(topCar)
	if ln.Length() < 2 {
		return 0, 0
	}

	base := make(map[int]float64, len(scored.Riders))
	var topBase float64
	for _, r := range scored.Riders {
		base[r.CarNumber] = r.EffectiveBase()
		if r.CarNumber == topCar {
			topBase = r.EffectiveBase()
		}
	}

	partner, best := 0, -1.0
	for _, car := range ln.Members {
		if car == topCar {
			continue
		}
		if b, ok := base[car]; ok && b > best {
			partner, best = car, b
		}
	}
	if partner == 0 {
		return 0, 0
	}
	return partner, math.Abs(topBase - best)
}

func lineTrustMode(c *context) lineMode {
	lines := c.race.Lines()
	elite := c.race.Tier == models.TierElite

	if elite && len(lines) >= c.cfg.BreakLineCount {
		return modeBreak
	}
	if c.partner == 0 {
		return modeNone
	}
	if elite && c.gap > c.cfg.BreakGap {
		return modeBreak
	}

	longest := 0
	for _, ln := range lines {
		if ln.Length() > longest {
			longest = ln.Length()
		}
	}
	fixShape := (c.race.Tier == models.TierRookie && longest >= c.cfg.FixLongestLine) ||
		(c.race.Tier == models.TierFirst && len(lines) == 2 && c.race.IsShortStraight(c.cfg.ShortStraight))
	if fixShape && c.gap <= c.cfg.FixGap {
		return modeFix
	}

	leadGap := c.cfg.LeadGapOther
	if elite {
		leadGap = c.cfg.LeadGapElite
	}
	if c.gap <= leadGap {
		return modeLead
	}
	return modeNone
}

// reversePair reports whether a FIX pairing is close enough to finish
// either way round. Long tracks widen the window: positional advantage
// matters less there.
func reversePair(c *context) bool {
	if c.gap < c.cfg.ReverseGap {
		return true
	}
	if !c.race.IsShortStraight(c.cfg.ShortStraight) && c.gap < c.cfg.ReverseGapLongTrack {
		return true
	}
	return false
}

// strictFlag narrows a FIX/LEAD verdict to the high-confidence band using
// tier-specific track and gap conditions.
func strictFlag(c *context) bool {
	lines := len(c.race.Lines())
	switch c.race.Tier {
	case models.TierElite:
		return lines == c.cfg.StrictEliteLines &&
			c.race.TrackLength > 0 && float64(c.race.TrackLength) <= c.cfg.StrictEliteTrackLen &&
			c.gap <= c.cfg.StrictEliteGap
	case models.TierFirst:
		return lines == c.cfg.StrictFirstLines &&
			c.race.StraightLength >= c.cfg.StrictFirstStraight &&
			c.gap <= c.cfg.StrictFirstGap
	case models.TierRookie:
		return c.gap <= c.cfg.StrictRookieGap
	}
	return false
}

// scoreGapFallback classifies by score spread. Shares are percentages of
// the race score total when scores are raw ability ratings; gap tests
// always use raw score differences.
func scoreGapFallback(c *context) Verdict {
	riders := c.scored.Riders
	s1, s2, s3 := riders[0].Score, riders[1].Score, riders[2].Score

	share1, share2 := s1, s2
	if s1 > c.cfg.NormalizeAbove {
		var total float64
		for _, r := range riders {
			total += r.Score
		}
		if total > 0 {
			share1 = s1 / total * 100
			share2 = s2 / total * 100
		}
	}

	switch {
	case share1 < c.cfg.SkipShare:
		return Verdict{
			Archetype:  models.ArchetypeSkip,
			Confidence: models.ConfidenceNone,
			Reason:     fmt.Sprintf("no rider holds enough of the race, top share %.1f", share1),
		}
	case s1-s2 >= c.cfg.TeppanGap && share1 >= c.cfg.TeppanShare:
		return Verdict{
			Archetype:  models.ArchetypeTeppan,
			Confidence: models.ConfidenceHigh,
			Reason:     fmt.Sprintf("car %d clear of the field by %.1f", riders[0].CarNumber, s1-s2),
		}
	case share1 >= c.cfg.TwoStrongTop && share2 >= c.cfg.TwoStrongSecond:
		return Verdict{
			Archetype:  models.ArchetypeTwoStrong,
			Confidence: models.ConfidenceMedium,
			Reason:     fmt.Sprintf("cars %d and %d ahead of the rest", riders[0].CarNumber, riders[1].CarNumber),
		}
	case s1-s3 < c.cfg.ChaosGap:
		return Verdict{
			Archetype:  models.ArchetypeChaos,
			Confidence: models.ConfidenceLow,
			Reason:     fmt.Sprintf("top three within %.1f points", s1-s3),
		}
	default:
		return Verdict{
			Archetype:  models.ArchetypeStandard,
			Confidence: models.ConfidenceMedium,
			Reason:     "ordinary spread, standard formation",
		}
	}
}
