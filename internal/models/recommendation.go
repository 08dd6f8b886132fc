package models

import (
	"time"

	"github.com/google/uuid"
)

// Archetype classifies a race into one of the fixed betting patterns.
// Exactly one archetype is produced per analyzed race.
type Archetype string

const (
	ArchetypeSnipe            Archetype = "SNIPE"
	ArchetypeStarChaseJump    Archetype = "STAR_CHASE_JUMP"
	ArchetypeStarEscapeShort  Archetype = "STAR_ESCAPE_SHORT"
	ArchetypeStarBacklineShort Archetype = "STAR_BACKLINE_SHORT"
	ArchetypeSujiFix          Archetype = "SUJI_FIX"
	ArchetypeSujiLead         Archetype = "SUJI_LEAD"
	ArchetypeLineBreaker      Archetype = "LINE_BREAKER"
	ArchetypeTeppan           Archetype = "TEPPAN"
	ArchetypeTwoStrong        Archetype = "TWO_STRONG"
	ArchetypeChaos            Archetype = "CHAOS"
	ArchetypeStandard         Archetype = "STANDARD"
	ArchetypeSkip             Archetype = "SKIP"
	ArchetypeInsufficientData Archetype = "INSUFFICIENT_DATA"

	// ArchetypeSpecialBonus marks the bonus stream; it is produced
	// alongside, not instead of, a main-stream archetype.
	ArchetypeSpecialBonus Archetype = "SPECIAL_BONUS"
)

// Confidence represents the confidence tier attached to a recommendation
type Confidence string

const (
	ConfidenceSS     Confidence = "SS"
	ConfidenceS      Confidence = "S"
	ConfidenceA      Confidence = "A"
	ConfidenceMax    Confidence = "max"
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// StrategyKind distinguishes recommendation streams sharing a race.
// The main stream is anchored on the final-score leader; the bonus
// stream on the rider the rules lifted furthest above their rating.
const (
	StrategyKindMain  = "main"
	StrategyKindBonus = "bonus"
)

// StrategyRecommendation is the product of one race analysis: a single
// archetype, its reasoning, and the structured wager tickets to place.
type StrategyRecommendation struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	Place        string            `db:"place" json:"place" validate:"required"`
	Date         string            `db:"date" json:"date" validate:"required"`
	RaceNumber   int               `db:"race_number" json:"race_number" validate:"required"`
	StrategyKind string            `db:"strategy_kind" json:"strategy_kind"`
	Archetype    Archetype         `db:"archetype" json:"archetype" validate:"required"`
	Confidence   Confidence        `db:"confidence" json:"confidence"`
	Reason       string            `db:"reason" json:"reason"`
	StrictPick   bool              `db:"strict_pick" json:"strict_pick"` // high-confidence sub-flag
	Tickets      []WagerTicket     `json:"tickets"`
	UnitCounts   map[BetKind]int   `json:"unit_counts,omitempty"` // display only
	TopCar       int               `db:"top_car" json:"top_car"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
}

// RaceKey returns the canonical race identifier for this recommendation
func (r *StrategyRecommendation) RaceKey() string {
	return RaceKey(r.Place, r.Date, r.RaceNumber)
}

// DedupKey identifies the settlement deduplication group: only the most
// recent recommendation per group is settled.
func (r *StrategyRecommendation) DedupKey() string {
	return r.RaceKey() + "_" + r.StrategyKind
}

// StoredRecommendation is the persisted shape of a recommendation. Tickets
// are stored in textual notation so historical rows remain settleable even
// as the structured type evolves.
type StoredRecommendation struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Place        string    `db:"place" json:"place"`
	Date         string    `db:"date" json:"date"`
	RaceNumber   int       `db:"race_number" json:"race_number"`
	StrategyKind string    `db:"strategy_kind" json:"strategy_kind"`
	Archetype    Archetype `db:"archetype" json:"archetype"`
	Confidence   Confidence `db:"confidence" json:"confidence"`
	Reason       string    `db:"reason" json:"reason"`
	Tickets      []string  `db:"tickets" json:"tickets"`
	TopCar       int       `db:"top_car" json:"top_car"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RaceKey returns the canonical race identifier for the stored row
func (r *StoredRecommendation) RaceKey() string {
	return RaceKey(r.Place, r.Date, r.RaceNumber)
}

// DedupKey mirrors StrategyRecommendation.DedupKey for stored rows
func (r *StoredRecommendation) DedupKey() string {
	return r.RaceKey() + "_" + r.StrategyKind
}
