package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus represents the lifecycle of a settlement row
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "PENDING"
	SettlementSettled SettlementStatus = "SETTLED"
	SettlementError   SettlementStatus = "ERROR"
)

// PayoutTable carries official payouts for one race. Each value is the
// total currency returned for a winning 100-unit stake, not a multiplier.
// The three wide payouts belong to the three winning pairs of the top 3
// in ascending sorted-pair order.
type PayoutTable struct {
	Exacta   decimal.Decimal `db:"exacta" json:"exacta"`
	Trifecta decimal.Decimal `db:"trifecta" json:"trifecta"`
	Quinella decimal.Decimal `db:"quinella" json:"quinella"`
	Trio     decimal.Decimal `db:"trio" json:"trio"`
	Wide1    decimal.Decimal `db:"wide1" json:"wide1"`
	Wide2    decimal.Decimal `db:"wide2" json:"wide2"`
	Wide3    decimal.Decimal `db:"wide3" json:"wide3"`
}

// IsEmpty reports whether no payout category carries a value
func (p PayoutTable) IsEmpty() bool {
	zero := decimal.Zero
	return p.Exacta.Equal(zero) && p.Trifecta.Equal(zero) && p.Quinella.Equal(zero) &&
		p.Trio.Equal(zero) && p.Wide1.Equal(zero) && p.Wide2.Equal(zero) && p.Wide3.Equal(zero)
}

// RaceOutcome is the authoritative result of one race
type RaceOutcome struct {
	Place       string      `db:"place" json:"place"`
	Date        string      `db:"date" json:"date"`
	RaceNumber  int         `db:"race_number" json:"race_number"`
	FinishOrder []int       `db:"finish_order" json:"finish_order"` // car numbers, 1st..3rd
	Payouts     PayoutTable `json:"payouts"`
	RecordedAt  time.Time   `db:"recorded_at" json:"recorded_at"`
}

// RaceKey returns the canonical race identifier for the outcome
func (o *RaceOutcome) RaceKey() string {
	return RaceKey(o.Place, o.Date, o.RaceNumber)
}

// IsComplete reports whether at least 1st and 2nd place are known.
// Incomplete outcomes leave recommendations PENDING.
func (o *RaceOutcome) IsComplete() bool {
	return o != nil && len(o.FinishOrder) >= 2
}

// TicketSettlement is the per-ticket result within a settled race
type TicketSettlement struct {
	Notation     string          `db:"notation" json:"notation"`
	Kind         BetKind         `db:"kind" json:"kind"`
	Combinations int             `db:"combinations" json:"combinations"`
	Stake        decimal.Decimal `db:"stake" json:"stake"`
	Return       decimal.Decimal `db:"return" json:"return"`
	Hit          bool            `db:"hit" json:"hit"`
	Error        string          `db:"error" json:"error,omitempty"`
}

// SettlementRecord joins a stored recommendation with its race outcome
// and the computed financials. Settlement is idempotent per
// (place, date, race-number, strategy-kind).
type SettlementRecord struct {
	ID               uuid.UUID          `db:"id" json:"id"`
	RecommendationID uuid.UUID          `db:"recommendation_id" json:"recommendation_id"`
	Place            string             `db:"place" json:"place"`
	Date             string             `db:"date" json:"date"`
	RaceNumber       int                `db:"race_number" json:"race_number"`
	StrategyKind     string             `db:"strategy_kind" json:"strategy_kind"`
	Archetype        Archetype          `db:"archetype" json:"archetype"`
	Status           SettlementStatus   `db:"status" json:"status"`
	Investment       decimal.Decimal    `db:"investment" json:"investment"`
	Return           decimal.Decimal    `db:"return" json:"return"`
	Hit              bool               `db:"hit" json:"hit"`
	HitDetail        string             `db:"hit_detail" json:"hit_detail"`
	ResultTop3       []int              `db:"result_top3" json:"result_top3"`
	Tickets          []TicketSettlement `json:"tickets"`
	SettledAt        time.Time          `db:"settled_at" json:"settled_at"`
}

// Balance returns return minus investment
func (s *SettlementRecord) Balance() decimal.Decimal {
	return s.Return.Sub(s.Investment)
}

// DedupKey mirrors the recommendation idempotency key
func (s *SettlementRecord) DedupKey() string {
	return RaceKey(s.Place, s.Date, s.RaceNumber) + "_" + s.StrategyKind
}
