package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/keirin-edge/internal/models"
)

// UnitStake is the currency staked per distinct combination
var UnitStake = decimal.NewFromInt(100)

// SettleTicket parses one notation string and prices it against the race
// outcome. A malformed string yields a settlement carrying the parse
// error instead of financials; it never fails the caller.
func SettleTicket(notation string, outcome *models.RaceOutcome) models.TicketSettlement {
	ts := models.TicketSettlement{Notation: notation}

	ticket, err := Parse(notation)
	if err != nil {
		ts.Error = err.Error()
		return ts
	}
	ts.Kind = ticket.Kind

	combos := ticket.Expand()
	ts.Combinations = len(combos)
	ts.Stake = UnitStake.Mul(decimal.NewFromInt(int64(len(combos))))
	ts.Return = priceTicket(ticket.Kind, combos, outcome)
	ts.Hit = ts.Return.IsPositive()
	return ts
}

// priceTicket credits each winning payout category at most once per
// ticket. Payout values are total currency for a winning 100-unit stake.
func priceTicket(kind models.BetKind, combos [][]int, outcome *models.RaceOutcome) decimal.Decimal {
	if !outcome.IsComplete() {
		return decimal.Zero
	}
	finish := outcome.FinishOrder
	pay := outcome.Payouts

	switch kind {
	case models.BetKindExacta:
		for _, c := range combos {
			if c[0] == finish[0] && c[1] == finish[1] {
				return pay.Exacta
			}
		}
	case models.BetKindQuinella:
		want := sortedPair(finish[0], finish[1])
		for _, c := range combos {
			if [2]int{c[0], c[1]} == want {
				return pay.Quinella
			}
		}
	case models.BetKindTrifecta:
		if len(finish) < 3 {
			return decimal.Zero
		}
		for _, c := range combos {
			if c[0] == finish[0] && c[1] == finish[1] && c[2] == finish[2] {
				return pay.Trifecta
			}
		}
	case models.BetKindBox:
		if len(finish) < 3 {
			return decimal.Zero
		}
		want := sortedPair(finish[0], finish[1])
		third := finish[2]
		for _, c := range combos {
			set := [3]int{c[0], c[1], c[2]}
			if set == sortedTriple(want[0], want[1], third) {
				return pay.Trio
			}
		}
	case models.BetKindWide:
		return priceWide(combos, outcome)
	}
	return decimal.Zero
}

// priceWide credits every distinct winning pair the ticket holds. The
// three pairs drawn from the top 3 carry Wide1..Wide3 in ascending
// sorted-pair order, and a single ticket can accumulate all three.
func priceWide(combos [][]int, outcome *models.RaceOutcome) decimal.Decimal {
	if len(outcome.FinishOrder) < 3 {
		return decimal.Zero
	}
	f := outcome.FinishOrder
	pairs := [3][2]int{
		sortedPair(f[0], f[1]),
		sortedPair(f[0], f[2]),
		sortedPair(f[1], f[2]),
	}
	// ascending sorted-pair order decides which official payout is whose
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if pairs[j][0] < pairs[i][0] ||
				(pairs[j][0] == pairs[i][0] && pairs[j][1] < pairs[i][1]) {
				pairs[i], pairs[j] = pairs[j], pairs[i]
			}
		}
	}
	payouts := [3]decimal.Decimal{outcome.Payouts.Wide1, outcome.Payouts.Wide2, outcome.Payouts.Wide3}

	total := decimal.Zero
	credited := [3]bool{}
	for _, c := range combos {
		pair := sortedPair(c[0], c[1])
		for i, want := range pairs {
			if pair == want && !credited[i] {
				credited[i] = true
				total = total.Add(payouts[i])
			}
		}
	}
	return total
}

// SettleRace prices every ticket of a stored recommendation against the
// race outcome. The call is idempotent: identical inputs produce an
// identical record apart from ID and timestamp.
func SettleRace(stored *models.StoredRecommendation, outcome *models.RaceOutcome, now time.Time) models.SettlementRecord {
	rec := models.SettlementRecord{
		ID:               uuid.New(),
		RecommendationID: stored.ID,
		Place:            stored.Place,
		Date:             stored.Date,
		RaceNumber:       stored.RaceNumber,
		StrategyKind:     stored.StrategyKind,
		Archetype:        stored.Archetype,
		Investment:       decimal.Zero,
		Return:           decimal.Zero,
		SettledAt:        now,
	}

	if !outcome.IsComplete() {
		rec.Status = models.SettlementPending
		return rec
	}
	if len(outcome.FinishOrder) >= 3 {
		rec.ResultTop3 = outcome.FinishOrder[:3]
	} else {
		rec.ResultTop3 = outcome.FinishOrder
	}

	rec.Status = models.SettlementSettled
	var hits []string
	for _, notation := range stored.Tickets {
		ts := SettleTicket(notation, outcome)
		rec.Tickets = append(rec.Tickets, ts)
		if ts.Error != "" {
			rec.Status = models.SettlementError
			continue
		}
		rec.Investment = rec.Investment.Add(ts.Stake)
		rec.Return = rec.Return.Add(ts.Return)
		if ts.Hit {
			hits = append(hits, fmt.Sprintf("%s pays %s", ts.Notation, ts.Return))
		}
	}
	rec.Hit = rec.Return.IsPositive()
	rec.HitDetail = strings.Join(hits, "; ")
	if rec.Status == models.SettlementError {
		rec.HitDetail = strings.TrimSpace("malformed ticket in record " + rec.HitDetail)
	}
	return rec
}

func sortedPair(a, b int) [2]int {
	if a > b {
		return [2]int{b, a}
	}
	return [2]int{a, b}
}

func sortedTriple(a, b, c int) [3]int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return [3]int{a, b, c}
}
