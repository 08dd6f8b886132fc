package tickets

import (
	"fmt"

	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/scoring"
)

// bonusFlowDepth is how many score-ranked cars flow behind the bonus axis
const bonusFlowDepth = 4

// BonusPlay is the special play anchored on the rider the rules lifted
// furthest above their rating, independent of the race archetype.
type BonusPlay struct {
	Axis       int
	Bonus      float64
	Confidence models.Confidence
	Reason     string
	Tickets    []models.WagerTicket
}

// GenerateBonus builds the bonus-axis play from a scored field. The axis
// is the rider with the largest accumulated bonus and the flow follows
// final-score order. The second return is false when no rider carries a
// positive bonus or the field is too thin to flow behind the axis.
func GenerateBonus(scored *scoring.Result, cfg Config) (BonusPlay, bool) {
	axis, bonus := 0, 0.0
	for _, r := range scored.Riders {
		if b := r.Bonus(); b > bonus {
			axis, bonus = r.CarNumber, b
		}
	}
	if axis == 0 {
		return BonusPlay{}, false
	}

	// Riders are already in score order; skip the axis.
	flow := make([]int, 0, bonusFlowDepth)
	for _, r := range scored.Riders {
		if r.CarNumber == axis {
			continue
		}
		flow = append(flow, r.CarNumber)
		if len(flow) == bonusFlowDepth {
			break
		}
	}
	if len(flow) < 2 {
		return BonusPlay{}, false
	}

	second := flow[:2]
	out := []models.WagerTicket{
		models.NewTrifecta([]int{axis}, second, flow),
		models.NewExacta([]int{axis}, second),
		models.NewBox([]int{axis, flow[0], flow[1]}),
	}
	if len(flow) >= 3 {
		out = append(out, models.NewBox([]int{axis, flow[0], flow[2]}))
	}
	out = append(out, models.NewWide([]int{axis}, second))

	return BonusPlay{
		Axis:       axis,
		Bonus:      bonus,
		Confidence: bonusConfidence(bonus, cfg),
		Reason:     fmt.Sprintf("largest rule bonus: car %d (+%.1f)", axis, bonus),
		Tickets:    out,
	}, true
}

func bonusConfidence(bonus float64, cfg Config) models.Confidence {
	switch {
	case bonus >= cfg.BonusAxisHigh:
		return models.ConfidenceHigh
	case bonus >= cfg.BonusAxisMedium:
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}
