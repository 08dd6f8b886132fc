package settlement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/keirin-edge/internal/models"
)

// Ticket notation is the persisted, human-readable wager form, e.g.
//
//	trifecta: 2 -> 5,9 -> 5,9,4
//	exacta: 1 <-> 3
//	box: 1,2,3
//
// Separators between groups: "->" directional, "<->" fold, "=" both
// directions, "-" plain (unordered kinds). Historical rows are only ever
// read back through Parse, so the codec is deliberately conservative.

const (
	sepDirectional = "->"
	sepFold        = "<->"
	sepBoth        = "="
	sepPlain       = "-"
)

// Format renders a structured ticket in notation form
func Format(t models.WagerTicket) string {
	groups := make([]string, 0, len(t.Groups))
	for _, g := range t.Groups {
		groups = append(groups, formatGroup(g))
	}

	var body string
	switch {
	case len(groups) == 1:
		body = groups[0]
	case t.Fold && t.Kind == models.BetKindTrifecta:
		body = groups[0] + " " + sepFold + " " + groups[1] + " " + sepDirectional + " " + groups[2]
	case t.Fold:
		body = strings.Join(groups, " "+sepFold+" ")
	case t.Kind.IsOrdered():
		body = strings.Join(groups, " "+sepDirectional+" ")
	default:
		body = strings.Join(groups, " "+sepPlain+" ")
	}
	return string(t.Kind) + ": " + body
}

func formatGroup(cars []int) string {
	parts := make([]string, 0, len(cars))
	for _, c := range cars {
		parts = append(parts, strconv.Itoa(c))
	}
	return strings.Join(parts, ",")
}

// Parse decodes a notation string back into a structured ticket. All
// failures wrap models.ErrMalformedTicket.
func Parse(s string) (models.WagerTicket, error) {
	var t models.WagerTicket

	head, body, ok := strings.Cut(s, ":")
	if !ok {
		return t, fmt.Errorf("%w: missing kind in %q", models.ErrMalformedTicket, s)
	}
	kind := models.BetKind(strings.TrimSpace(head))
	switch kind {
	case models.BetKindExacta, models.BetKindTrifecta, models.BetKindQuinella,
		models.BetKindWide, models.BetKindBox:
	default:
		return t, fmt.Errorf("%w: unknown kind %q", models.ErrMalformedTicket, head)
	}

	groups, fold, err := parseBody(body)
	if err != nil {
		return t, fmt.Errorf("%w: %s in %q", models.ErrMalformedTicket, err, s)
	}
	if err := checkGroupCount(kind, len(groups)); err != nil {
		return t, fmt.Errorf("%w: %s in %q", models.ErrMalformedTicket, err, s)
	}

	t.Kind = kind
	t.Groups = groups
	t.Fold = fold && kind.IsOrdered()
	return t, nil
}

func parseBody(body string) ([][]int, bool, error) {
	tokens := strings.Fields(body)
	if len(tokens) == 0 {
		return nil, false, fmt.Errorf("empty body")
	}

	var groups [][]int
	fold := false
	wantGroup := true
	for _, tok := range tokens {
		if wantGroup {
			g, err := parseGroup(tok)
			if err != nil {
				return nil, false, err
			}
			groups = append(groups, g)
			wantGroup = false
			continue
		}
		switch tok {
		case sepFold, sepBoth:
			fold = true
		case sepDirectional, sepPlain:
		default:
			return nil, false, fmt.Errorf("unexpected separator %q", tok)
		}
		wantGroup = true
	}
	if wantGroup {
		return nil, false, fmt.Errorf("trailing separator")
	}
	return groups, fold, nil
}

func parseGroup(tok string) ([]int, error) {
	parts := strings.Split(tok, ",")
	group := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad car number %q", p)
		}
		group = append(group, n)
	}
	return group, nil
}

func checkGroupCount(kind models.BetKind, n int) error {
	switch kind {
	case models.BetKindBox:
		if n != 1 {
			return fmt.Errorf("box wants 1 group, got %d", n)
		}
	case models.BetKindTrifecta:
		if n != 3 {
			return fmt.Errorf("trifecta wants 3 groups, got %d", n)
		}
	case models.BetKindExacta:
		if n != 2 {
			return fmt.Errorf("exacta wants 2 groups, got %d", n)
		}
	case models.BetKindQuinella, models.BetKindWide:
		if n != 1 && n != 2 {
			return fmt.Errorf("%s wants 1 or 2 groups, got %d", kind, n)
		}
	}
	return nil
}
