package models

// BetKind represents the wager type of a ticket
type BetKind string

const (
	BetKindExacta   BetKind = "exacta"   // exact 1st and 2nd, ordered
	BetKindTrifecta BetKind = "trifecta" // exact 1st, 2nd and 3rd, ordered
	BetKindQuinella BetKind = "quinella" // unordered top-2 pair
	BetKindWide     BetKind = "wide"     // any pair within the top 3
	BetKindBox      BetKind = "box"      // unordered top-3 set
)

// IsOrdered reports whether combinations of this kind are order-sensitive
func (k BetKind) IsOrdered() bool {
	return k == BetKindExacta || k == BetKindTrifecta
}

// GroupCount returns how many position groups the kind carries
func (k BetKind) GroupCount() int {
	switch k {
	case BetKindTrifecta:
		return 3
	case BetKindBox:
		return 1
	default:
		return 2
	}
}

// WagerTicket is a structured wager: a bet kind plus ordered car-number
// groups, one group per finishing position (a single group for box bets).
// Fold marks both-direction coverage: the groups are interchangeable and
// the ticket expands to every ordering of each distinct pair.
type WagerTicket struct {
	Kind   BetKind `json:"kind"`
	Groups [][]int `json:"groups"`
	Fold   bool    `json:"fold,omitempty"`
}

// NewExacta builds a directional exacta ticket
func NewExacta(first, second []int) WagerTicket {
	return WagerTicket{Kind: BetKindExacta, Groups: [][]int{first, second}}
}

// NewFoldExacta builds an exacta covering both orderings of the groups
func NewFoldExacta(a, b []int) WagerTicket {
	return WagerTicket{Kind: BetKindExacta, Groups: [][]int{a, b}, Fold: true}
}

// NewTrifecta builds a directional trifecta formation ticket
func NewTrifecta(first, second, third []int) WagerTicket {
	return WagerTicket{Kind: BetKindTrifecta, Groups: [][]int{first, second, third}}
}

// NewFoldTrifecta builds a trifecta with interchangeable first two groups
func NewFoldTrifecta(axis, third []int) WagerTicket {
	return WagerTicket{Kind: BetKindTrifecta, Groups: [][]int{axis, axis, third}, Fold: true}
}

// NewBox builds an unordered top-3 box over the given cars
func NewBox(cars []int) WagerTicket {
	return WagerTicket{Kind: BetKindBox, Groups: [][]int{cars}}
}

// NewWide builds a wide-quinella ticket between an axis and a flow group
func NewWide(axis, flow []int) WagerTicket {
	return WagerTicket{Kind: BetKindWide, Groups: [][]int{axis, flow}}
}

// Expand enumerates the distinct concrete combinations the ticket covers.
// Combinations reusing a car number across positions are excluded; for
// unordered kinds each combination is canonicalized as a sorted set. Fold
// tickets additionally cover the reversed ordering of every pair.
func (t WagerTicket) Expand() [][]int {
	switch t.Kind {
	case BetKindBox:
		return t.expandBox()
	case BetKindQuinella, BetKindWide:
		if len(t.Groups) == 1 {
			return t.expandGroupPairs(t.Groups[0])
		}
		return t.expandPairs(false)
	case BetKindExacta:
		if t.Fold {
			return t.expandFoldExacta()
		}
		return t.expandPairs(true)
	case BetKindTrifecta:
		return t.expandTrifecta()
	}
	return nil
}

// CombinationCount returns the distinct combination count, which drives
// the 100-unit stake per combination.
func (t WagerTicket) CombinationCount() int {
	return len(t.Expand())
}

func (t WagerTicket) expandBox() [][]int {
	if len(t.Groups) != 1 {
		return nil
	}
	cars := dedupCars(t.Groups[0])
	var out [][]int
	for i := 0; i < len(cars); i++ {
		for j := i + 1; j < len(cars); j++ {
			for k := j + 1; k < len(cars); k++ {
				out = append(out, sortedTriple(cars[i], cars[j], cars[k]))
			}
		}
	}
	return out
}

func (t WagerTicket) expandPairs(ordered bool) [][]int {
	if len(t.Groups) < 2 {
		return nil
	}
	seen := map[[2]int]bool{}
	var out [][]int
	for _, a := range t.Groups[0] {
		for _, b := range t.Groups[1] {
			if a == b {
				continue
			}
			key := [2]int{a, b}
			if !ordered && b < a {
				key = [2]int{b, a}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, []int{key[0], key[1]})
		}
	}
	return out
}

// expandFoldExacta covers every unordered pair drawn from the union of
// the two groups, in both directions.
func (t WagerTicket) expandFoldExacta() [][]int {
	if len(t.Groups) < 2 {
		return nil
	}
	union := dedupCars(append(append([]int{}, t.Groups[0]...), t.Groups[1]...))
	var out [][]int
	for i := 0; i < len(union); i++ {
		for j := i + 1; j < len(union); j++ {
			out = append(out, []int{union[i], union[j]}, []int{union[j], union[i]})
		}
	}
	return out
}

// expandGroupPairs covers every unordered pair within one group, the
// boxed form of a quinella or wide ticket.
func (t WagerTicket) expandGroupPairs(group []int) [][]int {
	cars := dedupCars(group)
	var out [][]int
	for i := 0; i < len(cars); i++ {
		for j := i + 1; j < len(cars); j++ {
			a, b := cars[i], cars[j]
			if b < a {
				a, b = b, a
			}
			out = append(out, []int{a, b})
		}
	}
	return out
}

func (t WagerTicket) expandTrifecta() [][]int {
	if len(t.Groups) < 3 {
		return nil
	}
	seen := map[[3]int]bool{}
	var out [][]int
	for _, a := range t.Groups[0] {
		for _, b := range t.Groups[1] {
			if b == a {
				continue
			}
			for _, c := range t.Groups[2] {
				if c == a || c == b {
					continue
				}
				if seen[[3]int{a, b, c}] {
					continue
				}
				seen[[3]int{a, b, c}] = true
				out = append(out, []int{a, b, c})
			}
		}
	}
	return out
}

// CoversExactaPair reports whether the ticket already stakes the ordered
// pair (first, second). Used to avoid double-staking base exacta coverage.
func (t WagerTicket) CoversExactaPair(first, second int) bool {
	if t.Kind != BetKindExacta {
		return false
	}
	for _, c := range t.Expand() {
		if c[0] == first && c[1] == second {
			return true
		}
	}
	return false
}

func dedupCars(cars []int) []int {
	seen := make(map[int]bool, len(cars))
	out := make([]int, 0, len(cars))
	for _, c := range cars {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func sortedTriple(a, b, c int) []int {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return []int{a, b, c}
}
