package progression

// GateKind selects which snapshot metric a gate measures.
type GateKind int

const (
	GateWAS GateKind = iota
	GateMessages
	GateObedience
)

// Gate is a minimum-threshold requirement for rank eligibility. Declaration
// order inside a rank is significant: readiness ties are broken by it.
type Gate struct {
	Kind     GateKind
	Label    string
	Required int
}

// Current extracts the gate's metric from a snapshot.
func (g Gate) Current(s Snapshot) int {
	switch g.Kind {
	case GateWAS:
		return s.WeeklyActivity
	case GateMessages:
		return s.Messages7d
	case GateObedience:
		return s.Obedience.Score
	}
	return 0
}

// Rank is one step of the fixed loyalty ladder.
type Rank struct {
	Index  int
	Name   string
	MinLCE int64
	Gates  []Gate
}

func gates(was, messages, obedience int) []Gate {
	return []Gate{
		{Kind: GateWAS, Label: "weekly activity", Required: was},
		{Kind: GateMessages, Label: "messages (7d)", Required: messages},
		{Kind: GateObedience, Label: "obedience", Required: obedience},
	}
}

// Ladder is the fixed ordered rank ladder. Thresholds and gates are
// monotonically non-decreasing; rank 0 is ungated.
var Ladder = []Rank{
	{Index: 0, Name: "Newcomer", MinLCE: 0},
	{Index: 1, Name: "Initiate", MinLCE: 500, Gates: gates(50, 20, 30)},
	{Index: 2, Name: "Novice", MinLCE: 2_000, Gates: gates(120, 50, 40)},
	{Index: 3, Name: "Attendant", MinLCE: 5_000, Gates: gates(250, 100, 50)},
	{Index: 4, Name: "Devoted", MinLCE: 12_000, Gates: gates(400, 175, 60)},
	{Index: 5, Name: "Keeper", MinLCE: 25_000, Gates: gates(600, 250, 68)},
	{Index: 6, Name: "Steward", MinLCE: 50_000, Gates: gates(850, 350, 75)},
	{Index: 7, Name: "Confidant", MinLCE: 100_000, Gates: gates(1_100, 450, 82)},
	{Index: 8, Name: "Favored", MinLCE: 200_000, Gates: gates(1_400, 550, 90)},
	{Index: 9, Name: "Master", MinLCE: 400_000, Gates: gates(1_750, 700, 95)},
}

// TopRank is the highest rank index on the ladder.
var TopRank = len(Ladder) - 1

// RankByName returns the rank with the given name, or false when no rank
// matches.
func RankByName(name string) (Rank, bool) {
	for _, r := range Ladder {
		if r.Name == name {
			return r, true
		}
	}
	return Rank{}, false
}

// GatesPass reports whether every gate of rank r is satisfied by s.
func GatesPass(r Rank, s Snapshot) bool {
	for _, g := range r.Gates {
		if g.Current(s) < g.Required {
			return false
		}
	}
	return true
}
