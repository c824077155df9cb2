package mahjong

import (
	"testing"
)

func hand(t *testing.T, s string) []Tile {
	t.Helper()
	tiles, err := ParseTiles(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tiles
}

func TestShanten_RegressionCase(t *testing.T) {
	e := NewEvaluator()
	tiles := hand(t, "40m12356p4699s222z")
	if len(tiles) != 14 {
		t.Fatalf("expected 14 tiles, got %d", len(tiles))
	}
	if got := e.Normal(tiles); got != 1 {
		t.Fatalf("normal shanten expected 1, got %d", got)
	}
	if got := e.Evaluate(tiles); got != 1 {
		t.Fatalf("shanten expected 1, got %d", got)
	}
}

func TestShanten_CompleteHands(t *testing.T) {
	e := NewEvaluator()
	for _, s := range []string{
		"123m456p789s123s55z",
		"111222333m456p77z",
		"340m456p789s111z22z",
	} {
		if got := e.Normal(hand(t, s)); got != -1 {
			t.Errorf("%s: normal shanten expected -1, got %d", s, got)
		}
	}
}

func TestShanten_Tenpai(t *testing.T) {
	e := NewEvaluator()
	cases := []struct {
		name  string
		tiles string
	}{
		{"shanpon", "123m456p789s11z22z"},
		{"ryanmen", "123m456p789s23s55z"},
		{"tanki", "123m456p789s111z5z"},
		{"one call", "123m456p78s55z"},
	}
	for _, c := range cases {
		if got := e.Normal(hand(t, c.tiles)); got != 0 {
			t.Errorf("%s (%s): normal shanten expected 0, got %d", c.name, c.tiles, got)
		}
	}
}

func TestShanten_Kokushi(t *testing.T) {
	e := NewEvaluator()
	cases := []struct {
		tiles string
		want  int
	}{
		{"19m19p19s1234567z", 0},
		{"19m19p19s1234567z1z", -1},
		{"159m19p19s1234677z", 0},
		{"159m19p19s1236677z", 1},
		// any call leaves fewer than 13 concealed tiles
		{"19m19p19s1234z", 8},
	}
	for _, c := range cases {
		if got := e.Kokushi(hand(t, c.tiles)); got != c.want {
			t.Errorf("%s: kokushi expected %d, got %d", c.tiles, c.want, got)
		}
	}
}

func TestShanten_Chiitoi(t *testing.T) {
	e := NewEvaluator()
	cases := []struct {
		tiles string
		want  int
	}{
		{"1155m2288p3399s11z", -1},
		{"1122m3344p5566s7z", 0},
		{"458m666p116688s55z", 1},
		{"4444m6666p1111s55z", 5},
		{"1122m3344p55s", 6},
	}
	for _, c := range cases {
		if got := e.Chiitoi(hand(t, c.tiles)); got != c.want {
			t.Errorf("%s: chiitoi expected %d, got %d", c.tiles, c.want, got)
		}
	}
}

func TestShanten_Breakdown(t *testing.T) {
	e := NewEvaluator()
	b := e.Breakdown(hand(t, "11m47m258p369s147z"))
	if b.Kokushi != 7 || b.Chiitoi != 5 || b.Normal != 3 || b.Min != 3 {
		t.Fatalf("unexpected breakdown %+v", b)
	}

	b = e.Breakdown(hand(t, "123m456p78s55z"))
	if b.Kokushi != 8 || b.Chiitoi != 6 || b.Min != 0 {
		t.Fatalf("with a call kokushi/chiitoi must be unreachable, got %+v", b)
	}
}

// The leaf penalty is not clamped at zero, so a hand with few blocks scores
// well below the conventional 8 - 2*groups - partials - eye. This pins the
// current behaviour.
func TestShanten_UnclampedPenalty(t *testing.T) {
	e := NewEvaluator()
	if got := e.Normal(hand(t, "11m47m258p369s147z")); got != 3 {
		t.Fatalf("unclamped normal shanten expected 3, got %d", got)
	}
}

// Suspected correct scoring: with the penalty clamped to max(0, blocks-5)
// the same hand scores 7, matching the conventional count.
func TestShanten_ClampedPenaltyDocumentsSuspectedFix(t *testing.T) {
	e := NewEvaluator(WithClampedPenalty())
	if got := e.Normal(hand(t, "11m47m258p369s147z")); got != 7 {
		t.Fatalf("clamped normal shanten expected 7, got %d", got)
	}
	// agreeing cases stay unchanged
	if got := e.Normal(hand(t, "40m12356p4699s222z")); got != 1 {
		t.Fatalf("clamped regression case expected 1, got %d", got)
	}
	if got := e.Normal(hand(t, "123m456p789s123s55z")); got != -1 {
		t.Fatalf("clamped complete hand expected -1, got %d", got)
	}
}

func TestShanten_CountsRestored(t *testing.T) {
	e := NewEvaluator()
	for _, s := range []string{"40m12356p4699s222z", "111222333m456p77z", "11m47m258p369s147z"} {
		e.load(hand(t, s))
		before := e.counts
		e.normal()
		if e.counts != before {
			t.Fatalf("%s: counts not restored after search", s)
		}
		if e.remaining != e.total {
			t.Fatalf("%s: remaining %d != total %d after search", s, e.remaining, e.total)
		}
	}
}

func TestShanten_InvalidTilesIgnored(t *testing.T) {
	e := NewEvaluator()
	tiles := append(hand(t, "123m456p789s123s55z"), Unknown, Tile(20))
	if got := e.Normal(tiles); got != -1 {
		t.Fatalf("invalid tiles should be treated as absent, got %d", got)
	}
}

func TestShanten_Tracer(t *testing.T) {
	var lines int
	e := NewEvaluator(WithTracer(TracerFunc(func(string, ...any) { lines++ })))
	if got := e.Normal(hand(t, "40m12356p4699s222z")); got != 1 {
		t.Fatalf("traced search expected 1, got %d", got)
	}
	if lines == 0 {
		t.Fatalf("tracer was never called")
	}
	if len(e.taken) != 0 {
		t.Fatalf("taken stack not unwound: %v", e.taken)
	}
}

func TestShanten_Range(t *testing.T) {
	e := NewEvaluator()
	for _, s := range []string{
		"40m12356p4699s222z",
		"11m47m258p369s147z",
		"1155m2288p3399s11z",
		"19m19p19s1234567z",
		"123m456p78s55z",
	} {
		b := e.Breakdown(hand(t, s))
		if b.Normal < -1 || b.Normal > 8 || b.Chiitoi < -1 || b.Chiitoi > 6 {
			t.Errorf("%s: out of range %+v", s, b)
		}
	}
}
