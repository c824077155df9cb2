package mahjong

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestMeld_Tiles(t *testing.T) {
	cases := []struct {
		meld Meld
		want []Tile
	}{
		{Chi{Target: 3, Pai: Man1, Consumed: Consumed2{Man2, Man3}}, []Tile{Man1, Man2, Man3}},
		{Pon{Target: 1, Pai: Man1, Consumed: Consumed2{Man1, Man1}}, []Tile{Man1, Man1, Man1}},
		{Daiminkan{Target: 2, Pai: Man1, Consumed: Consumed3{Man1, Man1, Man1}}, []Tile{Man1, Man1, Man1, Man1}},
		{Kakan{Pai: Pin5Red, PreviousPonTarget: 0, PreviousPonPai: Pin5, Consumed: Consumed2{Pin5, Pin5}}, []Tile{Pin5Red, Pin5, Pin5, Pin5}},
		{Ankan{Consumed: Consumed4{East, East, East, East}}, []Tile{East, East, East, East}},
	}
	for _, c := range cases {
		if got := c.meld.Tiles(); !slices.Equal(got, c.want) {
			t.Errorf("%s: expected %v, got %v", c.meld.Kind(), c.want, got)
		}
	}
}

// Flattening a meld and dropping the tiles that did not come from the hand
// gives back exactly the tiles removed from the hand.
func TestMeld_ConsumedRoundTrip(t *testing.T) {
	chi := Chi{Target: 3, Pai: Man1, Consumed: Consumed2{Man2, Man3}}
	if got := chi.Tiles()[1:]; !slices.Equal(got, chi.ConsumedTiles()) {
		t.Fatalf("chi: %v vs %v", got, chi.ConsumedTiles())
	}

	kan := Daiminkan{Target: 2, Pai: So7, Consumed: Consumed3{So7, So7, So7}}
	if got := kan.Tiles()[1:]; !slices.Equal(got, kan.ConsumedTiles()) {
		t.Fatalf("daiminkan: %v vs %v", got, kan.ConsumedTiles())
	}

	// kakan: previous pon tile came from the discard, the rest from the hand
	kakan := Pon{Target: 1, Pai: West, Consumed: Consumed2{West, West}}.promote(West)
	fromHand := slices.Delete(kakan.Tiles(), 1, 2)
	if !EqualAsSet(fromHand, kakan.ConsumedTiles()) || len(kakan.Tiles()) != 4 {
		t.Fatalf("kakan: %v vs %v", fromHand, kakan.ConsumedTiles())
	}

	ankan := Ankan{Consumed: Consumed4{Man9, Man9, Man9, Man9}}
	if !slices.Equal(ankan.Tiles(), ankan.ConsumedTiles()) {
		t.Fatalf("ankan: %v vs %v", ankan.Tiles(), ankan.ConsumedTiles())
	}
}

func TestMeld_MatchesKakan(t *testing.T) {
	pon := Pon{Target: 2, Pai: Pin5Red, Consumed: Consumed2{Pin5, Pin5}}
	if !pon.matchesKakan(Consumed3{Pin5, Pin5, Pin5Red}) {
		t.Fatalf("order must not matter")
	}
	if pon.matchesKakan(Consumed3{Pin5, Pin5, Pin5}) {
		t.Fatalf("red five is part of the identity")
	}
}

func TestMeld_JSON(t *testing.T) {
	data, err := json.Marshal([]Meld{
		Pon{Target: 1, Pai: East, Consumed: Consumed2{East, East}},
		Ankan{Consumed: Consumed4{Man9, Man9, Man9, Man9}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"pon"`, `"target":1`, `"pai":"E"`, `"type":"ankan"`, `"consumed":["9m","9m","9m","9m"]`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}

func TestUnmarshalMeld(t *testing.T) {
	melds := []Meld{
		Chi{Target: 3, Pai: Man1, Consumed: Consumed2{Man2, Man3}},
		Daiminkan{Target: 2, Pai: Pin5Red, Consumed: Consumed3{Pin5, Pin5, Pin5}},
		Pon{Target: 1, Pai: West, Consumed: Consumed2{West, West}}.promote(West),
		Ankan{Consumed: Consumed4{Man9, Man9, Man9, Man9}},
	}
	for _, m := range melds {
		data, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		got, err := UnmarshalMeld(data)
		if err != nil {
			t.Fatalf("%s: %v", data, err)
		}
		if got != m {
			t.Fatalf("round trip: expected %+v, got %+v", m, got)
		}
	}

	if _, err := UnmarshalMeld([]byte(`{"type":"pon","pai":"E","consumed":["E"]}`)); !errors.Is(err, ErrInvalidMeld) {
		t.Fatalf("expected ErrInvalidMeld, got %v", err)
	}
}
