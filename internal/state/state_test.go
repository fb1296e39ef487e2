package state

import (
	"context"
	"fmt"
	"go-pairs/internal/scoring"
	"math/rand"
	"testing"
)

func newDealtState(t *testing.T, size int) *State {
	t.Helper()
	s := NewState(scoring.LoadLeaderboard(scoring.NewMemoryStorage(), nil), GameOptions{})
	if err := s.FSM.Event(context.Background(), "deal", "Ana", size); err != nil {
		t.Fatalf("deal failed: %v", err)
	}
	return s
}

// pairIDs returns the ids of the two cards carrying the named symbol.
func pairIDs(t *testing.T, s *State, name string) (int, int) {
	t.Helper()
	var ids []int
	for _, c := range s.Board {
		if c.Symbol.Name == name {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) < 2 {
		t.Fatalf("symbol %s not on board", name)
	}
	return ids[0], ids[1]
}

func click(s *State, id int) {
	s.FSM.Event(context.Background(), "click", id)
}

func TestState_DealPairs(t *testing.T) {
	for _, size := range []int{2, 4, 8, 16} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			s := NewState(nil, GameOptions{})
			board := s.Deal(size)

			if len(board) != size {
				t.Fatalf("Expected %d cards, got %d", size, len(board))
			}

			counts := map[string]int{}
			ids := map[int]bool{}
			for _, c := range board {
				counts[c.Symbol.Name]++
				ids[c.ID] = true
				if c.Flipped || c.Matched {
					t.Errorf("Card %d should start face down", c.ID)
				}
			}
			if len(counts) != size/2 {
				t.Errorf("Expected %d distinct symbols, got %d", size/2, len(counts))
			}
			for name, n := range counts {
				if n != 2 {
					t.Errorf("Symbol %s appears %d times", name, n)
				}
			}
			if len(ids) != size {
				t.Errorf("Card ids are not unique: %v", ids)
			}
		})
	}
}

func TestState_DealCyclesSymbols(t *testing.T) {
	symbols := []Symbol{{Name: "a", Glyph: "A"}, {Name: "b", Glyph: "B"}}
	s := NewState(nil, GameOptions{Symbols: symbols})

	board := s.Deal(10) // 5 pairs from 2 symbols
	if len(board) != 10 {
		t.Fatalf("Expected 10 cards, got %d", len(board))
	}
	counts := map[string]int{}
	for _, c := range board {
		counts[c.Symbol.Name]++
	}
	if counts["a"]+counts["b"] != 10 || counts["a"]%2 != 0 || counts["b"]%2 != 0 {
		t.Errorf("Expected both symbols to fill 10 cards in pairs, got %v", counts)
	}
}

func TestState_DealDegenerateSizes(t *testing.T) {
	s := NewState(nil, GameOptions{})

	tests := []struct {
		size   int
		expect int
	}{
		{0, 0},
		{-4, 0},
		{1, 0},
		{7, 6},
	}
	for _, tt := range tests {
		if got := len(s.Deal(tt.size)); got != tt.expect {
			t.Errorf("Deal(%d) gave %d cards, expected %d", tt.size, got, tt.expect)
		}
	}
}

func TestState_ShuffleIsPermutation(t *testing.T) {
	orders := map[string]bool{}
	for seed := int64(0); seed < 50; seed++ {
		s := NewState(nil, GameOptions{Rand: rand.New(rand.NewSource(seed))})
		board := s.Deal(16)

		seen := make([]bool, len(board))
		for _, c := range board {
			if c.ID < 0 || c.ID >= len(board) || seen[c.ID] {
				t.Fatalf("seed %d: board is not a permutation of ids: %+v", seed, board)
			}
			seen[c.ID] = true
		}

		key := ""
		for _, c := range board {
			key += fmt.Sprintf("%d,", c.ID)
		}
		orders[key] = true
	}

	// 50 draws over 16! orders; near-total collision means the shuffle is broken.
	if len(orders) < 45 {
		t.Errorf("Expected varied orders, got %d distinct out of 50", len(orders))
	}
}

func TestState_FirstPositionIsUniform(t *testing.T) {
	// Each of 4 cards should land first roughly a quarter of the time.
	const runs = 4000
	s := NewState(nil, GameOptions{
		Symbols: []Symbol{{Name: "a"}, {Name: "b"}},
		Rand:    rand.New(rand.NewSource(7)),
	})
	first := map[int]int{}
	for i := 0; i < runs; i++ {
		first[s.Deal(4)[0].ID]++
	}
	for id := 0; id < 4; id++ {
		if first[id] < runs/4-200 || first[id] > runs/4+200 {
			t.Errorf("Card %d was first %d times out of %d", id, first[id], runs)
		}
	}
}

func TestState_DealResetsRound(t *testing.T) {
	s := newDealtState(t, 4)

	if s.FSM.Current() != Playing {
		t.Fatalf("Expected %s, got %s", Playing, s.FSM.Current())
	}
	if s.Player != "Ana" || s.BoardSize != 4 {
		t.Errorf("Unexpected round config: %q %d", s.Player, s.BoardSize)
	}
	if len(s.Pending) != 0 || s.Moves != 0 || s.MatchedPairs != 0 || s.InputLocked || s.Won {
		t.Errorf("Round state not reset: %+v", s)
	}
	if s.RoundID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("Round id should be minted on deal")
	}
}

func TestState_ClickFlipsAndQueues(t *testing.T) {
	s := newDealtState(t, 4)
	a1, _ := pairIDs(t, s, s.Board[0].Symbol.Name)

	click(s, a1)
	if !s.CardByID(a1).Flipped {
		t.Error("Clicked card should be flipped")
	}
	if len(s.Pending) != 1 || s.Pending[0] != a1 {
		t.Errorf("Expected pending [%d], got %v", a1, s.Pending)
	}
	if s.Moves != 0 {
		t.Errorf("A single reveal is not a move, got %d", s.Moves)
	}

	// Clicking the same card again is ignored.
	click(s, a1)
	if len(s.Pending) != 1 {
		t.Errorf("Re-clicking a flipped card should be ignored, got %v", s.Pending)
	}

	// Unknown ids are ignored.
	click(s, 99)
	click(s, -1)
	if len(s.Pending) != 1 || s.FSM.Current() != Playing {
		t.Errorf("Unknown ids should be ignored, got %v in %s", s.Pending, s.FSM.Current())
	}
}

func TestState_MatchResolvesImmediately(t *testing.T) {
	s := newDealtState(t, 4)
	a1, a2 := pairIDs(t, s, s.Board[0].Symbol.Name)

	click(s, a1)
	click(s, a2)

	if !s.CardByID(a1).Matched || !s.CardByID(a2).Matched {
		t.Error("Both cards should be matched")
	}
	if s.MatchedPairs != 1 || s.Moves != 1 {
		t.Errorf("Expected 1 pair in 1 move, got %d in %d", s.MatchedPairs, s.Moves)
	}
	if len(s.Pending) != 0 || s.InputLocked {
		t.Errorf("Match should clear pending and unlock, got %v locked=%v", s.Pending, s.InputLocked)
	}
	if s.Ticket != nil {
		t.Error("A match should not schedule a flip-back")
	}
	if s.Won {
		t.Error("Should not win with a pair left")
	}

	// Clicking a matched card changes nothing.
	click(s, a1)
	if len(s.Pending) != 0 || s.Moves != 1 {
		t.Errorf("Clicking a matched card should be ignored, got %v moves=%d", s.Pending, s.Moves)
	}
}

func TestState_MismatchLocksUntilFlipBack(t *testing.T) {
	s := newDealtState(t, 4)
	a1, _ := pairIDs(t, s, s.Board[0].Symbol.Name)
	var b1, b2 int
	for _, c := range s.Board {
		if c.Symbol.Name != s.CardByID(a1).Symbol.Name {
			b1, b2 = pairIDs(t, s, c.Symbol.Name)
			break
		}
	}

	click(s, a1)
	click(s, b1)

	if s.FSM.Current() != Locked || !s.InputLocked {
		t.Fatalf("Expected locked state, got %s locked=%v", s.FSM.Current(), s.InputLocked)
	}
	if s.Moves != 1 {
		t.Errorf("Expected 1 move, got %d", s.Moves)
	}
	if s.Ticket == nil {
		t.Fatal("Mismatch should issue a flip-back ticket")
	}
	if !s.CardByID(a1).Flipped || !s.CardByID(b1).Flipped {
		t.Error("Mismatched cards stay visible until the flip-back")
	}

	// Clicks during the lock are dropped.
	click(s, b2)
	if s.CardByID(b2).Flipped || len(s.Pending) != 2 {
		t.Errorf("Click during lock should be dropped, pending=%v", s.Pending)
	}

	ticket := *s.Ticket
	if err := s.FSM.Event(context.Background(), "flipBack", ticket); err != nil {
		t.Fatalf("flipBack failed: %v", err)
	}
	if s.CardByID(a1).Flipped || s.CardByID(b1).Flipped {
		t.Error("Mismatched cards should be face down after flip-back")
	}
	if len(s.Pending) != 0 || s.InputLocked || s.Ticket != nil {
		t.Errorf("Flip-back should clear pending, unlock and drop the ticket: %v %v %v", s.Pending, s.InputLocked, s.Ticket)
	}
	if s.Moves != 1 {
		t.Errorf("Flip-back is not a move, got %d", s.Moves)
	}

	// The same ticket cannot fire twice.
	if err := s.FSM.Event(context.Background(), "flipBack", ticket); err == nil {
		t.Error("Second flip-back should fail")
	}
}

func TestState_StaleTicketIsRejected(t *testing.T) {
	s := newDealtState(t, 4)
	var other int
	for _, c := range s.Board[1:] {
		if c.Symbol.Name != s.Board[0].Symbol.Name {
			other = c.ID
			break
		}
	}
	click(s, s.Board[0].ID)
	click(s, other)
	stale := *s.Ticket

	// Re-deal while the flip-back is pending.
	if err := s.FSM.Event(context.Background(), "deal"); err != nil {
		t.Fatalf("re-deal failed: %v", err)
	}
	if s.Ticket != nil {
		t.Fatal("Re-deal should drop the pending ticket")
	}

	// Produce a fresh mismatch in the new round.
	for _, c := range s.Board[1:] {
		if c.Symbol.Name != s.Board[0].Symbol.Name {
			other = c.ID
			break
		}
	}
	click(s, s.Board[0].ID)
	click(s, other)

	if s.ValidTicket(stale) {
		t.Fatal("Ticket from a previous round must not be valid")
	}
	s.FSM.Event(context.Background(), "flipBack", stale)
	if !s.InputLocked || len(s.Pending) != 2 || !s.CardByID(other).Flipped {
		t.Error("Stale ticket mutated the new round")
	}
}

func TestState_WinRecordsOnce(t *testing.T) {
	store := scoring.NewMemoryStorage()
	s := NewState(scoring.LoadLeaderboard(store, nil), GameOptions{})
	s.FSM.Event(context.Background(), "deal", "Ana", 4)

	names := []string{}
	seen := map[string]bool{}
	for _, c := range s.Board {
		if !seen[c.Symbol.Name] {
			seen[c.Symbol.Name] = true
			names = append(names, c.Symbol.Name)
		}
	}

	a1, a2 := pairIDs(t, s, names[0])
	click(s, a1)
	click(s, a2)
	if s.Won || s.MatchedPairs != 1 || s.Moves != 1 {
		t.Fatalf("After first pair: won=%v pairs=%d moves=%d", s.Won, s.MatchedPairs, s.Moves)
	}

	b1, b2 := pairIDs(t, s, names[1])
	click(s, b1)
	click(s, b2)
	if !s.Won || s.MatchedPairs != 2 || s.Moves != 2 {
		t.Fatalf("After second pair: won=%v pairs=%d moves=%d", s.Won, s.MatchedPairs, s.Moves)
	}
	if s.FSM.Current() != Won {
		t.Errorf("Expected %s, got %s", Won, s.FSM.Current())
	}

	// A repeated record call for the same win is a no-op.
	s.RecordScore()
	entries, _ := store.LoadAll()
	if len(entries) != 1 || entries[0].Name != "Ana" || entries[0].Moves != 2 {
		t.Errorf("Expected exactly one recorded score, got %+v", entries)
	}

	// Clicks after the win are rejected.
	if err := s.FSM.Event(context.Background(), "click", a1); err == nil {
		t.Error("Click should be invalid once won")
	}
}

func TestState_ZeroPairBoardNeverWins(t *testing.T) {
	s := newDealtState(t, 0)
	if s.CheckWin() || s.Won {
		t.Error("An empty board must not be a win")
	}
	click(s, 0)
	if s.Won || s.FSM.Current() != Playing {
		t.Errorf("Empty board should stay playing, got %s", s.FSM.Current())
	}
}

func TestState_ResetClearsRound(t *testing.T) {
	s := newDealtState(t, 4)
	click(s, s.Board[0].ID)

	if err := s.FSM.Event(context.Background(), "reset"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if s.FSM.Current() != Idle {
		t.Errorf("Expected %s, got %s", Idle, s.FSM.Current())
	}
	if s.Board != nil || s.Pending != nil || s.Ticket != nil || s.Moves != 0 {
		t.Errorf("Round state should be cleared: %+v", s)
	}

	// Clicks in idle are invalid events.
	if err := s.FSM.Event(context.Background(), "click", 0); err == nil {
		t.Error("Click should be invalid while idle")
	}
}
