package state

import (
	"math/rand"

	"github.com/google/uuid"
)

// DefaultSymbols returns the built-in icon set.
func DefaultSymbols() []Symbol {
	return []Symbol{
		{Name: "coffee", Glyph: "☕"},
		{Name: "bell", Glyph: "🔔"},
		{Name: "crown", Glyph: "👑"},
		{Name: "heart", Glyph: "💖"},
		{Name: "star", Glyph: "⭐"},
		{Name: "zap", Glyph: "⚡"},
		{Name: "gift", Glyph: "🎁"},
		{Name: "key", Glyph: "🔑"},
	}
}

// Deal builds a shuffled board of boardSize/2 pairs. Symbols are drawn from
// the configured set without repetition until the set runs out, after which
// it is cycled to fill the requested pair count.
func (s *State) Deal(boardSize int) []Card {
	pairs := boardSize / 2
	if pairs < 0 {
		pairs = 0
	}

	symbols := make([]Symbol, len(s.Options.Symbols))
	copy(symbols, s.Options.Symbols)
	s.shuffle(len(symbols), func(i, j int) {
		symbols[i], symbols[j] = symbols[j], symbols[i]
	})

	board := make([]Card, 0, pairs*2)
	for i := 0; i < pairs && len(symbols) > 0; i++ {
		sym := symbols[i%len(symbols)]
		board = append(board, Card{ID: 2 * i, Symbol: sym}, Card{ID: 2*i + 1, Symbol: sym})
	}

	s.shuffle(len(board), func(i, j int) {
		board[i], board[j] = board[j], board[i]
	})
	return board
}

// shuffle is a Fisher-Yates permutation from the configured source.
func (s *State) shuffle(n int, swap func(i, j int)) {
	if s.Options.Rand != nil {
		s.Options.Rand.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

func (s *State) newRound(player string, boardSize int) {
	s.Player = player
	s.BoardSize = boardSize
	s.Board = s.Deal(boardSize)
	s.Pending = make([]int, 0, 2)
	s.MatchedPairs = 0
	s.Moves = 0
	s.InputLocked = false
	s.Won = false
	s.Recorded = false
	s.RecordErr = nil
	s.Ticket = nil
	s.RoundID = uuid.New()
}

func (s *State) clearRound() {
	s.Board = nil
	s.Pending = nil
	s.MatchedPairs = 0
	s.Moves = 0
	s.InputLocked = false
	s.Won = false
	s.Recorded = false
	s.RecordErr = nil
	s.Ticket = nil
	s.RoundID = uuid.Nil
}

// CardByID returns the card with the given id, or nil.
func (s *State) CardByID(id int) *Card {
	for i := range s.Board {
		if s.Board[i].ID == id {
			return &s.Board[i]
		}
	}
	return nil
}

// CanFlip reports whether a click on id would reveal it.
func (s *State) CanFlip(id int) bool {
	if s.InputLocked || s.Won || len(s.Pending) >= 2 {
		return false
	}
	c := s.CardByID(id)
	return c != nil && !c.Flipped && !c.Matched
}

// PendingCards returns the two cards awaiting resolution.
func (s *State) PendingCards() (*Card, *Card) {
	return s.CardByID(s.Pending[0]), s.CardByID(s.Pending[1])
}

func (s State) TotalPairs() int {
	return len(s.Board) / 2
}

// CheckWin reports whether every pair is matched after at least one move.
func (s State) CheckWin() bool {
	return s.Moves > 0 && s.MatchedPairs == s.TotalPairs()
}

// ValidTicket reports whether t is the flip-back currently owed by this round.
func (s State) ValidTicket(t Ticket) bool {
	return s.Ticket != nil && *s.Ticket == t
}

// RecordScore hands the finished round to the leaderboard. It runs at most
// once per round.
func (s *State) RecordScore() {
	if s.Recorded || s.Scores == nil {
		return
	}
	s.Recorded = true
	s.RecordErr = s.Scores.Record(s.Player, s.Moves)
}
