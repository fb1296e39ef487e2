package state

import (
	"context"
	"go-pairs/internal/scoring"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// DefaultFlipBackDelay is how long a mismatched pair stays revealed.
const DefaultFlipBackDelay = time.Second

// FSM states.
const (
	Idle         = "idle"
	Dealing      = "dealing"
	Playing      = "playing"
	CheckingCard = "checkingCard"
	Revealing    = "revealing"
	Resolving    = "resolving"
	Matching     = "matching"
	Locked       = "locked"
	Won          = "won"
)

type GameOptions struct {
	FlipBackDelay time.Duration // 0 uses DefaultFlipBackDelay
	Symbols       []Symbol      // empty uses DefaultSymbols
	Rand          *rand.Rand    // nil uses the global source
	Logger        *zap.Logger
}

// Symbol is a card face. Two symbols are equal when their names are equal.
type Symbol struct {
	Name  string
	Glyph string
}

// Card is one position on the board.
type Card struct {
	ID      int
	Symbol  Symbol
	Flipped bool
	Matched bool
}

// Ticket identifies a scheduled flip-back of a mismatched pair. It is only
// honoured while it is still the pending ticket of the round that issued it.
type Ticket struct {
	Round uuid.UUID
	Seq   int
}

type State struct {
	Player       string
	BoardSize    int
	Board        []Card
	Pending      []int // ids of revealed, unresolved cards; at most 2
	MatchedPairs int
	Moves        int
	InputLocked  bool // True while a pair is being resolved
	Won          bool
	Recorded     bool // Set once the round's score has been handed to the leaderboard
	RecordErr    error
	RoundID      uuid.UUID
	Ticket       *Ticket // pending flip-back, nil when none is scheduled
	Scores       *scoring.Leaderboard
	FSM          *fsm.FSM
	Options      GameOptions

	ticketSeq int
	logger    *zap.Logger
}

func NewState(scores *scoring.Leaderboard, opts GameOptions) *State {
	if opts.FlipBackDelay <= 0 {
		opts.FlipBackDelay = DefaultFlipBackDelay
	}
	if len(opts.Symbols) == 0 {
		opts.Symbols = DefaultSymbols()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &State{
		Scores:  scores,
		Options: opts,
		logger:  logger,
	}

	s.FSM = fsm.NewFSM(
		Idle,
		getStateTransitions(),
		getStateCallbacks(s),
	)

	return s
}

func getStateTransitions() []fsm.EventDesc {
	return fsm.Events{
		// Round lifecycle
		{Name: "deal", Src: []string{Idle, Playing, Locked, Won}, Dst: Dealing},
		{Name: "dealt", Src: []string{Dealing}, Dst: Playing},
		{Name: "reset", Src: []string{Dealing, Playing, Locked, Won}, Dst: Idle},

		// Card selection
		{Name: "click", Src: []string{Playing}, Dst: CheckingCard},
		{Name: "ignore", Src: []string{CheckingCard}, Dst: Playing},
		{Name: "reveal", Src: []string{CheckingCard}, Dst: Revealing},
		{Name: "await", Src: []string{Revealing}, Dst: Playing},

		// Resolution
		{Name: "resolve", Src: []string{Revealing}, Dst: Resolving},
		{Name: "match", Src: []string{Resolving}, Dst: Matching},
		{Name: "mismatch", Src: []string{Resolving}, Dst: Locked},
		{Name: "proceed", Src: []string{Matching}, Dst: Playing},
		{Name: "win", Src: []string{Matching}, Dst: Won},
		{Name: "flipBack", Src: []string{Locked}, Dst: Playing},
	}
}

func getStateCallbacks(s *State) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_dealing": func(ctx context.Context, e *fsm.Event) {
			player, size := s.Player, s.BoardSize
			if len(e.Args) > 1 {
				player, _ = e.Args[0].(string)
				size, _ = e.Args[1].(int)
			}
			s.newRound(player, size)
			s.logger.Info("round started",
				zap.String("round", s.RoundID.String()),
				zap.String("player", s.Player),
				zap.Int("cards", len(s.Board)),
			)
			e.FSM.Event(ctx, "dealt")
		},
		"enter_checkingCard": func(ctx context.Context, e *fsm.Event) {
			id := -1
			if len(e.Args) > 0 {
				if v, ok := e.Args[0].(int); ok {
					id = v
				}
			}

			// Locked, unknown, face-up and matched cards are dropped silently,
			// as is any click while a pair is already waiting.
			if !s.CanFlip(id) {
				e.FSM.Event(ctx, "ignore")
				return
			}
			e.FSM.Event(ctx, "reveal", id)
		},
		"enter_revealing": func(ctx context.Context, e *fsm.Event) {
			id := e.Args[0].(int)
			s.CardByID(id).Flipped = true
			s.Pending = append(s.Pending, id)

			if len(s.Pending) == 2 {
				e.FSM.Event(ctx, "resolve")
				return
			}
			e.FSM.Event(ctx, "await")
		},
		"enter_resolving": func(ctx context.Context, e *fsm.Event) {
			s.InputLocked = true
			s.Moves++

			first, second := s.PendingCards()
			if first.Symbol.Name == second.Symbol.Name {
				e.FSM.Event(ctx, "match")
				return
			}
			e.FSM.Event(ctx, "mismatch")
		},
		"enter_matching": func(ctx context.Context, e *fsm.Event) {
			first, second := s.PendingCards()
			first.Matched, second.Matched = true, true
			first.Flipped, second.Flipped = true, true
			s.MatchedPairs++
			s.Pending = s.Pending[:0]
			s.InputLocked = false

			s.logger.Debug("pair matched",
				zap.String("symbol", first.Symbol.Name),
				zap.Int("pairs", s.MatchedPairs),
				zap.Int("moves", s.Moves),
			)

			if s.CheckWin() {
				e.FSM.Event(ctx, "win")
				return
			}
			e.FSM.Event(ctx, "proceed")
		},
		"enter_locked": func(ctx context.Context, e *fsm.Event) {
			s.ticketSeq++
			s.Ticket = &Ticket{Round: s.RoundID, Seq: s.ticketSeq}
			s.logger.Debug("pair mismatched",
				zap.Ints("cards", s.Pending),
				zap.Int("moves", s.Moves),
			)
		},
		"before_flipBack": func(ctx context.Context, e *fsm.Event) {
			var t Ticket
			if len(e.Args) > 0 {
				t, _ = e.Args[0].(Ticket)
			}
			// A ticket from a reset or replaced round must not touch this board.
			if !s.ValidTicket(t) {
				e.Cancel()
			}
		},
		"after_flipBack": func(ctx context.Context, e *fsm.Event) {
			for _, id := range s.Pending {
				if c := s.CardByID(id); c != nil {
					c.Flipped = false
				}
			}
			s.Pending = s.Pending[:0]
			s.Ticket = nil
			s.InputLocked = false
		},
		"enter_won": func(ctx context.Context, e *fsm.Event) {
			s.Won = true
			s.logger.Info("round won",
				zap.String("round", s.RoundID.String()),
				zap.String("player", s.Player),
				zap.Int("moves", s.Moves),
			)
			s.RecordScore()
		},
		"enter_idle": func(ctx context.Context, e *fsm.Event) {
			s.logger.Debug("round reset", zap.String("round", s.RoundID.String()))
			s.clearRound()
		},
	}
}
