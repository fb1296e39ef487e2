package game

import (
	"context"
	"go-pairs/internal/scoring"
	"go-pairs/internal/state"
	"time"
)

// Game encapsulates the core game logic, independent of the UI.
type Game struct {
	State *state.State
}

// CardView is the renderer-facing representation of a card.
// Glyph is only included while the card is face up.
type CardView struct {
	ID      int    `json:"id"`
	Glyph   string `json:"glyph,omitempty"`
	Flipped bool   `json:"flipped"`
	Matched bool   `json:"matched"`
}

// NewGame initializes a new game instance in the idle state.
func NewGame(scores *scoring.Leaderboard, opts state.GameOptions) *Game {
	return &Game{
		State: state.NewState(scores, opts),
	}
}

// Start deals a new round for player, abandoning any round in progress.
func (g *Game) Start(player string, boardSize int) {
	_ = g.State.FSM.Event(context.Background(), "deal", player, boardSize)
}

// Restart deals a new round with the current player and board size.
func (g *Game) Restart() {
	if g.IsIdle() {
		return
	}
	_ = g.State.FSM.Event(context.Background(), "deal")
}

// Reset abandons the round and returns to idle. A pending flip-back is
// invalidated.
func (g *Game) Reset() {
	_ = g.State.FSM.Event(context.Background(), "reset")
}

// HandleClick processes a click on the card with the given id. When the click
// completes a mismatched pair it returns the ticket the caller must pass to
// HandleFlipBack after FlipBackDelay.
func (g *Game) HandleClick(id int) (state.Ticket, bool) {
	// Locked or finished rounds drop clicks without an event.
	if g.State.InputLocked || g.State.Won || g.IsIdle() {
		return state.Ticket{}, false
	}

	_ = g.State.FSM.Event(context.Background(), "click", id)

	if g.State.FSM.Current() == state.Locked && g.State.Ticket != nil {
		return *g.State.Ticket, true
	}
	return state.Ticket{}, false
}

// HandleFlipBack turns a mismatched pair face down again. It reports false,
// and changes nothing, when the ticket no longer belongs to the current round.
func (g *Game) HandleFlipBack(t state.Ticket) bool {
	if !g.State.ValidTicket(t) {
		return false
	}
	return g.State.FSM.Event(context.Background(), "flipBack", t) == nil
}

// FlipBackDelay is how long a mismatched pair stays face up.
func (g *Game) FlipBackDelay() time.Duration {
	return g.State.Options.FlipBackDelay
}

func (g *Game) IsIdle() bool {
	return g.State.FSM.Current() == state.Idle
}

func (g *Game) IsWon() bool {
	return g.State.Won
}

// Phase is the current engine state name.
func (g *Game) Phase() string {
	return g.State.FSM.Current()
}

// Views builds the renderer-facing card list in board order.
func (g *Game) Views() []CardView {
	views := make([]CardView, len(g.State.Board))
	for i, card := range g.State.Board {
		cv := CardView{
			ID:      card.ID,
			Flipped: card.Flipped,
			Matched: card.Matched,
		}
		if card.Flipped || card.Matched {
			cv.Glyph = card.Symbol.Glyph
		}
		views[i] = cv
	}
	return views
}
