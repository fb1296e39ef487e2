package game

import (
	"errors"
	"fmt"
	"go-pairs/internal/scoring"
	"go-pairs/internal/state"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxBoardSize is the largest board a session will deal.
const MaxBoardSize = 36

var (
	ErrEmptyName        = errors.New("player name is required")
	ErrInvalidBoardSize = errors.New("board size must be an even number between 2 and 36")
)

// Session sits in front of the engine: it validates the round configuration
// and keeps per-session totals across rounds.
type Session struct {
	Game        *Game
	Leaderboard *scoring.Leaderboard

	Player    string
	BoardSize int

	// Aggregate State
	RoundsPlayed int
	RoundsWon    int
	BestMoves    int // 0 until a round is won

	countedRound uuid.UUID
	logger       *zap.Logger
}

func NewSession(leaderboard *scoring.Leaderboard, opts state.GameOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		Game:        NewGame(leaderboard, opts),
		Leaderboard: leaderboard,
		logger:      logger,
	}
}

// ValidateConfig checks the player name and board size before a round starts.
func ValidateConfig(name string, boardSize int) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if boardSize < 2 || boardSize%2 != 0 || boardSize > MaxBoardSize {
		return fmt.Errorf("%w: got %d", ErrInvalidBoardSize, boardSize)
	}
	return nil
}

// Start validates the configuration and deals a round. On error nothing
// about the session or the engine changes.
func (s *Session) Start(name string, boardSize int) error {
	if err := ValidateConfig(name, boardSize); err != nil {
		s.logger.Debug("rejected round configuration", zap.Error(err))
		return err
	}

	s.Player = strings.TrimSpace(name)
	s.BoardSize = boardSize
	s.Game.Start(s.Player, s.BoardSize)
	s.RoundsPlayed++
	return nil
}

// Restart deals a fresh round with the current configuration.
func (s *Session) Restart() {
	if s.Game.IsIdle() {
		return
	}
	s.Game.Restart()
	s.RoundsPlayed++
}

// Reset returns the engine to idle so a new name or board size can be chosen.
func (s *Session) Reset() {
	s.Game.Reset()
}

// Update syncs session totals from the current round. It is safe to call
// after every event; a win is counted once.
func (s *Session) Update() {
	st := s.Game.State
	if !st.Won || st.RoundID == s.countedRound {
		return
	}
	s.countedRound = st.RoundID
	s.RoundsWon++
	if s.BestMoves == 0 || st.Moves < s.BestMoves {
		s.BestMoves = st.Moves
	}
}

// RecordErr is the persistence error of the current round's score, if any.
func (s *Session) RecordErr() error {
	return s.Game.State.RecordErr
}
