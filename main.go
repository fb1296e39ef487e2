package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go-pairs/internal/config"
	"go-pairs/internal/game"
	"go-pairs/internal/logging"
	"go-pairs/internal/scoring"
	"go-pairs/internal/state"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red for errors
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green for matches and wins
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Color for the status line
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Width(4).
			Align(lipgloss.Center).
			MarginRight(1)
	cursorBorder  = lipgloss.Color("12")
	flippedBorder = lipgloss.Color("11")
	matchedBorder = lipgloss.Color("10")
)

// Rendered card footprint, used to map mouse clicks to cards.
const (
	cardCellWidth  = 7
	cardCellHeight = 3
)

type screen int

const (
	setupScreen screen = iota
	boardScreen
)

type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Flip    key.Binding
	Start   key.Binding
	Restart key.Binding
	Menu    key.Binding
	Quit    key.Binding
}

var Keys = KeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Flip:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "flip")),
	Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
	Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
	Menu:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

type LocalState struct {
	Session   *game.Session
	Keys      KeyMap
	NameInput textinput.Model
	BoardSize int
	Cursor    int
	Screen    screen
	Err       error
}

// flipBackMsg fires when a mismatched pair's delay has elapsed.
type flipBackMsg struct {
	Ticket state.Ticket
}

func flipBackCmd(t state.Ticket, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return flipBackMsg{Ticket: t}
	})
}

func initialModel(cfg config.Config, logger *zap.Logger) (*LocalState, error) {
	opts := state.GameOptions{
		FlipBackDelay: cfg.FlipBackDelay,
		Logger:        logger,
	}
	if len(cfg.SymbolPaths) > 0 {
		symbols, err := game.LoadSymbols(cfg.SymbolPaths)
		if err != nil {
			return nil, err
		}
		opts.Symbols = symbols
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	sess := game.NewSession(scoring.LoadLeaderboard(storage, logger), opts)

	ti := textinput.New()
	ti.Placeholder = "your name"
	ti.CharLimit = 24
	ti.Prompt = "Name: "
	ti.SetValue(cfg.Player)
	ti.Focus()

	s := &LocalState{
		Session:   sess,
		Keys:      Keys,
		NameInput: ti,
		BoardSize: cfg.BoardSize,
	}

	// A name on the command line skips the setup screen.
	if cfg.Player != "" {
		if err := sess.Start(cfg.Player, cfg.BoardSize); err != nil {
			s.Err = err
		} else {
			s.Screen = boardScreen
		}
	}

	return s, nil
}

// openStorage creates the concrete storage implementation.
func openStorage(cfg config.Config) (scoring.ScoreStorage, error) {
	if cfg.NoSave {
		return scoring.NewMemoryStorage(), nil
	}
	if err := cfg.ValidateBackend(); err != nil {
		return nil, err
	}
	if cfg.Backend == config.BackendGData {
		gs, err := scoring.NewGDataStorage("go-pairs")
		if err != nil {
			return nil, fmt.Errorf("failed to create score storage: %w", err)
		}
		return gs, nil
	}
	if cfg.ScoresPath != "" {
		return scoring.NewJSONFileStorageAt(cfg.ScoresPath), nil
	}
	fs, err := scoring.NewJSONFileStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to create score storage: %w", err)
	}
	return fs, nil
}

func (s *LocalState) Init() tea.Cmd {
	if s.Screen == setupScreen {
		return textinput.Blink
	}
	return nil
}

func (s *LocalState) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case flipBackMsg:
		// Stale tickets from a reset or restarted round are no-ops.
		s.Session.Game.HandleFlipBack(msg.Ticket)
		return s, nil
	case tea.MouseMsg:
		if s.Screen == boardScreen && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if idx, ok := s.cardAt(msg.X, msg.Y); ok {
				s.Cursor = idx
				return s, s.flip()
			}
		}
		return s, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return s, tea.Quit
		}
		if s.Screen == setupScreen {
			return s.updateSetup(msg)
		}
		return s.updateBoard(msg)
	}

	return s, nil
}

func (s *LocalState) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, s.Keys.Start):
		if err := s.Session.Start(s.NameInput.Value(), s.BoardSize); err != nil {
			s.Err = err
			return s, nil
		}
		s.Err = nil
		s.Cursor = 0
		s.Screen = boardScreen
		s.NameInput.Blur()
		return s, nil
	case msg.Type == tea.KeyUp:
		if s.BoardSize < game.MaxBoardSize {
			s.BoardSize += 2
		}
		return s, nil
	case msg.Type == tea.KeyDown:
		if s.BoardSize > 2 {
			s.BoardSize -= 2
		}
		return s, nil
	case msg.Type == tea.KeyEsc:
		return s, tea.Quit
	}

	var cmd tea.Cmd
	s.NameInput, cmd = s.NameInput.Update(msg)
	return s, cmd
}

func (s *LocalState) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cards := len(s.Session.Game.State.Board)
	cols := columnsFor(cards)

	switch {
	case key.Matches(msg, s.Keys.Quit):
		return s, tea.Quit
	case key.Matches(msg, s.Keys.Menu):
		s.Session.Reset()
		s.Screen = setupScreen
		s.NameInput.Focus()
		return s, textinput.Blink
	case key.Matches(msg, s.Keys.Restart):
		s.Session.Restart()
		s.Cursor = 0
		return s, nil
	case key.Matches(msg, s.Keys.Flip):
		return s, s.flip()
	case key.Matches(msg, s.Keys.Left):
		if s.Cursor > 0 {
			s.Cursor--
		}
	case key.Matches(msg, s.Keys.Right):
		if s.Cursor < cards-1 {
			s.Cursor++
		}
	case key.Matches(msg, s.Keys.Up):
		if s.Cursor-cols >= 0 {
			s.Cursor -= cols
		}
	case key.Matches(msg, s.Keys.Down):
		if s.Cursor+cols < cards {
			s.Cursor += cols
		}
	}
	return s, nil
}

// flip clicks the card under the cursor.
func (s *LocalState) flip() tea.Cmd {
	g := s.Session.Game
	if s.Cursor < 0 || s.Cursor >= len(g.State.Board) {
		return nil
	}
	ticket, scheduled := g.HandleClick(g.State.Board[s.Cursor].ID)
	s.Session.Update()
	if scheduled {
		return flipBackCmd(ticket, g.FlipBackDelay())
	}
	return nil
}

// cardAt maps screen coordinates to a board index.
func (s *LocalState) cardAt(x, y int) (int, bool) {
	cards := len(s.Session.Game.State.Board)
	cols := columnsFor(cards)
	top := lipgloss.Height(s.header()) + 1
	if cols == 0 || x < 0 || y < top {
		return 0, false
	}
	col := x / cardCellWidth
	row := (y - top) / cardCellHeight
	if col >= cols {
		return 0, false
	}
	idx := row*cols + col
	if idx >= cards {
		return 0, false
	}
	return idx, true
}

func columnsFor(cards int) int {
	switch {
	case cards <= 4:
		return cards
	case cards <= 16:
		return 4
	default:
		return 6
	}
}

func (s *LocalState) header() string {
	title := boldStyle.Render("┃ GO-PAIRS ┃") + subtleStyle.Render("  find every pair")
	return title
}

func (s *LocalState) RenderBoard() string {
	g := s.Session.Game
	views := g.Views()
	cols := columnsFor(len(views))
	if cols == 0 {
		return ""
	}

	var rows []string
	for start := 0; start < len(views); start += cols {
		end := start + cols
		if end > len(views) {
			end = len(views)
		}
		var row []string
		for i := start; i < end; i++ {
			row = append(row, s.renderCard(views[i], i == s.Cursor && !g.IsWon()))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (s *LocalState) renderCard(v game.CardView, selected bool) string {
	style := cardStyle
	face := "░░"

	switch {
	case v.Matched:
		style = style.BorderForeground(matchedBorder).Faint(true)
		face = v.Glyph
	case v.Flipped:
		style = style.BorderForeground(flippedBorder)
		face = v.Glyph
	}
	if selected {
		style = style.BorderForeground(cursorBorder).Bold(true)
	}
	return style.Render(face)
}

func (s *LocalState) View() string {
	if s.Screen == setupScreen {
		return s.viewSetup()
	}

	g := s.Session.Game
	st := g.State

	display := s.header() + "\n\n" + s.RenderBoard()

	// Status Line
	statusLine := "PLAYER: " + st.Player + " | " +
		"MOVES: " + fmt.Sprint(st.Moves) + " | " +
		"PAIRS: " + fmt.Sprintf("%d/%d", st.MatchedPairs, st.TotalPairs())
	if best := s.Session.Leaderboard.Best(); best != nil {
		statusLine += fmt.Sprintf(" | BEST: %d (%s)", best.Moves, best.Name)
	}
	if s.Session.RoundsPlayed > 1 {
		statusLine += fmt.Sprintf(" | ROUND %d", s.Session.RoundsPlayed)
	}
	display += "\n" + scoreStyle.Render(statusLine)

	if g.IsWon() {
		display += "\n\n" + greenStyle.Render(fmt.Sprintf("Congratulations, %s! All %d pairs in %d moves.", st.Player, st.TotalPairs(), st.Moves))
		if err := s.Session.RecordErr(); err != nil {
			display += "\n" + redStyle.Render("Could not save your score: "+err.Error())
		}
		display += "\n" + s.viewLeaderboard(st.Player, st.Moves)
		display += "\n" + subtleStyle.Render("r: play again • esc: menu • q: quit")
		return display + "\n"
	}

	display += "\n" + subtleStyle.Render("arrows/hjkl: move • space: flip • r: restart • esc: menu • q: quit")
	return display + "\n"
}

func (s *LocalState) viewSetup() string {
	var b strings.Builder
	b.WriteString(s.header() + "\n\n")
	b.WriteString(s.NameInput.View() + "\n")
	b.WriteString(fmt.Sprintf("Board: %s cards (%d pairs)  %s\n",
		boldStyle.Render(strconv.Itoa(s.BoardSize)), s.BoardSize/2, subtleStyle.Render("↑/↓ to change")))

	if s.Err != nil {
		msg := s.Err.Error()
		switch {
		case errors.Is(s.Err, game.ErrEmptyName):
			msg = "Please enter your name to start."
		case errors.Is(s.Err, game.ErrInvalidBoardSize):
			msg = fmt.Sprintf("Please pick an even board size between 2 and %d.", game.MaxBoardSize)
		}
		b.WriteString("\n" + redStyle.Render(msg) + "\n")
	}

	if entries := s.Session.Leaderboard.Entries(); len(entries) > 0 {
		b.WriteString("\n" + s.viewLeaderboard("", 0))
	}
	b.WriteString("\n" + subtleStyle.Render("enter: start • esc: quit") + "\n")
	return b.String()
}

func (s *LocalState) viewLeaderboard(player string, moves int) string {
	entries := s.Session.Leaderboard.Top(scoring.MaxEntries)
	if len(entries) == 0 {
		return ""
	}
	rank := s.Session.Leaderboard.RankOf(scoring.RankingEntry{Name: player, Moves: moves})

	display := boldStyle.Render("Best scores:")
	for i, entry := range entries {
		line := fmt.Sprintf("\n  %d. %-24s %3d moves", i+1, entry.Name, entry.Moves)
		if i+1 == rank {
			line = greenStyle.Render(line)
		}
		display += line
	}
	return display + "\n"
}

type strictIntFlag int

func (i *strictIntFlag) String() string {
	return fmt.Sprint(int(*i))
}

func (i *strictIntFlag) Set(s string) error {
	if s == "true" {
		return fmt.Errorf("value required (format: -flag=value)")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = strictIntFlag(v)
	return nil
}

func (i *strictIntFlag) IsBoolFlag() bool { return true }

type delayFlag time.Duration

func (d *delayFlag) String() string {
	return time.Duration(*d).String()
}

func (d *delayFlag) Set(s string) error {
	v, err := config.ParseDelay(s)
	if err != nil {
		return err
	}
	*d = delayFlag(v)
	return nil
}

func main() {
	// Environment (and ./.env) supply the defaults, flags override them.
	cfg, err := config.FromEnv(".env")
	if err != nil {
		fmt.Printf("Error reading configuration: %v\n", err)
		os.Exit(1)
	}

	size := strictIntFlag(cfg.BoardSize)
	delay := delayFlag(cfg.FlipBackDelay)
	var symbols string

	flag.StringVar(&cfg.Player, "name", cfg.Player, "Player name (skips the setup screen)")
	flag.StringVar(&cfg.Player, "n", cfg.Player, "Player name (shorthand)")

	flag.Var(&size, "size", "Number of cards on the board (even, 2-36)")
	flag.Var(&size, "s", "Number of cards on the board (shorthand)")

	flag.Var(&delay, "delay", "How long a mismatched pair stays visible (e.g. 1s or 800)")
	flag.Var(&delay, "d", "How long a mismatched pair stays visible (shorthand)")

	flag.StringVar(&symbols, "symbols", strings.Join(cfg.SymbolPaths, string(os.PathListSeparator)), "Symbol set files or directories")
	flag.StringVar(&cfg.Backend, "backend", cfg.Backend, "Score storage backend: file or gdata")
	flag.StringVar(&cfg.ScoresPath, "scores", cfg.ScoresPath, "Path of the rankings file")
	flag.BoolVar(&cfg.NoSave, "no-save", cfg.NoSave, "Keep rankings in memory only")
	flag.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Write debug logs to this file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "   -n, --name=NAME      Player name (skips the setup screen)\n")
		fmt.Fprintf(os.Stderr, "   -s, --size=N         Number of cards on the board (even, 2-36, default 16)\n")
		fmt.Fprintf(os.Stderr, "   -d, --delay=D        Mismatch delay (e.g. 1s, 800ms or 800)\n")
		fmt.Fprintf(os.Stderr, "       --symbols=PATHS  Symbol set files or directories\n")
		fmt.Fprintf(os.Stderr, "       --backend=NAME   Score storage: file (default) or gdata\n")
		fmt.Fprintf(os.Stderr, "       --scores=PATH    Path of the rankings file\n")
		fmt.Fprintf(os.Stderr, "       --no-save        Keep rankings in memory only\n")
		fmt.Fprintf(os.Stderr, "       --log=PATH       Write debug logs to this file\n")
		fmt.Fprintf(os.Stderr, "   -h, --help           Show this help message\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment: %s, %s, %s, %s, %s, %s, %s, %s, %s\n",
			config.EnvName, config.EnvSize, config.EnvDelay, config.EnvSymbols, config.EnvBackend,
			config.EnvScores, config.EnvNoSave, config.EnvLog, config.EnvLogLevel)
	}

	flag.Parse()

	cfg.BoardSize = int(size)
	cfg.FlipBackDelay = time.Duration(delay)
	cfg.SymbolPaths = config.SplitPaths(symbols)
	cfg.Player = strings.TrimSpace(cfg.Player)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Create the initial model
	model, err := initialModel(cfg, logger)
	if err != nil {
		fmt.Printf("Error initializing model: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error starting the program: %v\n", err)
		os.Exit(1)
	}

	// Final output
	if st := model.Session.Game.State; st.Won {
		fmt.Println(greenStyle.Render(fmt.Sprintf("%s matched %d pairs in %d moves.", st.Player, st.TotalPairs(), st.Moves)))
	}
}
