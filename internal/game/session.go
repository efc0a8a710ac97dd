package game

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

var playerNameRE = regexp.MustCompile(`^[a-zA-Z0-9_ ]{2,32}$`)

// Session owns every portfolio of one game run plus the shared month-keyed
// bank market. The display name is both the session key and the RNG salt;
// there is no authentication. All methods are safe for concurrent use by the
// HTTP layer, though each portfolio only ever changes through its own
// player's calls.
type Session struct {
	rules   Rules
	streams *Streams
	market  *Market
	engine  *Engine
	log     *slog.Logger

	mu       sync.Mutex
	players  map[string]*Portfolio
	order    []string
	seenKeys map[string]bool
}

func NewSession(rules Rules, seed int64, logger *slog.Logger) (*Session, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	streams := NewStreams(seed)
	market := NewMarket(rules, streams)
	return &Session{
		rules:    rules,
		streams:  streams,
		market:   market,
		engine:   NewEngine(rules, market, streams, logger),
		log:      logger,
		players:  map[string]*Portfolio{},
		seenKeys: map[string]bool{},
	}, nil
}

func (s *Session) Rules() Rules {
	return s.rules
}

// Join registers a player and returns their portfolio. Joining twice with
// the same name returns the existing portfolio unchanged.
func (s *Session) Join(name string) (*Portfolio, error) {
	name = strings.TrimSpace(name)
	if !playerNameRE.MatchString(name) {
		return nil, ErrInvalidPlayerName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[name]; ok {
		return p.clone(), nil
	}
	p := NewPortfolio(name, s.rules, s.streams)
	s.players[name] = p
	s.order = append(s.order, name)
	s.log.Info("player joined", "player", name, "theft_months", len(p.TheftMonths))
	return p.clone(), nil
}

// Portfolio returns a snapshot of one player's state.
func (s *Session) Portfolio(name string) (*Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[name]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return p.clone(), nil
}

// History returns the player's append-only month log.
func (s *Session) History(name string) ([]LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[name]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return append([]LogRecord(nil), p.Log...), nil
}

// Offers returns the shared bank market snapshot for a month.
func (s *Session) Offers(month int) []BankOffer {
	return s.market.OffersForMonth(month)
}

// OffersForPlayer returns the offers the player currently decides against.
func (s *Session) OffersForPlayer(name string) ([]BankOffer, error) {
	s.mu.Lock()
	p, ok := s.players[name]
	if !ok {
		s.mu.Unlock()
		return nil, ErrUnknownPlayer
	}
	month := p.Month
	s.mu.Unlock()
	return s.market.OffersForMonth(month), nil
}

// ResolveTurn runs one month for a player. A non-empty idempotency key is
// remembered per player; replaying it is rejected instead of resolving the
// same month twice. Different players may reuse the same key.
func (s *Session) ResolveTurn(name string, d Decisions, idemKey string) (TurnResult, *Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[name]
	if !ok {
		return TurnResult{}, nil, ErrUnknownPlayer
	}
	if idemKey != "" {
		if s.seenKeys[name+"|"+idemKey] {
			return TurnResult{}, nil, ErrDuplicateIdempotency
		}
	}
	result, err := s.engine.ResolveTurn(p, d)
	if err != nil {
		return TurnResult{}, nil, err
	}
	if idemKey != "" {
		s.seenKeys[name+"|"+idemKey] = true
	}
	return result, p.clone(), nil
}

// Leaderboard ranks every portfolio in the session; join order breaks ties.
func (s *Session) Leaderboard() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := make([]*Portfolio, 0, len(s.order))
	for _, name := range s.order {
		ps = append(ps, s.players[name])
	}
	return Rank(ps)
}
