package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/addisbet/bingo-hall-backend/game"
	"github.com/addisbet/bingo-hall-backend/models"
	"github.com/addisbet/bingo-hall-backend/utils/logger"
)

// SessionService binds live sessions to their draw engines and pushes every
// drawn number to the websocket display boards.
type SessionService struct {
	ledger       *Ledger
	cards        *CardRegistry
	catalog      *game.Catalog
	drawInterval time.Duration

	mu      sync.Mutex
	engines map[gameKey]*game.Engine
	hubs    map[gameKey]*hub
}

func NewSessionService(ledger *Ledger, cards *CardRegistry, catalog *game.Catalog, drawInterval time.Duration) *SessionService {
	return &SessionService{
		ledger:       ledger,
		cards:        cards,
		catalog:      catalog,
		drawInterval: drawInterval,
		engines:      make(map[gameKey]*game.Engine),
		hubs:         make(map[gameKey]*hub),
	}
}

// Ledger exposes the settlement engine to the HTTP layer.
func (s *SessionService) Ledger() *Ledger { return s.ledger }

func (s *SessionService) engine(ctx context.Context, houseID, gameID uint) (*game.Engine, error) {
	key := gameKey{houseID, gameID}

	s.mu.Lock()
	if e, ok := s.engines[key]; ok {
		s.mu.Unlock()
		return e, nil
	}
	s.mu.Unlock()

	// resume from whatever the session already drew
	session, err := s.ledger.Session(ctx, houseID, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[key]; ok {
		return e, nil
	}
	e := game.NewEngine(session.Drawn())
	s.engines[key] = e
	return e, nil
}

func (s *SessionService) dropEngine(houseID, gameID uint) {
	key := gameKey{houseID, gameID}
	s.mu.Lock()
	if e, ok := s.engines[key]; ok {
		e.Stop()
		delete(s.engines, key)
	}
	s.mu.Unlock()
}

// Draw reveals one number for the session and persists it.
func (s *SessionService) Draw(ctx context.Context, houseID, gameID uint) (int, *models.GameSession, error) {
	e, err := s.engine(ctx, houseID, gameID)
	if err != nil {
		return 0, nil, err
	}

	n, err := e.Draw()
	if err != nil {
		return 0, nil, err
	}

	session, err := s.ledger.AppendDraw(ctx, houseID, gameID, n)
	if err != nil {
		// engine and store diverged; rebuild from the store on next draw
		s.dropEngine(houseID, gameID)
		return 0, nil, err
	}

	s.broadcastDraw(houseID, gameID, n, session)
	return n, session, nil
}

// Preview samples candidate numbers for display without mutating the
// session.
func (s *SessionService) Preview(ctx context.Context, houseID, gameID uint, count int) ([]int, error) {
	if count <= 0 {
		count = 5
	}
	e, err := s.engine(ctx, houseID, gameID)
	if err != nil {
		return nil, err
	}
	return e.Preview(count), nil
}

// StartAutoPlay begins timed drawing for the session.
func (s *SessionService) StartAutoPlay(ctx context.Context, houseID, gameID uint) error {
	session, err := s.ledger.Session(ctx, houseID, gameID)
	if err != nil {
		return err
	}
	if session.Finished {
		return fmt.Errorf("%w: game %d", ErrSessionFinished, gameID)
	}

	e, err := s.engine(ctx, houseID, gameID)
	if err != nil {
		return err
	}

	return e.AutoPlay(s.drawInterval, func(n int) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		persisted, err := s.ledger.AppendDraw(ctx, houseID, gameID, n)
		if err != nil {
			logger.Errorf("[Session %d/%d] auto draw %d not persisted: %v", houseID, gameID, n, err)
			e.Stop()
			s.dropEngine(houseID, gameID)
			return
		}
		s.broadcastDraw(houseID, gameID, n, persisted)
	})
}

// StopAutoPlay cancels timed drawing. Calling it when nothing plays is a
// no-op.
func (s *SessionService) StopAutoPlay(houseID, gameID uint) {
	s.mu.Lock()
	e, ok := s.engines[gameKey{houseID, gameID}]
	s.mu.Unlock()
	if ok {
		e.Stop()
	}
}

// EvaluateCard checks one card's win eligibility under the selected
// patterns. Pure with respect to session state.
func (s *SessionService) EvaluateCard(ctx context.Context, houseID, gameID uint, cardID int, primary, secondary string, comb game.Combinator) (bool, []string, error) {
	session, err := s.ledger.Session(ctx, houseID, gameID)
	if err != nil {
		return false, nil, err
	}

	card, ok := s.cards.Card(cardID)
	if !ok {
		return false, nil, fmt.Errorf("%w: card %d", ErrCardNotFound, cardID)
	}
	if len(session.Cartela) > 0 && !containsInt(session.Cartela, cardID) {
		return false, nil, fmt.Errorf("%w: card %d is not in the session cartela", ErrCardNotFound, cardID)
	}

	grid, err := card.Grid()
	if err != nil {
		return false, nil, err
	}

	winner, satisfied, err := game.IsWinner(grid, session.Drawn(), primary, secondary, comb, s.catalog)
	if err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	names := make([]string, 0, len(satisfied))
	for name := range satisfied {
		names = append(names, name)
	}
	return winner, names, nil
}

// FinishSession records the winner, stops drawing and notifies the boards.
func (s *SessionService) FinishSession(ctx context.Context, houseID, gameID uint, winnerCardID int) (*models.GameSession, error) {
	s.StopAutoPlay(houseID, gameID)

	session, err := s.ledger.RecordWinner(ctx, houseID, gameID, winnerCardID)
	if err != nil {
		return nil, err
	}

	s.dropEngine(houseID, gameID)
	s.broadcast(houseID, gameID, map[string]any{
		"type":           "finished",
		"winner_card_id": winnerCardID,
		"game_id":        gameID,
	})
	return session, nil
}

// DeleteSession removes a session administratively and tears down its
// engine and feed.
func (s *SessionService) DeleteSession(ctx context.Context, houseID, gameID uint) error {
	if err := s.ledger.DeleteSession(ctx, houseID, gameID); err != nil {
		return err
	}
	s.dropEngine(houseID, gameID)
	s.mu.Lock()
	delete(s.hubs, gameKey{houseID, gameID})
	s.mu.Unlock()
	return nil
}

func (s *SessionService) hubFor(houseID, gameID uint) *hub {
	key := gameKey{houseID, gameID}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hubs[key]
	if !ok {
		h = newHub()
		s.hubs[key] = h
	}
	return h
}

func (s *SessionService) broadcastDraw(houseID, gameID uint, n int, session *models.GameSession) {
	s.broadcast(houseID, gameID, map[string]any{
		"type":          "draw",
		"number":        n,
		"drawn_numbers": session.Drawn(),
		"remaining":     game.MaxNumber - len(session.DrawnNumbers),
	})
}

func (s *SessionService) broadcast(houseID, gameID uint, payload map[string]any) {
	s.mu.Lock()
	h, ok := s.hubs[gameKey{houseID, gameID}]
	s.mu.Unlock()
	if !ok {
		return
	}

	b, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("[Session %d/%d] marshal broadcast: %v", houseID, gameID, err)
		return
	}
	h.broadcast(b)
}

func containsInt(list []int, n int) bool {
	for _, v := range list {
		if v == n {
			return true
		}
	}
	return false
}
