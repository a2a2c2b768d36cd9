package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/addisbet/bingo-hall-backend/models"
	"github.com/addisbet/bingo-hall-backend/utils/logger"
)

// CardRegistry holds the hall's printed cards, loaded once at boot.
type CardRegistry struct {
	mu    sync.RWMutex
	cards map[int]models.BingoCard
}

// LoadCards reads and validates the card file.
func LoadCards(path string) (*CardRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var cards []models.BingoCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}

	registry := &CardRegistry{cards: make(map[int]models.BingoCard, len(cards))}
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return nil, err
		}
		if _, dup := registry.cards[card.CardID]; dup {
			return nil, fmt.Errorf("duplicate card id %d in %s", card.CardID, path)
		}
		registry.cards[card.CardID] = card
	}

	logger.Infof("[Init] Loaded %d bingo cards", len(registry.cards))
	return registry, nil
}

// NewCardRegistry builds a registry from cards directly (used by tests).
func NewCardRegistry(cards []models.BingoCard) (*CardRegistry, error) {
	registry := &CardRegistry{cards: make(map[int]models.BingoCard, len(cards))}
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return nil, err
		}
		registry.cards[card.CardID] = card
	}
	return registry, nil
}

// Card looks up one card by its printed number.
func (r *CardRegistry) Card(id int) (models.BingoCard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.cards[id]
	return card, ok
}

// Count reports how many cards are registered.
func (r *CardRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cards)
}
