package services

import (
	"context"
	"sync"

	"github.com/addisbet/bingo-hall-backend/models"

	"github.com/shopspring/decimal"
)

type gameKey struct {
	houseID uint
	gameID  uint
}

// MemoryStore is an in-memory LedgerStore used by tests and local runs. One
// mutex serializes whole transactions, which also gives the single-writer
// guarantee the wallet needs; rollback restores a pre-transaction snapshot.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[gameKey]*models.GameSession
	wallets     map[uint]*models.WalletBalance
	cashiers    map[uint]*models.CashierBalance
	pools       map[uint]*models.BonusPool
	adjustments []models.BalanceAdjustment
	nextID      uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[gameKey]*models.GameSession),
		wallets:  make(map[uint]*models.WalletBalance),
		cashiers: make(map[uint]*models.CashierBalance),
		pools:    make(map[uint]*models.BonusPool),
	}
}

// SetWalletBalance seeds a house wallet (for tests and local runs).
func (s *MemoryStore) SetWalletBalance(houseID uint, pkg decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[houseID]
	if !ok {
		s.nextID++
		w = &models.WalletBalance{ID: s.nextID, HouseID: houseID}
		s.wallets[houseID] = w
	}
	w.Package = pkg
}

// Adjustments returns a copy of the audit trail.
func (s *MemoryStore) Adjustments() []models.BalanceAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BalanceAdjustment(nil), s.adjustments...)
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx LedgerStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return ErrTimeout
		}
		return err
	}

	snapshot := s.snapshot()
	if err := fn((*memoryTx)(s)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// Single-call lookups outside a transaction take the store lock per call.

func (s *MemoryStore) SessionByGame(houseID, gameID uint) (*models.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).SessionByGame(houseID, gameID)
}

func (s *MemoryStore) NextGameID(houseID uint) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).NextGameID(houseID)
}

func (s *MemoryStore) SaveSession(session *models.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).SaveSession(session)
}

func (s *MemoryStore) DeleteSession(session *models.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).DeleteSession(session)
}

func (s *MemoryStore) Wallet(houseID uint) (*models.WalletBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).Wallet(houseID)
}

func (s *MemoryStore) WalletForUpdate(houseID uint) (*models.WalletBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).WalletForUpdate(houseID)
}

func (s *MemoryStore) SaveWallet(w *models.WalletBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).SaveWallet(w)
}

func (s *MemoryStore) MirrorCashier(houseID uint, pkg decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).MirrorCashier(houseID, pkg)
}

func (s *MemoryStore) AppendAdjustment(a *models.BalanceAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).AppendAdjustment(a)
}

func (s *MemoryStore) ActiveBonusPool(houseID uint) (*models.BonusPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).ActiveBonusPool(houseID)
}

func (s *MemoryStore) ActiveBonusPoolForUpdate(houseID uint) (*models.BonusPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).ActiveBonusPoolForUpdate(houseID)
}

func (s *MemoryStore) SaveBonusPool(p *models.BonusPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*memoryTx)(s).SaveBonusPool(p)
}

type memorySnapshot struct {
	sessions    map[gameKey]*models.GameSession
	wallets     map[uint]*models.WalletBalance
	cashiers    map[uint]*models.CashierBalance
	pools       map[uint]*models.BonusPool
	adjustments []models.BalanceAdjustment
	nextID      uint
}

func (s *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		sessions:    make(map[gameKey]*models.GameSession, len(s.sessions)),
		wallets:     make(map[uint]*models.WalletBalance, len(s.wallets)),
		cashiers:    make(map[uint]*models.CashierBalance, len(s.cashiers)),
		pools:       make(map[uint]*models.BonusPool, len(s.pools)),
		adjustments: append([]models.BalanceAdjustment(nil), s.adjustments...),
		nextID:      s.nextID,
	}
	for k, v := range s.sessions {
		snap.sessions[k] = cloneSession(v)
	}
	for k, v := range s.wallets {
		w := *v
		snap.wallets[k] = &w
	}
	for k, v := range s.cashiers {
		c := *v
		snap.cashiers[k] = &c
	}
	for k, v := range s.pools {
		p := *v
		snap.pools[k] = &p
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.sessions = snap.sessions
	s.wallets = snap.wallets
	s.cashiers = snap.cashiers
	s.pools = snap.pools
	s.adjustments = snap.adjustments
	s.nextID = snap.nextID
}

func cloneSession(in *models.GameSession) *models.GameSession {
	out := *in
	out.Cartela = append(out.Cartela[:0:0], in.Cartela...)
	out.DrawnNumbers = append(out.DrawnNumbers[:0:0], in.DrawnNumbers...)
	if in.WinnerCardID != nil {
		id := *in.WinnerCardID
		out.WinnerCardID = &id
	}
	return &out
}

// memoryTx exposes the store methods inside a transaction. The transaction
// already holds the store mutex, so methods mutate directly; Transaction
// rolls back via snapshot on error.
type memoryTx MemoryStore

func (t *memoryTx) Transaction(ctx context.Context, fn func(tx LedgerStore) error) error {
	// nested transaction joins the outer one
	return fn(t)
}

func (t *memoryTx) SessionByGame(houseID, gameID uint) (*models.GameSession, error) {
	if s, ok := t.sessions[gameKey{houseID, gameID}]; ok {
		return cloneSession(s), nil
	}
	return nil, nil
}

func (t *memoryTx) NextGameID(houseID uint) (uint, error) {
	var maxID uint
	for k := range t.sessions {
		if k.houseID == houseID && k.gameID > maxID {
			maxID = k.gameID
		}
	}
	return maxID + 1, nil
}

func (t *memoryTx) SaveSession(s *models.GameSession) error {
	if s.ID == 0 {
		t.nextID++
		s.ID = t.nextID
	}
	t.sessions[gameKey{s.HouseID, s.GameID}] = cloneSession(s)
	return nil
}

func (t *memoryTx) DeleteSession(s *models.GameSession) error {
	delete(t.sessions, gameKey{s.HouseID, s.GameID})
	return nil
}

func (t *memoryTx) Wallet(houseID uint) (*models.WalletBalance, error) {
	if w, ok := t.wallets[houseID]; ok {
		copy := *w
		return &copy, nil
	}
	return nil, nil
}

func (t *memoryTx) WalletForUpdate(houseID uint) (*models.WalletBalance, error) {
	// the store mutex already serializes the transaction
	return t.Wallet(houseID)
}

func (t *memoryTx) SaveWallet(w *models.WalletBalance) error {
	if w.ID == 0 {
		t.nextID++
		w.ID = t.nextID
	}
	stored := *w
	t.wallets[w.HouseID] = &stored
	return nil
}

func (t *memoryTx) MirrorCashier(houseID uint, pkg decimal.Decimal) error {
	c, ok := t.cashiers[houseID]
	if !ok {
		t.nextID++
		c = &models.CashierBalance{ID: t.nextID, HouseID: houseID}
		t.cashiers[houseID] = c
	}
	c.Package = pkg
	return nil
}

func (t *memoryTx) AppendAdjustment(a *models.BalanceAdjustment) error {
	t.nextID++
	a.ID = t.nextID
	t.adjustments = append(t.adjustments, *a)
	return nil
}

func (t *memoryTx) ActiveBonusPool(houseID uint) (*models.BonusPool, error) {
	if p, ok := t.pools[houseID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (t *memoryTx) ActiveBonusPoolForUpdate(houseID uint) (*models.BonusPool, error) {
	return t.ActiveBonusPool(houseID)
}

func (t *memoryTx) SaveBonusPool(p *models.BonusPool) error {
	if p.ID == 0 {
		t.nextID++
		p.ID = t.nextID
	}
	stored := *p
	t.pools[p.HouseID] = &stored
	return nil
}
