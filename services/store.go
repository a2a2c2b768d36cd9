package services

import (
	"context"
	"errors"
	"strings"

	"github.com/addisbet/bingo-hall-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerStore is the persistence boundary of the session ledger. Every
// settlement mutation runs inside Transaction; the callback receives a store
// bound to that transaction. Lookups return (nil, nil) when no row exists.
type LedgerStore interface {
	Transaction(ctx context.Context, fn func(tx LedgerStore) error) error

	SessionByGame(houseID, gameID uint) (*models.GameSession, error)
	NextGameID(houseID uint) (uint, error)
	SaveSession(s *models.GameSession) error
	DeleteSession(s *models.GameSession) error

	// Wallet reads the house wallet without locking; WalletForUpdate locks
	// the row for the duration of the surrounding transaction. Mutations go
	// through the locked variant, plain GET reads through the unlocked one.
	Wallet(houseID uint) (*models.WalletBalance, error)
	WalletForUpdate(houseID uint) (*models.WalletBalance, error)
	SaveWallet(w *models.WalletBalance) error
	MirrorCashier(houseID uint, pkg decimal.Decimal) error
	AppendAdjustment(a *models.BalanceAdjustment) error

	ActiveBonusPool(houseID uint) (*models.BonusPool, error)
	ActiveBonusPoolForUpdate(houseID uint) (*models.BonusPool, error)
	SaveBonusPool(p *models.BonusPool) error
}

// GormStore is the Postgres-backed LedgerStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx LedgerStore) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
	return translateDBError(err)
}

func (s *GormStore) SessionByGame(houseID, gameID uint) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.Where("house_id = ? AND game_id = ?", houseID, gameID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *GormStore) NextGameID(houseID uint) (uint, error) {
	var maxID uint
	err := s.db.Model(&models.GameSession{}).
		Where("house_id = ?", houseID).
		Select("COALESCE(MAX(game_id), 0)").
		Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	return maxID + 1, nil
}

func (s *GormStore) SaveSession(session *models.GameSession) error {
	return s.db.Save(session).Error
}

func (s *GormStore) DeleteSession(session *models.GameSession) error {
	return s.db.Delete(session).Error
}

func (s *GormStore) Wallet(houseID uint) (*models.WalletBalance, error) {
	var wallet models.WalletBalance
	err := s.db.Where("house_id = ?", houseID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *GormStore) WalletForUpdate(houseID uint) (*models.WalletBalance, error) {
	var wallet models.WalletBalance
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("house_id = ?", houseID).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *GormStore) SaveWallet(wallet *models.WalletBalance) error {
	return s.db.Save(wallet).Error
}

func (s *GormStore) MirrorCashier(houseID uint, pkg decimal.Decimal) error {
	var cashier models.CashierBalance
	err := s.db.Where("house_id = ?", houseID).First(&cashier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&models.CashierBalance{HouseID: houseID, Package: pkg}).Error
	}
	if err != nil {
		return err
	}
	cashier.Package = pkg
	return s.db.Save(&cashier).Error
}

func (s *GormStore) AppendAdjustment(a *models.BalanceAdjustment) error {
	return s.db.Create(a).Error
}

func (s *GormStore) ActiveBonusPool(houseID uint) (*models.BonusPool, error) {
	var pool models.BonusPool
	err := s.db.Where("house_id = ? AND status = ?", houseID, models.BonusStatusActive).
		First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (s *GormStore) ActiveBonusPoolForUpdate(houseID uint) (*models.BonusPool, error) {
	var pool models.BonusPool
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("house_id = ? AND status = ?", houseID, models.BonusStatusActive).
		First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (s *GormStore) SaveBonusPool(pool *models.BonusPool) error {
	return s.db.Save(pool).Error
}

// translateDBError maps driver failures onto the ledger error taxonomy.
func translateDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "40001") || // serialization_failure
		strings.Contains(msg, "40P01") || // deadlock_detected
		strings.Contains(msg, "55P03") || // lock_not_available
		strings.Contains(msg, "deadlock detected") {
		return errors.Join(ErrConcurrentModification, err)
	}
	return err
}
