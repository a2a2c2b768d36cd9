package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/addisbet/bingo-hall-backend/models"
	"github.com/addisbet/bingo-hall-backend/utils/logger"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	hundred       = decimal.NewFromInt(100)
	bonusPercent  = decimal.NewFromInt(5)
	decimalPlaces = int32(2)
)

// SessionParams is one createOrUpdateSession request. GameID 0 means
// "allocate the next game number for this house".
type SessionParams struct {
	HouseID         uint
	GameID          uint
	StakeAmount     decimal.Decimal
	NumberOfPlayers int
	CutPercentage   int
	Cartela         []int
	DynamicBonus    bool
}

func (p SessionParams) validate() error {
	if p.HouseID == 0 {
		return fmt.Errorf("%w: house id is required", ErrInvalidParameters)
	}
	if !p.StakeAmount.IsPositive() {
		return fmt.Errorf("%w: stake amount must be positive", ErrInvalidParameters)
	}
	if p.NumberOfPlayers <= 0 {
		return fmt.Errorf("%w: number of players must be positive", ErrInvalidParameters)
	}
	if p.CutPercentage <= 0 || p.CutPercentage >= 100 {
		return fmt.Errorf("%w: cut percentage must be between 0 and 100 exclusive", ErrInvalidParameters)
	}
	for _, id := range p.Cartela {
		if id <= 0 {
			return fmt.Errorf("%w: invalid cartela card id %d", ErrInvalidParameters, id)
		}
	}
	return nil
}

// Ledger is the settlement engine. Every mutation runs in one bounded
// transaction spanning session, wallet, bonus pool and the cashier mirror.
type Ledger struct {
	store   LedgerStore
	timeout time.Duration
}

func NewLedger(store LedgerStore, timeout time.Duration) *Ledger {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Ledger{store: store, timeout: timeout}
}

func (l *Ledger) withTx(ctx context.Context, fn func(tx LedgerStore) error) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	err := l.store.Transaction(ctx, fn)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}

// computeTotals derives the stake pool and commission. Earnings round to the
// smallest currency unit; the prize is always derived last as the remainder
// so the settlement identity holds exactly.
func computeTotals(stake decimal.Decimal, players, cut int) (totalStake, systemEarnings decimal.Decimal) {
	totalStake = stake.Mul(decimal.NewFromInt(int64(players)))
	systemEarnings = totalStake.Mul(decimal.NewFromInt(int64(cut))).DivRound(hundred, decimalPlaces)
	return totalStake, systemEarnings
}

func bonusCut(grossPrize decimal.Decimal) decimal.Decimal {
	return grossPrize.Mul(bonusPercent).DivRound(hundred, decimalPlaces)
}

// CreateOrUpdate settles a session. With no unfinished session under the
// game id it follows the creation path; otherwise the delta-based update
// path. Re-submitting identical parameters is a no-op.
func (l *Ledger) CreateOrUpdate(ctx context.Context, p SessionParams) (*models.GameSession, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var out *models.GameSession
	err := l.withTx(ctx, func(tx LedgerStore) error {
		if p.GameID != 0 {
			existing, err := tx.SessionByGame(p.HouseID, p.GameID)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.Finished {
					return fmt.Errorf("%w: game %d", ErrSessionFinished, p.GameID)
				}
				updated, err := l.update(tx, existing, p)
				out = updated
				return err
			}
		}
		created, err := l.create(tx, p)
		out = created
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) create(tx LedgerStore, p SessionParams) (*models.GameSession, error) {
	gameID := p.GameID
	if gameID == 0 {
		next, err := tx.NextGameID(p.HouseID)
		if err != nil {
			return nil, err
		}
		gameID = next
	}

	totalStake, systemEarnings := computeTotals(p.StakeAmount, p.NumberOfPlayers, p.CutPercentage)
	grossPrize := totalStake.Sub(systemEarnings)

	bonus := decimal.Zero
	if p.DynamicBonus {
		bonus = bonusCut(grossPrize)
	}
	prize := totalStake.Sub(systemEarnings).Sub(bonus)

	if err := l.applyWalletDelta(tx, p.HouseID, &gameID, systemEarnings, "session commission"); err != nil {
		return nil, err
	}
	if err := l.adjustBonusPool(tx, p.HouseID, bonus); err != nil {
		return nil, err
	}

	session := &models.GameSession{
		HouseID:         p.HouseID,
		GameID:          gameID,
		StakeAmount:     p.StakeAmount,
		NumberOfPlayers: p.NumberOfPlayers,
		CutPercentage:   p.CutPercentage,
		TotalStake:      totalStake,
		SystemEarnings:  systemEarnings,
		Prize:           prize,
		BonusDeduction:  bonus,
		DynamicBonus:    p.DynamicBonus,
		Cartela:         datatypes.NewJSONSlice(append([]int(nil), p.Cartela...)),
		DrawnNumbers:    datatypes.NewJSONSlice([]int{}),
		StartedAt:       time.Now(),
	}
	if err := tx.SaveSession(session); err != nil {
		return nil, err
	}

	logger.Infof("[Ledger] house %d game %d created: stake=%s players=%d cut=%d%% earnings=%s prize=%s bonus=%s",
		p.HouseID, gameID, p.StakeAmount.StringFixed(2), p.NumberOfPlayers, p.CutPercentage,
		systemEarnings.StringFixed(2), prize.StringFixed(2), bonus.StringFixed(2))
	return session, nil
}

func (l *Ledger) update(tx LedgerStore, session *models.GameSession, p SessionParams) (*models.GameSession, error) {
	unchanged := session.StakeAmount.Equal(p.StakeAmount) &&
		session.NumberOfPlayers == p.NumberOfPlayers &&
		session.CutPercentage == p.CutPercentage &&
		session.DynamicBonus == p.DynamicBonus &&
		session.SameCartela(p.Cartela)
	if unchanged {
		// safe retry: no wallet mutation, same session back
		return session, nil
	}

	newTotal, newEarnings := computeTotals(p.StakeAmount, p.NumberOfPlayers, p.CutPercentage)

	// The 5% bonus applies only to the incremental prize, keyed off the
	// stored deduction, so repeated edits never double-charge the pool.
	// Toggling the flag on charges the full current prize once; toggling it
	// off refunds the stored deduction to the pool.
	newBonus := decimal.Zero
	if p.DynamicBonus {
		newGross := newTotal.Sub(newEarnings)
		if session.DynamicBonus {
			oldGross := session.TotalStake.Sub(session.SystemEarnings)
			newBonus = session.BonusDeduction.Add(bonusCut(newGross.Sub(oldGross)))
			if newBonus.IsNegative() {
				newBonus = decimal.Zero
			}
		} else {
			newBonus = bonusCut(newGross)
		}
	}
	newPrize := newTotal.Sub(newEarnings).Sub(newBonus)

	deltaEarnings := newEarnings.Sub(session.SystemEarnings)
	if err := l.applyWalletDelta(tx, session.HouseID, &session.GameID, deltaEarnings, "session commission adjustment"); err != nil {
		return nil, err
	}
	if err := l.adjustBonusPool(tx, session.HouseID, newBonus.Sub(session.BonusDeduction)); err != nil {
		return nil, err
	}

	session.StakeAmount = p.StakeAmount
	session.NumberOfPlayers = p.NumberOfPlayers
	session.CutPercentage = p.CutPercentage
	session.TotalStake = newTotal
	session.SystemEarnings = newEarnings
	session.Prize = newPrize
	session.BonusDeduction = newBonus
	session.DynamicBonus = p.DynamicBonus
	session.Cartela = datatypes.NewJSONSlice(append([]int(nil), p.Cartela...))
	if err := tx.SaveSession(session); err != nil {
		return nil, err
	}

	logger.Infof("[Ledger] house %d game %d updated: earnings delta=%s prize=%s bonus=%s",
		session.HouseID, session.GameID, deltaEarnings.StringFixed(2),
		newPrize.StringFixed(2), newBonus.StringFixed(2))
	return session, nil
}

// applyWalletDelta debits (delta > 0) or refunds (delta < 0) the house
// wallet, appends the audit record and mirrors the cashier view.
func (l *Ledger) applyWalletDelta(tx LedgerStore, houseID uint, gameID *uint, delta decimal.Decimal, reason string) error {
	if delta.IsZero() {
		return nil
	}

	wallet, err := tx.WalletForUpdate(houseID)
	if err != nil {
		return err
	}
	if wallet == nil {
		wallet = &models.WalletBalance{HouseID: houseID, Package: decimal.Zero}
	}

	before := wallet.Package
	adjType := models.AdjustmentDebit
	amount := delta
	if delta.IsPositive() {
		if wallet.Package.LessThan(delta) {
			return &InsufficientBalanceError{Required: delta, Available: wallet.Package}
		}
		wallet.Package = wallet.Package.Sub(delta)
	} else {
		adjType = models.AdjustmentCredit
		amount = delta.Neg()
		wallet.Package = wallet.Package.Add(amount)
	}

	if err := tx.SaveWallet(wallet); err != nil {
		return err
	}
	if err := tx.AppendAdjustment(&models.BalanceAdjustment{
		HouseID:       houseID,
		GameID:        gameID,
		Type:          adjType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  wallet.Package,
		Reason:        reason,
	}); err != nil {
		return err
	}
	return tx.MirrorCashier(houseID, wallet.Package)
}

func (l *Ledger) adjustBonusPool(tx LedgerStore, houseID uint, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	pool, err := tx.ActiveBonusPoolForUpdate(houseID)
	if err != nil {
		return err
	}
	if pool == nil {
		pool = &models.BonusPool{HouseID: houseID, Status: models.BonusStatusActive, BonusAmount: decimal.Zero}
	}
	pool.BonusAmount = pool.BonusAmount.Add(delta)
	if pool.BonusAmount.IsNegative() {
		pool.BonusAmount = decimal.Zero
	}
	return tx.SaveBonusPool(pool)
}

// RecordWinner marks the winning card and finishes the session. Finished is
// terminal: all later settlement calls for the game fail.
func (l *Ledger) RecordWinner(ctx context.Context, houseID, gameID uint, winnerCardID int) (*models.GameSession, error) {
	var out *models.GameSession
	err := l.withTx(ctx, func(tx LedgerStore) error {
		session, err := tx.SessionByGame(houseID, gameID)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("%w: house %d game %d", ErrSessionNotFound, houseID, gameID)
		}
		if session.Finished {
			return fmt.Errorf("%w: game %d", ErrSessionFinished, gameID)
		}
		session.WinnerCardID = &winnerCardID
		session.Finished = true
		out = session
		return tx.SaveSession(session)
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("[Ledger] house %d game %d finished, winner card %d", houseID, gameID, winnerCardID)
	return out, nil
}

// AppendDraw persists one drawn number to the session.
func (l *Ledger) AppendDraw(ctx context.Context, houseID, gameID uint, number int) (*models.GameSession, error) {
	if number < 1 || number > 75 {
		return nil, fmt.Errorf("%w: number %d out of range", ErrInvalidParameters, number)
	}
	var out *models.GameSession
	err := l.withTx(ctx, func(tx LedgerStore) error {
		session, err := tx.SessionByGame(houseID, gameID)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("%w: house %d game %d", ErrSessionNotFound, houseID, gameID)
		}
		if session.Finished {
			return fmt.Errorf("%w: game %d", ErrSessionFinished, gameID)
		}
		if session.HasDrawn(number) {
			return fmt.Errorf("%w: number %d already drawn", ErrInvalidParameters, number)
		}
		session.DrawnNumbers = append(session.DrawnNumbers, number)
		out = session
		return tx.SaveSession(session)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Session loads a session regardless of state.
func (l *Ledger) Session(ctx context.Context, houseID, gameID uint) (*models.GameSession, error) {
	var out *models.GameSession
	err := l.withTx(ctx, func(tx LedgerStore) error {
		session, err := tx.SessionByGame(houseID, gameID)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("%w: house %d game %d", ErrSessionNotFound, houseID, gameID)
		}
		out = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSession removes a session administratively. Gameplay never deletes.
func (l *Ledger) DeleteSession(ctx context.Context, houseID, gameID uint) error {
	return l.withTx(ctx, func(tx LedgerStore) error {
		session, err := tx.SessionByGame(houseID, gameID)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("%w: house %d game %d", ErrSessionNotFound, houseID, gameID)
		}
		return tx.DeleteSession(session)
	})
}

// WalletPackage reads the house wallet balance. Read-only, no row lock.
func (l *Ledger) WalletPackage(ctx context.Context, houseID uint) (decimal.Decimal, error) {
	out := decimal.Zero
	err := l.withTx(ctx, func(tx LedgerStore) error {
		wallet, err := tx.Wallet(houseID)
		if err != nil {
			return err
		}
		if wallet != nil {
			out = wallet.Package
		}
		return nil
	})
	return out, err
}

// BonusAmount reads the active bonus pool balance for a house.
func (l *Ledger) BonusAmount(ctx context.Context, houseID uint) (decimal.Decimal, error) {
	out := decimal.Zero
	err := l.withTx(ctx, func(tx LedgerStore) error {
		pool, err := tx.ActiveBonusPool(houseID)
		if err != nil {
			return err
		}
		if pool != nil {
			out = pool.BonusAmount
		}
		return nil
	})
	return out, err
}
