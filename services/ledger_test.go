package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/addisbet/bingo-hall-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHouse uint = 1

func newTestLedger(balance int64) (*Ledger, *MemoryStore) {
	store := NewMemoryStore()
	store.SetWalletBalance(testHouse, decimal.NewFromInt(balance))
	return NewLedger(store, 5*time.Second), store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func baseParams() SessionParams {
	return SessionParams{
		HouseID:         testHouse,
		StakeAmount:     decimal.NewFromInt(10),
		NumberOfPlayers: 5,
		CutPercentage:   20,
		Cartela:         []int{11, 12, 13, 14, 15},
	}
}

func assertSettled(t *testing.T, s *models.GameSession) {
	t.Helper()
	sum := s.SystemEarnings.Add(s.Prize).Add(s.BonusDeduction)
	assert.True(t, sum.Equal(s.TotalStake),
		"earnings %s + prize %s + bonus %s != total %s",
		s.SystemEarnings, s.Prize, s.BonusDeduction, s.TotalStake)
}

func TestCreateSession(t *testing.T) {
	ledger, _ := newTestLedger(100)

	s, err := ledger.CreateOrUpdate(context.Background(), baseParams())
	require.NoError(t, err)

	assert.Equal(t, uint(1), s.GameID, "first game for the house")
	assert.True(t, s.TotalStake.Equal(dec("50")))
	assert.True(t, s.SystemEarnings.Equal(dec("10")))
	assert.True(t, s.Prize.Equal(dec("40")))
	assert.True(t, s.BonusDeduction.IsZero())
	assertSettled(t, s)

	pkg, err := ledger.WalletPackage(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, pkg.Equal(dec("90")), "commission debited, got %s", pkg)
}

func TestCreateSessionWithDynamicBonus(t *testing.T) {
	ledger, _ := newTestLedger(100)

	p := baseParams()
	p.DynamicBonus = true
	s, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, s.SystemEarnings.Equal(dec("10")))
	assert.True(t, s.BonusDeduction.Equal(dec("2")), "5%% of the 40 prize")
	assert.True(t, s.Prize.Equal(dec("38")))
	assertSettled(t, s)

	bonus, err := ledger.BonusAmount(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, bonus.Equal(dec("2")))
}

func TestResubmitIdenticalParamsIsNoOp(t *testing.T) {
	ledger, store := newTestLedger(100)

	p := baseParams()
	first, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	adjustmentsBefore := len(store.Adjustments())

	p.GameID = first.GameID
	second, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Prize.Equal(first.Prize))
	assert.Len(t, store.Adjustments(), adjustmentsBefore, "no wallet mutation on retry")

	pkg, err := ledger.WalletPackage(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, pkg.Equal(dec("90")))
}

func TestUpdatePlayersDebitsOnlyTheDelta(t *testing.T) {
	ledger, store := newTestLedger(100)

	p := baseParams()
	created, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	p.GameID = created.GameID
	p.NumberOfPlayers = 7
	updated, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, updated.TotalStake.Equal(dec("70")))
	assert.True(t, updated.SystemEarnings.Equal(dec("14")))
	assert.True(t, updated.Prize.Equal(dec("56")))
	assertSettled(t, updated)

	pkg, err := ledger.WalletPackage(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, pkg.Equal(dec("86")), "only the +4 delta debited, got %s", pkg)

	adjustments := store.Adjustments()
	last := adjustments[len(adjustments)-1]
	assert.Equal(t, models.AdjustmentDebit, last.Type)
	assert.True(t, last.Amount.Equal(dec("4")))
}

func TestUpdateRefundsWhenPlayersDrop(t *testing.T) {
	ledger, _ := newTestLedger(100)

	p := baseParams()
	created, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	p.GameID = created.GameID
	p.NumberOfPlayers = 3
	updated, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, updated.SystemEarnings.Equal(dec("6")))
	assertSettled(t, updated)

	pkg, err := ledger.WalletPackage(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, pkg.Equal(dec("94")), "4 refunded on top of the 90 left")
}

func TestUpdateAppliesBonusToIncrementOnly(t *testing.T) {
	ledger, _ := newTestLedger(100)

	p := baseParams()
	p.DynamicBonus = true
	created, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)
	require.True(t, created.BonusDeduction.Equal(dec("2")))

	// players 5 -> 7: gross prize grows from 40 to 56, bonus grows by 5% of 16
	p.GameID = created.GameID
	p.NumberOfPlayers = 7
	updated, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, updated.BonusDeduction.Equal(dec("2.8")), "got %s", updated.BonusDeduction)
	assert.True(t, updated.Prize.Equal(dec("53.2")))
	assertSettled(t, updated)

	bonus, err := ledger.BonusAmount(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, bonus.Equal(dec("2.8")))

	// editing back down reverses the incremental deduction
	p.NumberOfPlayers = 5
	reverted, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, reverted.BonusDeduction.Equal(dec("2")))
	assertSettled(t, reverted)

	bonus, err = ledger.BonusAmount(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, bonus.Equal(dec("2")))
}

func TestDynamicBonusToggle(t *testing.T) {
	ledger, _ := newTestLedger(100)

	p := baseParams()
	created, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)
	require.True(t, created.BonusDeduction.IsZero())

	// toggling the flag on charges 5% of the current gross prize
	p.GameID = created.GameID
	p.DynamicBonus = true
	on, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, on.DynamicBonus)
	assert.True(t, on.BonusDeduction.Equal(dec("2")), "got %s", on.BonusDeduction)
	assert.True(t, on.Prize.Equal(dec("38")))
	assertSettled(t, on)

	bonus, err := ledger.BonusAmount(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, bonus.Equal(dec("2")))

	// resubmitting the toggled params is a no-op
	again, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, again.BonusDeduction.Equal(dec("2")))

	// toggling off refunds the deduction to the pool
	p.DynamicBonus = false
	off, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, off.DynamicBonus)
	assert.True(t, off.BonusDeduction.IsZero())
	assert.True(t, off.Prize.Equal(dec("40")))
	assertSettled(t, off)

	bonus, err = ledger.BonusAmount(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, bonus.IsZero())
}

func TestRepeatedEditsKeepInvariant(t *testing.T) {
	ledger, _ := newTestLedger(10000)

	p := baseParams()
	p.DynamicBonus = true
	created, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)
	p.GameID = created.GameID

	edits := []struct {
		players int
		stake   string
		cut     int
	}{
		{7, "10", 20},
		{7, "25", 20},
		{4, "25", 35},
		{12, "7.5", 15},
		{12, "7.5", 15}, // no-op repeat
		{9, "33.33", 7},
	}
	for _, e := range edits {
		p.NumberOfPlayers = e.players
		p.StakeAmount = dec(e.stake)
		p.CutPercentage = e.cut
		s, err := ledger.CreateOrUpdate(context.Background(), p)
		require.NoError(t, err)
		assertSettled(t, s)
		assert.False(t, s.BonusDeduction.IsNegative())
	}
}

func TestInsufficientBalanceLeavesNoTrace(t *testing.T) {
	ledger, store := newTestLedger(5)

	_, err := ledger.CreateOrUpdate(context.Background(), baseParams())
	var insufficient *InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Shortfall().Equal(dec("5")))

	pkg, err := ledger.WalletPackage(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, pkg.Equal(dec("5")), "no partial debit")
	assert.Empty(t, store.Adjustments())

	_, err = ledger.Session(context.Background(), testHouse, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestInsufficientBalanceOnUpdateRollsBack(t *testing.T) {
	ledger, _ := newTestLedger(11)

	p := baseParams()
	created, err := ledger.CreateOrUpdate(context.Background(), p) // debits 10
	require.NoError(t, err)

	p.GameID = created.GameID
	p.NumberOfPlayers = 50 // would need +90
	_, err = ledger.CreateOrUpdate(context.Background(), p)
	var insufficient *InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)

	// session still holds the old settlement
	current, err := ledger.Session(context.Background(), testHouse, created.GameID)
	require.NoError(t, err)
	assert.Equal(t, 5, current.NumberOfPlayers)
	assert.True(t, current.SystemEarnings.Equal(dec("10")))
	assertSettled(t, current)
}

func TestValidationRejectsBeforeAnyMutation(t *testing.T) {
	ledger, store := newTestLedger(100)

	bad := []SessionParams{
		func() SessionParams { p := baseParams(); p.StakeAmount = decimal.Zero; return p }(),
		func() SessionParams { p := baseParams(); p.StakeAmount = dec("-3"); return p }(),
		func() SessionParams { p := baseParams(); p.NumberOfPlayers = 0; return p }(),
		func() SessionParams { p := baseParams(); p.CutPercentage = 0; return p }(),
		func() SessionParams { p := baseParams(); p.CutPercentage = 100; return p }(),
		func() SessionParams { p := baseParams(); p.HouseID = 0; return p }(),
		func() SessionParams { p := baseParams(); p.Cartela = []int{0}; return p }(),
	}
	for _, p := range bad {
		_, err := ledger.CreateOrUpdate(context.Background(), p)
		assert.ErrorIs(t, err, ErrInvalidParameters)
	}
	assert.Empty(t, store.Adjustments())
}

func TestFinishedSessionIsTerminal(t *testing.T) {
	ledger, _ := newTestLedger(100)

	p := baseParams()
	created, err := ledger.CreateOrUpdate(context.Background(), p)
	require.NoError(t, err)

	finished, err := ledger.RecordWinner(context.Background(), testHouse, created.GameID, 12)
	require.NoError(t, err)
	assert.True(t, finished.Finished)
	require.NotNil(t, finished.WinnerCardID)
	assert.Equal(t, 12, *finished.WinnerCardID)

	p.GameID = created.GameID
	p.NumberOfPlayers = 9
	_, err = ledger.CreateOrUpdate(context.Background(), p)
	assert.ErrorIs(t, err, ErrSessionFinished)

	_, err = ledger.RecordWinner(context.Background(), testHouse, created.GameID, 13)
	assert.ErrorIs(t, err, ErrSessionFinished)

	_, err = ledger.AppendDraw(context.Background(), testHouse, created.GameID, 1)
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestGameIDsIncreasePerHouse(t *testing.T) {
	ledger, store := newTestLedger(1000)
	store.SetWalletBalance(2, decimal.NewFromInt(1000))

	first, err := ledger.CreateOrUpdate(context.Background(), baseParams())
	require.NoError(t, err)
	second, err := ledger.CreateOrUpdate(context.Background(), baseParams())
	require.NoError(t, err)
	assert.Equal(t, first.GameID+1, second.GameID)

	other := baseParams()
	other.HouseID = 2
	otherFirst, err := ledger.CreateOrUpdate(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, uint(1), otherFirst.GameID, "game ids are per house")
}

func TestAppendDraw(t *testing.T) {
	ledger, _ := newTestLedger(100)

	created, err := ledger.CreateOrUpdate(context.Background(), baseParams())
	require.NoError(t, err)

	s, err := ledger.AppendDraw(context.Background(), testHouse, created.GameID, 42)
	require.NoError(t, err)
	assert.Equal(t, []int{42}, s.Drawn())

	_, err = ledger.AppendDraw(context.Background(), testHouse, created.GameID, 42)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = ledger.AppendDraw(context.Background(), testHouse, created.GameID, 76)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = ledger.AppendDraw(context.Background(), testHouse, created.GameID, 0)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestDeleteSession(t *testing.T) {
	ledger, _ := newTestLedger(100)

	created, err := ledger.CreateOrUpdate(context.Background(), baseParams())
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteSession(context.Background(), testHouse, created.GameID))
	_, err = ledger.Session(context.Background(), testHouse, created.GameID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = ledger.DeleteSession(context.Background(), testHouse, created.GameID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentCreatesNeverOverdraw(t *testing.T) {
	ledger, _ := newTestLedger(25) // covers exactly two 10-commission sessions

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.CreateOrUpdate(context.Background(), baseParams())
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			var insufficient *InsufficientBalanceError
			if !errors.As(err, &insufficient) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, successes)

	pkg, err := ledger.WalletPackage(context.Background(), testHouse)
	require.NoError(t, err)
	assert.True(t, pkg.Equal(dec("5")), "got %s", pkg)
	assert.False(t, pkg.IsNegative())
}

func TestBalanceReadsForUnknownHouse(t *testing.T) {
	ledger, _ := newTestLedger(100)

	pkg, err := ledger.WalletPackage(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, pkg.IsZero())

	bonus, err := ledger.BonusAmount(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, bonus.IsZero())
}

func TestTimeoutSurfacesAsTypedError(t *testing.T) {
	ledger, _ := newTestLedger(100)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := ledger.CreateOrUpdate(ctx, baseParams())
	assert.ErrorIs(t, err, ErrTimeout)
}
