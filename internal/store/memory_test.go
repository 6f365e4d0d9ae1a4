package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"swipehire/matching-service/internal/domain"
	"swipehire/matching-service/internal/store"
)

func TestMemory_WithinTxRollsBackOnError(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	m.AddAccount(1, domain.RoleJobGiver, true)
	if err := m.ApplyDelta(ctx, 1, 50, domain.TxTypePurchase, "opening"); err != nil {
		t.Fatalf("seeding balance: %v", err)
	}

	boom := errors.New("boom")
	err := m.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.ApplyDelta(ctx, 1, -10, domain.TxTypeMatch, "debit"); err != nil {
			return err
		}
		if _, err := tx.InsertSwipe(ctx, domain.Swipe{
			ActorUserID: 1, TargetID: 7, TargetType: domain.TargetJobSeeker, Direction: domain.DirectionLeft,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err = %v, want the inner error", err)
	}

	balance, err := m.GetBalance(ctx, 1)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 50 {
		t.Errorf("balance after rollback = %d, want 50", balance)
	}
	txs, _ := m.ListTransactions(ctx, 1, 100)
	if len(txs) != 1 {
		t.Errorf("transactions after rollback = %d, want only the opening purchase", len(txs))
	}
	removed, _ := m.DeleteLeftSwipes(ctx, 1, domain.TargetJobSeeker, nil)
	if removed != 0 {
		t.Errorf("rolled-back swipe survived: DeleteLeftSwipes removed %d", removed)
	}
}

func TestMemory_WithinTxNestedReusesUnit(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	m.AddAccount(1, domain.RoleJobGiver, true)

	boom := errors.New("boom")
	err := m.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.ApplyDelta(ctx, 1, 10, domain.TxTypePurchase, "outer"); err != nil {
			return err
		}
		return tx.WithinTx(ctx, func(inner store.Store) error {
			if err := inner.ApplyDelta(ctx, 1, 5, domain.TxTypePurchase, "inner"); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err = %v, want the inner error", err)
	}

	// The nested call reuses the outer unit, so everything rolls back.
	balance, err := m.GetBalance(ctx, 1)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
}

// Exercises the lock discipline: transactional units and plain calls from
// many goroutines must serialize without losing writes. Run with -race.
func TestMemory_ConcurrentTxAndPlainCalls(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	m.AddAccount(1, domain.RoleJobGiver, true)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := m.WithinTx(ctx, func(tx store.Store) error {
				return tx.ApplyDelta(ctx, 1, 1, domain.TxTypePurchase, "credit")
			})
			if err != nil {
				t.Errorf("WithinTx: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := m.InsertSwipe(ctx, domain.Swipe{
				ActorUserID: 1, TargetID: 7, TargetType: domain.TargetJobSeeker, Direction: domain.DirectionLeft,
			}); err != nil {
				t.Errorf("InsertSwipe: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, err := m.GetBalance(ctx, 1)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != n {
		t.Errorf("balance = %d, want %d", balance, n)
	}
	txs, _ := m.ListTransactions(ctx, 1, 2*n)
	if len(txs) != n {
		t.Errorf("transaction count = %d, want %d", len(txs), n)
	}
	removed, _ := m.DeleteLeftSwipes(ctx, 1, domain.TargetJobSeeker, nil)
	if removed != n {
		t.Errorf("swipe count = %d, want %d", removed, n)
	}
}
