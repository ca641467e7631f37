package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"pesa/internal/core"
)

func testUser(name string) core.User {
	return core.User{Username: name, Files: core.DefaultDataFiles(name)}
}

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{Date: "2025-03-01", Category: "Food", AmountBase: decimal.RequireFromString("2000"), OriginalAmount: "2000.00 KES", Notes: "groceries"},
		{Date: "2025-03-02", Category: "Bills", AmountBase: decimal.RequireFromString("1282.051282051282"), OriginalAmount: "10.00 USD", Notes: `power, "prepaid"`},
		{Date: "2025-03-03", Category: "Transport", AmountBase: decimal.Zero, OriginalAmount: "0.00 EUR", Notes: ""},
	}
}

func assertTransactionsEqual(t *testing.T, got, want []core.Transaction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Date != w.Date || g.Category != w.Category || g.OriginalAmount != w.OriginalAmount || g.Notes != w.Notes {
			t.Fatalf("record %d: got %+v, want %+v", i, g, w)
		}
		if !g.AmountBase.Equal(w.AmountBase) {
			t.Fatalf("record %d: amount %s, want %s", i, g.AmountBase, w.AmountBase)
		}
	}
}

// runRepositoryContract exercises behaviour every LedgerRepository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) LedgerRepository) {
	ctx := context.Background()

	t.Run("init then load is empty", func(t *testing.T) {
		repo := newRepo(t)
		u := testUser("alice")
		if err := repo.Init(ctx, u); err != nil {
			t.Fatalf("init: %v", err)
		}
		if err := repo.Init(ctx, u); err != nil {
			t.Fatalf("second init: %v", err)
		}
		for _, kind := range []core.Kind{core.Expense, core.Income} {
			got, err := repo.LoadTransactions(ctx, u, kind)
			if err != nil || len(got) != 0 {
				t.Fatalf("%s: got %v err=%v, want empty", kind, got, err)
			}
		}
		b, err := repo.LoadBudgets(ctx, u)
		if err != nil || b.Len() != 0 {
			t.Fatalf("budgets: len=%d err=%v, want empty", b.Len(), err)
		}
	})

	t.Run("transactions round trip", func(t *testing.T) {
		repo := newRepo(t)
		u := testUser("alice")
		want := sampleTransactions()
		for _, kind := range []core.Kind{core.Expense, core.Income} {
			if err := repo.SaveTransactions(ctx, u, kind, want); err != nil {
				t.Fatalf("save %s: %v", kind, err)
			}
			got, err := repo.LoadTransactions(ctx, u, kind)
			if err != nil {
				t.Fatalf("load %s: %v", kind, err)
			}
			assertTransactionsEqual(t, got, want)
		}
	})

	t.Run("save overwrites the full list", func(t *testing.T) {
		repo := newRepo(t)
		u := testUser("alice")
		all := sampleTransactions()
		if err := repo.SaveTransactions(ctx, u, core.Expense, all); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := repo.SaveTransactions(ctx, u, core.Expense, all[2:]); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, _ := repo.LoadTransactions(ctx, u, core.Expense)
		assertTransactionsEqual(t, got, all[2:])
	})

	t.Run("users are isolated", func(t *testing.T) {
		repo := newRepo(t)
		alice, bob := testUser("alice"), testUser("bob")
		if err := repo.SaveTransactions(ctx, alice, core.Expense, sampleTransactions()); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.LoadTransactions(ctx, bob, core.Expense)
		if err != nil || len(got) != 0 {
			t.Fatalf("bob sees alice's data: %v err=%v", got, err)
		}
		got, _ = repo.LoadTransactions(ctx, alice, core.Income)
		if len(got) != 0 {
			t.Fatalf("income sees expense data: %v", got)
		}
	})

	t.Run("budgets keep insertion order", func(t *testing.T) {
		repo := newRepo(t)
		u := testUser("alice")
		var b core.Budgets
		b.Set("Transport", decimal.NewFromInt(3000))
		b.Set("Food", decimal.RequireFromString("5000.5"))
		b.Set("Bills", decimal.NewFromInt(12000))
		if err := repo.SaveBudgets(ctx, u, b); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.LoadBudgets(ctx, u)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		want := b.Entries()
		entries := got.Entries()
		if len(entries) != len(want) {
			t.Fatalf("got %v, want %v", entries, want)
		}
		for i := range want {
			if entries[i].Category != want[i].Category || !entries[i].Limit.Equal(want[i].Limit) {
				t.Fatalf("entry %d: got %+v, want %+v", i, entries[i], want[i])
			}
		}
	})
}
