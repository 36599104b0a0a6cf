// Package ledgertest wires a real ledger over an in-memory sqlite database for
// usecase tests.
package ledgertest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"stokvel-backend/internal/adapter/repository/mysql"
	"stokvel-backend/internal/domain/identity"
	"stokvel-backend/internal/domain/member"
	"stokvel-backend/internal/domain/uow"
	"stokvel-backend/internal/testutil/gatewaymock"
	"stokvel-backend/internal/usecase/ledger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// T0 is the fixed clock start used by the usecase tests.
var T0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type Env struct {
	DB        *gorm.DB
	UoW       *mysql.GormUoW
	Gateway   *gatewaymock.Gateway
	Publisher *gatewaymock.Publisher
	Runner    *ledger.Runner
}

// New opens a fresh schema. One connection only: every connection to
// ":memory:" is a separate database.
func New(t *testing.T) *Env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	e := &Env{
		DB:        db,
		UoW:       mysql.NewGormUoW(db),
		Gateway:   &gatewaymock.Gateway{},
		Publisher: &gatewaymock.Publisher{},
	}
	e.Runner = ledger.NewRunner(e.UoW, e.Gateway,
		ledger.WithPublisher(e.Publisher),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return e
}

// Addr returns a deterministic well-formed member address.
func Addr(n int) string { return fmt.Sprintf("0x%040x", n) }

// Hash returns a 64-hex fingerprint of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Seed creates an active member holding savings, backed by the same amount in
// the treasury. The first seeded member becomes the club creator.
func (e *Env) Seed(t *testing.T, addr string, savings uint64) {
	t.Helper()
	ctx := context.Background()
	err := e.UoW.WithinTx(ctx, func(r uow.Repos) error {
		club, err := r.Accounts.GetClub(ctx)
		switch {
		case errors.Is(err, member.ErrClubNotFound):
			if err := r.Accounts.CreateClub(ctx, &member.Club{ID: member.ClubID, Creator: addr, TotalMembers: 1}); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			club.TotalMembers++
			if err := r.Accounts.SaveClub(ctx, club); err != nil {
				return err
			}
		}
		if err := r.Identities.Bind(ctx, &identity.Binding{HashedID: Hash(addr), Address: addr}); err != nil {
			return err
		}
		if err := r.Treasury.Credit(ctx, savings); err != nil {
			return err
		}
		return r.Accounts.Create(ctx, &member.Account{
			Address:      addr,
			HashedID:     Hash(addr),
			IsActive:     true,
			TotalSavings: savings,
			JoinedAt:     T0,
		})
	})
	if err != nil {
		t.Fatalf("seed %s: %v", addr, err)
	}
}

func (e *Env) Account(t *testing.T, addr string) *member.Account {
	t.Helper()
	a, err := e.UoW.Read().Accounts.GetByAddress(context.Background(), addr)
	if err != nil {
		t.Fatalf("account %s: %v", addr, err)
	}
	return a
}

func (e *Env) Club(t *testing.T) *member.Club {
	t.Helper()
	c, err := e.UoW.Read().Accounts.GetClub(context.Background())
	if err != nil {
		t.Fatalf("club: %v", err)
	}
	return c
}

func (e *Env) TreasuryBalance(t *testing.T) uint64 {
	t.Helper()
	b, err := e.UoW.Read().Treasury.Balance(context.Background())
	if err != nil {
		t.Fatalf("treasury: %v", err)
	}
	return b
}
