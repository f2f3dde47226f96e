package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
	"github.com/uptrace/bun"
)

type WalletRepository interface {
	Get(ctx context.Context, guildID, userID string) (*models.Wallet, error)
	Deposit(ctx context.Context, guildID, userID string, amount int64) error
	Burn(ctx context.Context, guildID, userID string, amount int64) (int64, error)
}

type walletRepository struct {
	db *bun.DB
}

func NewWalletRepository(db *bun.DB) WalletRepository {
	return &walletRepository{db: db}
}

// Get returns the user's wallet, or an empty wallet when none exists yet.
func (r *walletRepository) Get(ctx context.Context, guildID, userID string) (*models.Wallet, error) {
	wallet := new(models.Wallet)
	err := r.db.NewSelect().
		Model(wallet).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Wallet{GuildID: guildID, UserID: userID}, nil
		}
		slog.Error("Failed to get wallet",
			slog.String("type", "db"),
			slog.String("operation", "Get"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, err
	}
	return wallet, nil
}

// Deposit credits the balance and lifetime earned in one atomic upsert.
// Lifetime earned only ever grows; it feeds coin rank.
func (r *walletRepository) Deposit(ctx context.Context, guildID, userID string, amount int64) error {
	now := time.Now()
	row := &models.Wallet{
		GuildID:        guildID,
		UserID:         userID,
		Balance:        amount,
		LifetimeEarned: amount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, user_id) DO UPDATE").
		Set("balance = w.balance + EXCLUDED.balance").
		Set("lifetime_earned = w.lifetime_earned + EXCLUDED.lifetime_earned").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		slog.Error("Failed to deposit",
			slog.String("type", "db"),
			slog.String("operation", "Deposit"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Int64("amount", amount),
			slog.Any("error", err))
	}
	return err
}

// Burn removes up to amount from the balance, floored at zero, and returns
// the new balance. The single statement keeps the floor and the
// lifetime-burned accounting consistent under concurrency.
func (r *walletRepository) Burn(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	var newBalance int64
	err := r.db.NewUpdate().
		Model((*models.Wallet)(nil)).
		Set("lifetime_burned = lifetime_burned + LEAST(balance, ?)", amount).
		Set("balance = GREATEST(0, balance - ?)", amount).
		Set("updated_at = ?", time.Now()).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Returning("balance").
		Scan(ctx, &newBalance)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		slog.Error("Failed to burn balance",
			slog.String("type", "db"),
			slog.String("operation", "Burn"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Int64("amount", amount),
			slog.Any("error", err))
		return 0, err
	}
	return newBalance, nil
}
