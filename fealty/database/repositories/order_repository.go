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

var ErrOrderNotOpen = errors.New("order is not open")

type OrderRepository interface {
	Create(ctx context.Context, order *models.OrderRun) error
	GetSince(ctx context.Context, guildID, userID string, since time.Time) ([]*models.OrderRun, error)
	GetOpenOrder(ctx context.Context, guildID, userID string) (*models.OrderRun, error)
	Complete(ctx context.Context, orderID int64, at time.Time) error
	Fail(ctx context.Context, orderID int64, at time.Time) error
}

type orderRepository struct {
	db *bun.DB
}

func NewOrderRepository(db *bun.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.OrderRun) error {
	order.Status = models.OrderStatusAccepted
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(order).Exec(ctx)
	return err
}

func (r *orderRepository) GetSince(ctx context.Context, guildID, userID string, since time.Time) ([]*models.OrderRun, error) {
	var runs []*models.OrderRun
	err := r.db.NewSelect().
		Model(&runs).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Where("accepted_at >= ?", since).
		Order("accepted_at ASC").
		Scan(ctx)

	if err != nil {
		slog.Error("Failed to query order history",
			slog.String("type", "db"),
			slog.String("operation", "GetSince"),
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, err
	}
	return runs, nil
}

func (r *orderRepository) GetOpenOrder(ctx context.Context, guildID, userID string) (*models.OrderRun, error) {
	order := new(models.OrderRun)
	err := r.db.NewSelect().
		Model(order).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Where("status = ?", models.OrderStatusAccepted).
		Order("accepted_at DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

// Complete transitions an accepted order to completed, stamping the late flag
// from the due date. The status guard makes the transition one-shot.
func (r *orderRepository) Complete(ctx context.Context, orderID int64, at time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*models.OrderRun)(nil)).
		Set("status = ?", models.OrderStatusCompleted).
		Set("completed_at = ?", at).
		Set("late = (due_at < ?)", at).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", orderID).
		Where("status = ?", models.OrderStatusAccepted).
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotOpen
	}
	return nil
}

func (r *orderRepository) Fail(ctx context.Context, orderID int64, at time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*models.OrderRun)(nil)).
		Set("status = ?", models.OrderStatusFailed).
		Set("completed_at = ?", at).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", orderID).
		Where("status = ?", models.OrderStatusAccepted).
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotOpen
	}
	return nil
}
