package migration

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ellavondegurechaff/fealty/fealty/database/models"
)

const maxDocumentSize = 16 * 1024 * 1024

const (
	usersDump    = "users.bson"
	ordersDump   = "orders.bson"
	activityDump = "activity.bson"
)

// dumpFiles are the dump filenames the importer understands, in import order.
var dumpFiles = []string{usersDump, ordersDump, activityDump}

// Migrator imports a legacy bot's BSON dumps (users.bson, orders.bson,
// activity.bson) into the Postgres schema. It is a one-shot tool: inserts
// skip rows that already exist, so reruns are safe.
type Migrator struct {
	db        *bun.DB
	dataDir   string
	batchSize int
	stats     ImportStats
}

func NewMigrator(db *bun.DB, dataDir string) *Migrator {
	return &Migrator{
		db:        db,
		dataDir:   dataDir,
		batchSize: 1000,
		stats:     ImportStats{StartTime: time.Now()},
	}
}

// MigrateAll imports all three dumps. Missing dump files are skipped.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	if err := m.MigrateUsers(ctx); err != nil {
		return fmt.Errorf("users migration failed: %w", err)
	}
	if err := m.MigrateOrders(ctx); err != nil {
		return fmt.Errorf("orders migration failed: %w", err)
	}
	if err := m.MigrateActivity(ctx); err != nil {
		return fmt.Errorf("activity migration failed: %w", err)
	}

	m.stats.FinishTime = time.Now()
	slog.Info("Legacy migration completed",
		slog.String("type", "sys"),
		slog.Int("users", m.stats.Users),
		slog.Int("orders", m.stats.Orders),
		slog.Int("activity_days", m.stats.Activity),
		slog.Int("skipped", m.stats.Skipped),
		slog.Duration("took", m.stats.FinishTime.Sub(m.stats.StartTime)))
	return nil
}

// MigrateUsers converts legacy user documents into wallets and, where the
// document carries debt, discipline states.
func (m *Migrator) MigrateUsers(ctx context.Context) error {
	var wallets []*models.Wallet
	var states []*models.DisciplineState
	now := time.Now()

	err := m.processBSONFile(ctx, filepath.Join(m.dataDir, usersDump), func(doc []byte) error {
		var u LegacyUser
		if err := bson.Unmarshal(doc, &u); err != nil {
			return err
		}
		if u.DiscordID == "" || u.GuildID == "" {
			m.stats.Skipped++
			return nil
		}

		wallets = append(wallets, &models.Wallet{
			GuildID:        u.GuildID,
			UserID:         u.DiscordID,
			Balance:        int64(u.Coins),
			LifetimeEarned: int64(u.Earned),
			LifetimeBurned: int64(u.Spent),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if u.Debt > 0 {
			states = append(states, &models.DisciplineState{
				GuildID:   u.GuildID,
				UserID:    u.DiscordID,
				Debt:      int64(u.Debt),
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		m.stats.Users++

		if len(wallets) >= m.batchSize {
			if err := insertBatch(ctx, m.db, wallets, "(guild_id, user_id)"); err != nil {
				return err
			}
			wallets = wallets[:0]
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(wallets) > 0 {
		if err := insertBatch(ctx, m.db, wallets, "(guild_id, user_id)"); err != nil {
			return err
		}
	}
	if len(states) > 0 {
		if err := insertBatch(ctx, m.db, states, "(guild_id, user_id)"); err != nil {
			return err
		}
	}
	return nil
}

// MigrateOrders converts legacy order documents. Unknown statuses map to
// failed rather than leaving a run open forever.
func (m *Migrator) MigrateOrders(ctx context.Context) error {
	var orders []*models.OrderRun
	now := time.Now()

	err := m.processBSONFile(ctx, filepath.Join(m.dataDir, ordersDump), func(doc []byte) error {
		var o LegacyOrder
		if err := bson.Unmarshal(doc, &o); err != nil {
			return err
		}
		if o.GuildID == "" || o.UserID == "" {
			m.stats.Skipped++
			return nil
		}

		run := &models.OrderRun{
			GuildID:     o.GuildID,
			UserID:      o.UserID,
			Description: o.Description,
			AcceptedAt:  o.AcceptedAt,
			DueAt:       o.DueAt,
			CompletedAt: o.CompletedAt,
			Status:      legacyStatus(o),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if run.Status == models.OrderStatusCompleted && o.CompletedAt != nil {
			run.Late = o.CompletedAt.After(o.DueAt)
		}
		orders = append(orders, run)
		m.stats.Orders++

		if len(orders) >= m.batchSize {
			if err := insertPlain(ctx, m.db, orders); err != nil {
				return err
			}
			orders = orders[:0]
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(orders) > 0 {
		return insertPlain(ctx, m.db, orders)
	}
	return nil
}

// MigrateActivity converts per-day activity rollups. The legacy bot never
// tracked reactions, presence or command counters, so those start at zero.
func (m *Migrator) MigrateActivity(ctx context.Context) error {
	var days []*models.ActivityDay
	now := time.Now()

	err := m.processBSONFile(ctx, filepath.Join(m.dataDir, activityDump), func(doc []byte) error {
		var a LegacyActivity
		if err := bson.Unmarshal(doc, &a); err != nil {
			return err
		}
		if a.GuildID == "" || a.UserID == "" {
			m.stats.Skipped++
			return nil
		}

		days = append(days, &models.ActivityDay{
			GuildID:      a.GuildID,
			UserID:       a.UserID,
			Day:          a.Day.UTC().Truncate(24 * time.Hour),
			Messages:     int(a.Messages),
			VoiceMinutes: int(a.Voice),
			Events:       int(a.Events),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		m.stats.Activity++

		if len(days) >= m.batchSize {
			if err := insertBatch(ctx, m.db, days, "(guild_id, user_id, day)"); err != nil {
				return err
			}
			days = days[:0]
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(days) > 0 {
		return insertBatch(ctx, m.db, days, "(guild_id, user_id, day)")
	}
	return nil
}

func legacyStatus(o LegacyOrder) models.OrderStatus {
	switch o.Status {
	case "done", "completed":
		return models.OrderStatusCompleted
	case "open", "accepted":
		return models.OrderStatusAccepted
	default:
		return models.OrderStatusFailed
	}
}

func insertBatch[T any](ctx context.Context, db *bun.DB, rows []T, conflictCols string) error {
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT " + conflictCols + " DO NOTHING").
		Exec(ctx)
	return err
}

func insertPlain[T any](ctx context.Context, db *bun.DB, rows []T) error {
	_, err := db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

// processBSONFile streams raw BSON documents out of a mongodump .bson file.
// Each document is length-prefixed with a little-endian int32 that includes
// the prefix itself.
func (m *Migrator) processBSONFile(ctx context.Context, filePath string, processDoc func([]byte) error) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		slog.Info("Dump file not found, skipping",
			slog.String("type", "sys"),
			slog.String("file", filePath))
		return nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	docCount := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		lengthBytes := make([]byte, 4)
		if _, err := io.ReadFull(reader, lengthBytes); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read document length in %s: %w", filePath, err)
		}

		length := int32(binary.LittleEndian.Uint32(lengthBytes))
		if length <= 4 || length > maxDocumentSize {
			return fmt.Errorf("invalid document length %d in %s", length, filePath)
		}

		docBytes := make([]byte, length-4)
		if _, err := io.ReadFull(reader, docBytes); err != nil {
			return fmt.Errorf("truncated document in %s: %w", filePath, err)
		}

		if err := processDoc(append(lengthBytes, docBytes...)); err != nil {
			slog.Warn("Skipping unreadable document",
				slog.String("type", "sys"),
				slog.String("file", filePath),
				slog.Int("doc", docCount+1),
				slog.Any("error", err))
			m.stats.Skipped++
			continue
		}
		docCount++

		if docCount%1000 == 0 {
			slog.Info("Migration progress",
				slog.String("type", "sys"),
				slog.String("file", filePath),
				slog.Int("documents", docCount))
		}
	}

	slog.Info("Dump file processed",
		slog.String("type", "sys"),
		slog.String("file", filePath),
		slog.Int("documents", docCount))
	return nil
}
