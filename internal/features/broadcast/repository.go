// Package broadcast — repository.go выполняет операции с таблицами
// broadcasts и broadcast_completions. Начисление награды идёт в одной
// транзакции с отметкой о выполнении.
package broadcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rudeps/RudepsBot/internal/common"
	"github.com/rudeps/RudepsBot/internal/features/users"
)

const pgUniqueViolation = "23505"

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую рассылку до начала отправки.
func (r *Repository) Create(ctx context.Context, adminID int64, audience users.Audience, targetCount int, text, link string, reward int64) (*Broadcast, error) {
	query := `
		INSERT INTO broadcasts (admin_id, audience, target_count, text, link, reward)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, admin_id, audience, target_count, text, link, reward, sent_count, fail_count, created_at
	`
	var b Broadcast
	err := r.db.QueryRow(ctx, query, adminID, audience, targetCount, text, link, reward).Scan(
		&b.ID, &b.AdminID, &b.Audience, &b.TargetCount, &b.Text, &b.Link, &b.Reward,
		&b.SentCount, &b.FailCount, &b.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания рассылки: %w", err)
	}
	return &b, nil
}

// GetByID возвращает рассылку по ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Broadcast, error) {
	query := `
		SELECT id, admin_id, audience, target_count, text, link, reward, sent_count, fail_count, created_at
		FROM broadcasts WHERE id = $1
	`
	var b Broadcast
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.AdminID, &b.Audience, &b.TargetCount, &b.Text, &b.Link, &b.Reward,
		&b.SentCount, &b.FailCount, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("id=%d: %w", id, common.ErrBroadcastNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения рассылки (id=%d): %w", id, err)
	}
	return &b, nil
}

// SaveTallies записывает итоги отправки рассылки.
func (r *Repository) SaveTallies(ctx context.Context, id int64, sent, failed int) error {
	query := `UPDATE broadcasts SET sent_count = $2, fail_count = $3 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, sent, failed); err != nil {
		return fmt.Errorf("ошибка записи итогов рассылки: %w", err)
	}
	return nil
}

// ClaimReward отмечает выполнение задания и начисляет награду.
// Уникальный индекс по (broadcast_id, user_id) гарантирует, что награда
// за одну рассылку начисляется пользователю не больше одного раза.
// Повторное нажатие — common.ErrRewardAlreadyClaimed.
func (r *Repository) ClaimReward(ctx context.Context, broadcastID, userID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var reward int64
	err = tx.QueryRow(ctx,
		`SELECT reward FROM broadcasts WHERE id = $1`, broadcastID,
	).Scan(&reward)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("id=%d: %w", broadcastID, common.ErrBroadcastNotFound)
		}
		return 0, fmt.Errorf("ошибка чтения награды: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO broadcast_completions (broadcast_id, user_id) VALUES ($1, $2)
	`, broadcastID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, common.ErrRewardAlreadyClaimed
		}
		return 0, fmt.Errorf("ошибка отметки выполнения: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET money_balance = money_balance + $2,
		    tasks_completed = tasks_completed + 1,
		    updated_at = NOW()
		WHERE user_id = $1
	`, userID, reward)
	if err != nil {
		return 0, fmt.Errorf("ошибка начисления награды: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return reward, nil
}
