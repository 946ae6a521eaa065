// Package comments — repository.go выполняет зачёт фото в одной транзакции БД:
// фиксация хеша, начисление комментария, запись в журнал и пересчёт блокировки
// либо происходят все вместе, либо не происходят вовсе.
package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rudeps/RudepsBot/internal/common"
)

// Код PostgreSQL для нарушения уникальности (повторный хеш фото).
const pgUniqueViolation = "23505"

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Credit засчитывает фото пользователю: записывает хеш в used_photos,
// прибавляет один комментарий и счётчик за всё время, пишет строку в журнал
// и пересчитывает is_blocked относительно порога.
//
// Если хеш уже встречался (у кого угодно) — common.ErrDuplicatePhoto,
// и ничего не начисляется.
func (r *Repository) Credit(ctx context.Context, userID int64, photoHash string, threshold int64) (*CreditResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Уникальный индекс по photo_hash ловит дубликаты и при гонке
	// двух одновременных отправок одного файла.
	_, err = tx.Exec(ctx, `
		INSERT INTO used_photos (photo_hash, user_id) VALUES ($1, $2)
	`, photoHash, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrDuplicatePhoto
		}
		return nil, fmt.Errorf("ошибка фиксации хеша фото: %w", err)
	}

	var newBalance int64
	var blocked bool
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET comment_balance = comment_balance + 1,
		    total_comments_ever = total_comments_ever + 1,
		    is_blocked = comment_balance + 1 < $2,
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING comment_balance, is_blocked
	`, userID, threshold).Scan(&newBalance, &blocked)
	if err != nil {
		return nil, fmt.Errorf("ошибка начисления комментария: %w", err)
	}

	week, month := PeriodOf(common.GetMoscowTime())
	_, err = tx.Exec(ctx, `
		INSERT INTO comments_log (user_id, photo_hash, iso_week, month)
		VALUES ($1, $2, $3, $4)
	`, userID, photoHash, week, month)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи в журнал начислений: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	remaining := threshold - newBalance
	if remaining < 0 {
		remaining = 0
	}
	return &CreditResult{
		NewBalance: newBalance,
		Blocked:    blocked,
		Remaining:  remaining,
	}, nil
}

// CountForPeriods возвращает число начислений за указанные неделю и месяц
// (для сводной статистики в админке).
func (r *Repository) CountForPeriods(ctx context.Context, week, month int) (weekCount, monthCount int64, err error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE iso_week = $1),
		       COUNT(*) FILTER (WHERE month = $2)
		FROM comments_log
		WHERE created_at > NOW() - INTERVAL '1 year'
	`
	if err := r.db.QueryRow(ctx, query, week, month).Scan(&weekCount, &monthCount); err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта начислений за период: %w", err)
	}
	return weekCount, monthCount, nil
}
