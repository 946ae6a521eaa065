// Package withdraw — repository.go выполняет операции с таблицами
// withdrawals и withdrawal_tickets. Решение по заявке и движение денег
// выполняются в одной транзакции.
package withdraw

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rudeps/RudepsBot/internal/common"
)

const withdrawalColumns = `id, user_id, method, amount, details, status,
	       COALESCE(reject_reason, ''), COALESCE(admin_id, 0), created_at, updated_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanWithdrawal(row pgx.Row) (*Withdrawal, error) {
	var w Withdrawal
	err := row.Scan(
		&w.ID, &w.UserID, &w.Method, &w.Amount, &w.Details, &w.Status,
		&w.RejectReason, &w.AdminID, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create регистрирует новую заявку на вывод со статусом pending.
func (r *Repository) Create(ctx context.Context, userID int64, method Method, amount int64, details string) (*Withdrawal, error) {
	query := `
		INSERT INTO withdrawals (user_id, method, amount, details, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, userID, method, amount, details))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания заявки на вывод: %w", err)
	}
	return w, nil
}

// GetByID возвращает заявку по ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("id=%d: %w", id, common.ErrWithdrawalNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения заявки (id=%d): %w", id, err)
	}
	return w, nil
}

// Approve одобряет заявку и списывает деньги с баланса пользователя.
// Условие status='pending' защищает от двух админов, нажавших кнопку
// одновременно: второй получит ErrWithdrawalAlreadyClosed.
func (r *Repository) Approve(ctx context.Context, id, adminID int64) (*Withdrawal, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE withdrawals
		SET status = 'approved', admin_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(tx.QueryRow(ctx, query, id, adminID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.closedOrMissing(ctx, id)
		}
		return nil, fmt.Errorf("ошибка одобрения заявки (id=%d): %w", id, err)
	}

	// Деньги списываются только сейчас, при одобрении. Баланс на этот
	// момент не перепроверяется и может уйти в минус, если пользователь
	// успел подать вторую заявку на ту же сумму.
	_, err = tx.Exec(ctx, `
		UPDATE users SET money_balance = money_balance - $2, updated_at = NOW()
		WHERE user_id = $1
	`, w.UserID, w.Amount)
	if err != nil {
		return nil, fmt.Errorf("ошибка списания средств: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return w, nil
}

// Reject отклоняет заявку с причиной. Деньги не двигаются: они и не
// списывались при создании заявки.
func (r *Repository) Reject(ctx context.Context, id, adminID int64, reason string) (*Withdrawal, error) {
	query := `
		UPDATE withdrawals
		SET status = 'rejected', admin_id = $2, reject_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, id, adminID, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.closedOrMissing(ctx, id)
		}
		return nil, fmt.Errorf("ошибка отклонения заявки (id=%d): %w", id, err)
	}
	return w, nil
}

// closedOrMissing различает «заявки нет» и «заявку уже обработали».
func (r *Repository) closedOrMissing(ctx context.Context, id int64) error {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM withdrawals WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("ошибка проверки заявки (id=%d): %w", id, err)
	}
	if exists {
		return common.ErrWithdrawalAlreadyClosed
	}
	return common.ErrWithdrawalNotFound
}

// AddTicket запоминает сообщение-заявку, отправленное админу.
// Повторная отправка того же тикета (например, из списка ожидающих заявок)
// перезаписывает message_id: актуально последнее сообщение с кнопками.
func (r *Repository) AddTicket(ctx context.Context, withdrawalID, adminID int64, messageID int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO withdrawal_tickets (withdrawal_id, admin_id, message_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (withdrawal_id, admin_id) DO UPDATE SET message_id = EXCLUDED.message_id
	`, withdrawalID, adminID, messageID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения тикета: %w", err)
	}
	return nil
}

// GetTickets возвращает все сообщения-заявки по выводу.
func (r *Repository) GetTickets(ctx context.Context, withdrawalID int64) ([]Ticket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT withdrawal_id, admin_id, message_id
		FROM withdrawal_tickets
		WHERE withdrawal_id = $1
	`, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения тикетов: %w", err)
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.WithdrawalID, &t.AdminID, &t.MessageID); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// ListPending возвращает все необработанные заявки, старые первыми.
func (r *Repository) ListPending(ctx context.Context) ([]*Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + `
		FROM withdrawals WHERE status = 'pending' ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ожидающих заявок: %w", err)
	}
	defer rows.Close()

	var out []*Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// CountPending возвращает число необработанных заявок (для статистики).
func (r *Repository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM withdrawals WHERE status = 'pending'`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}
	return n, nil
}
