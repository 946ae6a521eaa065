// Package users — repository.go отвечает за все операции с таблицей users в БД.
// Каждая функция выполняет один SQL-запрос (или одну транзакцию) и возвращает
// результат или ошибку.
package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rudeps/RudepsBot/internal/common"
)

const userColumns = `user_id, username, first_name, last_name,
	       comment_balance, money_balance, is_blocked, is_permanently_banned,
	       tasks_completed, total_comments_ever, rules_accepted,
	       created_at, updated_at, last_activity`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.UserID, &u.Username, &u.FirstName, &u.LastName,
		&u.CommentBalance, &u.MoneyBalance, &u.IsBlocked, &u.IsPermanentlyBanned,
		&u.TasksCompleted, &u.TotalCommentsEver, &u.RulesAccepted,
		&u.CreatedAt, &u.UpdatedAt, &u.LastActivity,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert добавляет пользователя или обновляет его имя/username/активность.
// Балансы и флаги блокировки при конфликте НЕ трогаются.
// Новый пользователь сразу заблокирован: комментариев у него ноль.
func (r *Repository) Upsert(ctx context.Context, userID int64, info UpdateInfo) (*User, error) {
	query := `
		INSERT INTO users (user_id, username, first_name, last_name, is_blocked, last_activity)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    last_activity = NOW(),
		    updated_at = NOW()
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, userID, info.Username, info.FirstName, info.LastName))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания/обновления пользователя: %w", err)
	}
	return u, nil
}

// GetByUserID: если не найден — common.ErrUserNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения пользователя (user_id=%d): %w", userID, err)
	}
	return u, nil
}

// Search ищет пользователей по ID, @username или имени.
// Числовой запрос ищет точное совпадение по user_id, текстовый — подстроку
// в username/first_name без учёта регистра.
func (r *Repository) Search(ctx context.Context, q string) ([]*User, error) {
	q = strings.TrimSpace(strings.TrimPrefix(q, "@"))
	if q == "" {
		return nil, nil
	}

	if id, err := strconv.ParseInt(q, 10, 64); err == nil {
		u, err := r.GetByUserID(ctx, id)
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []*User{u}, nil
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username ILIKE '%' || $1 || '%' OR first_name ILIKE '%' || $1 || '%'
		ORDER BY last_activity DESC
		LIMIT 10
	`
	return r.queryUsers(ctx, query, q)
}

// SetRulesAccepted отмечает, что пользователь принял правила.
func (r *Repository) SetRulesAccepted(ctx context.Context, userID int64) error {
	query := `UPDATE users SET rules_accepted = TRUE, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка сохранения согласия с правилами: %w", err)
	}
	return nil
}

// SetPermanentBan навсегда банит пользователя. Операция необратима:
// обратного метода нет намеренно.
func (r *Repository) SetPermanentBan(ctx context.Context, userID int64) (*User, error) {
	query := `
		UPDATE users
		SET is_permanently_banned = TRUE, is_blocked = TRUE, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка бана пользователя (user_id=%d): %w", userID, err)
	}
	return u, nil
}

// AdjustCommentBalance меняет баланс комментариев на delta (может быть
// отрицательной) и всегда пересчитывает is_blocked относительно порога.
// Баланс не уходит в минус.
func (r *Repository) AdjustCommentBalance(ctx context.Context, userID, delta, threshold int64) (*User, error) {
	query := `
		UPDATE users
		SET comment_balance = GREATEST(0, comment_balance + $2),
		    is_blocked = GREATEST(0, comment_balance + $2) < $3,
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, userID, delta, threshold))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка изменения баланса комментариев: %w", err)
	}
	return u, nil
}

// AdjustMoneyBalance меняет денежный баланс на delta.
func (r *Repository) AdjustMoneyBalance(ctx context.Context, userID, delta int64) (*User, error) {
	query := `
		UPDATE users
		SET money_balance = money_balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, userID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка изменения денежного баланса: %w", err)
	}
	return u, nil
}

// WeeklyDecrement списывает decrement комментариев у всех, кроме вечно
// забаненных, и пересчитывает is_blocked. Возвращает старый и новый баланс
// каждого затронутого пользователя: по ним сервис находит тех, кто потерял
// доступ именно этим списанием.
//
// Всё в одном UPDATE с CTE: никакой гонки между чтением старого баланса
// и записью нового.
func (r *Repository) WeeklyDecrement(ctx context.Context, decrement, threshold int64) ([]Decayed, error) {
	query := `
		WITH before AS (
			SELECT user_id, comment_balance
			FROM users
			WHERE is_permanently_banned = FALSE
			FOR UPDATE
		)
		UPDATE users u
		SET comment_balance = GREATEST(0, b.comment_balance - $1),
		    is_blocked = GREATEST(0, b.comment_balance - $1) < $2,
		    updated_at = NOW()
		FROM before b
		WHERE u.user_id = b.user_id
		RETURNING u.user_id, b.comment_balance, u.comment_balance
	`
	rows, err := r.db.Query(ctx, query, decrement, threshold)
	if err != nil {
		return nil, fmt.Errorf("ошибка еженедельного списания: %w", err)
	}
	defer rows.Close()

	var out []Decayed
	for rows.Next() {
		var d Decayed
		if err := rows.Scan(&d.UserID, &d.OldBalance, &d.NewBalance); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// audienceBase — общий фильтр получателей: вечно забаненные и не принявшие
// правила не попадают ни в одну категорию.
const audienceBase = `SELECT user_id FROM users
	WHERE is_permanently_banned = FALSE AND rules_accepted = TRUE`

// audienceQuery собирает запрос получателей рассылки для категории.
// Второй результат сообщает, подставляется ли в запрос число получателей.
func audienceQuery(audience Audience) (query string, limited bool, err error) {
	switch audience {
	case AudienceAll:
		return audienceBase, false, nil
	case AudienceTopActive:
		return audienceBase + ` ORDER BY tasks_completed DESC, last_activity DESC LIMIT $1`, true, nil
	case AudienceTopInactive:
		return audienceBase + ` ORDER BY tasks_completed ASC, last_activity ASC LIMIT $1`, true, nil
	case AudienceRandom:
		return audienceBase + ` ORDER BY RANDOM() LIMIT $1`, true, nil
	case AudienceBlocked:
		return audienceBase + ` AND is_blocked = TRUE`, false, nil
	case AudienceUnblocked:
		return audienceBase + ` AND is_blocked = FALSE`, false, nil
	}
	return "", false, fmt.Errorf("неизвестная категория получателей: %q", audience)
}

// AudienceIDs возвращает ID получателей рассылки для выбранной категории.
// Для топов и случайной выборки count задаёт размер выборки.
func (r *Repository) AudienceIDs(ctx context.Context, audience Audience, count int) ([]int64, error) {
	query, limited, err := audienceQuery(audience)
	if err != nil {
		return nil, err
	}

	var args []interface{}
	if limited {
		if count <= 0 {
			return nil, fmt.Errorf("число получателей должно быть > 0, получено %d", count)
		}
		args = append(args, count)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки получателей: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return ids, nil
}

// AllUserIDs возвращает ID всех пользователей, включая забаненных.
// Используется для экспорта базы в файл.
func (r *Repository) AllUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка экспорта пользователей: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return ids, nil
}

// GetStats собирает сводную статистику по пользователям.
func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_blocked),
		       COUNT(*) FILTER (WHERE is_permanently_banned),
		       COALESCE(SUM(comment_balance), 0),
		       COALESCE(SUM(money_balance), 0),
		       COALESCE(SUM(tasks_completed), 0),
		       COUNT(*) FILTER (WHERE last_activity > NOW() - INTERVAL '7 days')
		FROM users
	`
	var s Stats
	err := r.db.QueryRow(ctx, query).Scan(
		&s.TotalUsers, &s.BlockedUsers, &s.BannedUsers,
		&s.TotalComments, &s.TotalMoney, &s.TotalTasksDone, &s.ActiveLastWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка сбора статистики: %w", err)
	}
	return &s, nil
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}
