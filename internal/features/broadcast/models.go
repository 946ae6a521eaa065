// Package broadcast реализует рассылки с заданиями: админ выбирает
// аудиторию, пишет текст, прикладывает ссылку и назначает награду,
// пользователи выполняют задание и получают деньги на баланс.
// models.go описывает структуры данных и формат callback-кнопок.
package broadcast

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rudeps/RudepsBot/internal/features/users"
)

// Broadcast представляет одну рассылку.
type Broadcast struct {
	ID          int64          `db:"id"`
	AdminID     int64          `db:"admin_id"`
	Audience    users.Audience `db:"audience"`
	TargetCount int            `db:"target_count"` // Запрошенное число получателей; 0 — без ограничения
	Text        string         `db:"text"`
	Link        string         `db:"link"`   // Пустая строка — без ссылки
	Reward      int64          `db:"reward"` // Награда в рублях, 0 — без награды
	SentCount   int            `db:"sent_count"`
	FailCount   int            `db:"fail_count"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Completion — отметка о выполнении задания пользователем.
// Пара (broadcast_id, user_id) уникальна: награда начисляется один раз.
type Completion struct {
	BroadcastID int64     `db:"broadcast_id"`
	UserID      int64     `db:"user_id"`
	CompletedAt time.Time `db:"completed_at"`
}

// completePrefix — префикс callback-данных кнопки «Выполнил».
const completePrefix = "complete_"

// BuildCompleteCallback собирает callback-данные кнопки «Выполнил»:
// complete_<broadcastID>_<reward>.
func BuildCompleteCallback(broadcastID, reward int64) string {
	return fmt.Sprintf("%s%d_%d", completePrefix, broadcastID, reward)
}

// ParseCompleteCallback разбирает callback-данные кнопки «Выполнил».
// Награда из callback используется только для текста ответа,
// начисление идёт по сумме из БД.
func ParseCompleteCallback(data string) (broadcastID, reward int64, ok bool) {
	rest, found := strings.CutPrefix(data, completePrefix)
	if !found {
		return 0, 0, false
	}
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	broadcastID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	reward, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return broadcastID, reward, true
}

// IsCompleteCallback сообщает, относится ли callback к кнопке «Выполнил».
func IsCompleteCallback(data string) bool {
	return strings.HasPrefix(data, completePrefix)
}
