// Package users управляет пользователями бота: регистрацией, балансами
// комментариев и денег, блокировкой доступа и вечным баном.
// models.go описывает структуры данных для работы с таблицей users.
package users

import "time"

// User представляет пользователя бота в базе данных.
// Запись создаётся при первом обращении к боту в личных сообщениях.
type User struct {
	UserID              int64     `db:"user_id"`               // Telegram user ID (первичный ключ)
	Username            string    `db:"username"`              // @username (может быть пустым)
	FirstName           string    `db:"first_name"`            // Имя пользователя
	LastName            string    `db:"last_name"`             // Фамилия (может быть пустой)
	CommentBalance      int64     `db:"comment_balance"`       // Заработанные комментарии, тают по понедельникам
	MoneyBalance        int64     `db:"money_balance"`         // Денежный баланс в рублях
	IsBlocked           bool      `db:"is_blocked"`            // true, пока comment_balance < порога
	IsPermanentlyBanned bool      `db:"is_permanently_banned"` // Вечный бан за обман (необратим)
	TasksCompleted      int       `db:"tasks_completed"`       // Сколько заданий из рассылок выполнено
	TotalCommentsEver   int64     `db:"total_comments_ever"`   // Засчитано фото за всё время, только растёт
	RulesAccepted       bool      `db:"rules_accepted"`        // Принял ли правила
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
	LastActivity        time.Time `db:"last_activity"` // Последнее сообщение боту
}

// UpdateInfo содержит данные для обновления информации о пользователе.
// Имя и username могли измениться между визитами.
type UpdateInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

// Stats — сводная статистика по всем пользователям для админки.
type Stats struct {
	TotalUsers     int64
	BlockedUsers   int64
	BannedUsers    int64
	TotalComments  int64
	TotalMoney     int64
	TotalTasksDone int64
	ActiveLastWeek int64
}

// Decayed описывает результат еженедельного списания для одного пользователя.
type Decayed struct {
	UserID     int64
	OldBalance int64
	NewBalance int64
}

// Audience — категория получателей рассылки.
type Audience string

const (
	AudienceAll         Audience = "all"
	AudienceTopActive   Audience = "top_active"
	AudienceTopInactive Audience = "top_inactive"
	AudienceRandom      Audience = "random"
	AudienceBlocked     Audience = "blocked"
	AudienceUnblocked   Audience = "unblocked"
)

// ParseAudience разбирает строку категории получателей.
func ParseAudience(s string) (Audience, bool) {
	switch Audience(s) {
	case AudienceAll, AudienceTopActive, AudienceTopInactive,
		AudienceRandom, AudienceBlocked, AudienceUnblocked:
		return Audience(s), true
	}
	return "", false
}

// AudienceLimited сообщает, нужно ли для категории число получателей.
// Топы и случайная выборка ограничиваются числом, остальные берут всех.
func AudienceLimited(a Audience) bool {
	switch a {
	case AudienceTopActive, AudienceTopInactive, AudienceRandom:
		return true
	}
	return false
}
