// Package withdraw реализует вывод заработанных денег: многошаговую заявку
// пользователя и её одобрение/отклонение админом.
// models.go описывает структуры данных и валидацию реквизитов.
package withdraw

import (
	"strings"
	"time"
	"unicode"
)

// Method — способ вывода средств.
type Method string

const (
	MethodCard  Method = "card"  // На банковскую карту
	MethodPhone Method = "phone" // На телефон (СБП)
)

// Status — состояние заявки на вывод.
type Status string

const (
	StatusPending  Status = "pending"  // Ждёт решения админа
	StatusApproved Status = "approved" // Выплачена
	StatusRejected Status = "rejected" // Отклонена с причиной
)

// Withdrawal представляет заявку на вывод средств.
type Withdrawal struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Method       Method    `db:"method"`
	Amount       int64     `db:"amount"`
	Details      string    `db:"details"` // Номер карты или телефона
	Status       Status    `db:"status"`
	RejectReason string    `db:"reject_reason"` // Заполняется при отклонении
	AdminID      int64     `db:"admin_id"`      // Кто принял решение
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Ticket — сообщение-заявка, отправленное админу. Хранится, чтобы
// при отклонении убрать заявку из чатов остальных админов.
type Ticket struct {
	WithdrawalID int64 `db:"withdrawal_id"`
	AdminID      int64 `db:"admin_id"`
	MessageID    int   `db:"message_id"`
}

// MethodTitle возвращает человекочитаемое название способа вывода.
func MethodTitle(m Method) string {
	switch m {
	case MethodCard:
		return "на карту"
	case MethodPhone:
		return "на телефон"
	}
	return string(m)
}

// NormalizeCard выбрасывает из строки всё, кроме цифр, и проверяет,
// что осталось ровно 16 цифр. Пробелы и дефисы в номере карты допустимы.
func NormalizeCard(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	return digits, len(digits) == 16
}

// ValidPhone проверяет, что в строке есть хотя бы одна цифра.
// Формат телефона намеренно не навязывается: "+7 900...", "8900..."
// и короткие номера банков одинаково допустимы.
func ValidPhone(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
