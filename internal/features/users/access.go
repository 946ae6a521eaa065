// Package users — access.go содержит чистую логику доступа и еженедельного
// списания. Вынесена отдельно от репозитория, чтобы тестировать без БД.
package users

import "github.com/rudeps/RudepsBot/internal/common"

// Gate проверяет, можно ли вообще обрабатывать обращение пользователя.
// Вечный бан перекрывает всё: любое обращение получает отказ.
func Gate(u *User) error {
	if u.IsPermanentlyBanned {
		return common.ErrPermanentlyBanned
	}
	return nil
}

// Blocked сообщает, закрыт ли доступ к функциям бота при данном балансе.
// Доступ открыт, когда баланс комментариев не меньше порога.
func Blocked(balance, threshold int64) bool {
	return balance < threshold
}

// Remaining возвращает, сколько комментариев не хватает до открытия доступа.
// Если доступ уже открыт — ноль.
func Remaining(balance, threshold int64) int64 {
	if balance >= threshold {
		return 0
	}
	return threshold - balance
}

// ApplyDecay возвращает баланс после еженедельного списания.
// Баланс не уходит в минус.
func ApplyDecay(balance, decrement int64) int64 {
	balance -= decrement
	if balance < 0 {
		return 0
	}
	return balance
}

// NewlyBlocked сообщает, потерял ли пользователь доступ именно этим списанием:
// до списания доступ был открыт, после — закрыт. Только такие пользователи
// получают уведомление, остальные заблокированные не трогаются.
func NewlyBlocked(oldBalance, newBalance, threshold int64) bool {
	return oldBalance >= threshold && newBalance < threshold
}
