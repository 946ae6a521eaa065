// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с временем.
package common

import (
	"fmt"
	"math"
	"time"
)

// PluralizeComments возвращает правильную форму слова «комментарий» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "комментарий" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "комментария" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "комментариев" (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	PluralizeComments(1)  → "комментарий"
//	PluralizeComments(3)  → "комментария"
//	PluralizeComments(5)  → "комментариев"
//	PluralizeComments(11) → "комментариев"
//	PluralizeComments(21) → "комментарий"
func PluralizeComments(n int64) string {
	// Берём абсолютное значение для отрицательных чисел
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "комментарий"
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "комментария"
	}

	// Большое множественное: 0, 5-20, 25-30, 100, ...
	return "комментариев"
}

// PluralizeRubles возвращает правильную форму слова «рубль» для числа n.
//
// Правила:
//   - 1, 21, 31 → "рубль"
//   - 2-4, 22-24 → "рубля"
//   - 5-20, 25-30 → "рублей"
func PluralizeRubles(n int64) string {
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "рубль"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "рубля"
	}
	return "рублей"
}

// FormatComments форматирует баланс комментариев в читабельную строку.
// Пример: FormatComments(7) → "7 комментариев"
func FormatComments(balance int64) string {
	return fmt.Sprintf("%d %s", balance, PluralizeComments(balance))
}

// FormatMoney форматирует денежный баланс.
// Пример: FormatMoney(150) → "150 рублей"
func FormatMoney(balance int64) string {
	return fmt.Sprintf("%d %s", balance, PluralizeRubles(balance))
}

// GetMoscowTime возвращает текущее время в часовом поясе Москвы (Europe/Moscow).
// Используется для еженедельного списания комментариев в полночь понедельника.
func GetMoscowTime() time.Time {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		// Если не удалось загрузить — используем UTC+3 вручную
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return time.Now().In(loc)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
// Используется для отображения дат в заявках и статистике.
func FormatDateTime(t time.Time) string {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
