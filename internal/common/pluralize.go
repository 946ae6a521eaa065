// Package common — pluralize.go содержит вспомогательные функции
// для форматирования сумм со знаком и чисел с разделителями.
// Основная логика плюрализации реализована в helpers.go.
package common

import "fmt"

// FormatMoneyDelta создаёт строку вида "+100 рублей" или "-50 рублей".
// Знак «+» или «-» добавляется автоматически.
//
// Примеры:
//
//	FormatMoneyDelta(100)  → "+100 рублей"
//	FormatMoneyDelta(-50)  → "-50 рублей"
//	FormatMoneyDelta(1)    → "+1 рубль"
func FormatMoneyDelta(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, PluralizeRubles(amount))
	}
	return fmt.Sprintf("%d %s", amount, PluralizeRubles(amount))
}

// FormatCommentsDelta создаёт строку вида "+10 комментариев" или "-3 комментария".
func FormatCommentsDelta(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, PluralizeComments(amount))
	}
	return fmt.Sprintf("%d %s", amount, PluralizeComments(amount))
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	// Простая реализация для чисел до миллиарда
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	// Рекурсивно добавляем разделители
	rest := n / 1000
	last := n % 1000

	if rest > 0 {
		return fmt.Sprintf("%s %03d", FormatNumber(rest), last)
	}
	return fmt.Sprintf("%d", last)
}
