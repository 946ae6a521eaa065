// Package admin реализует админ-панель: статистику, управление балансами,
// экспорт базы и вечный бан. Доступ определяется списком ADMIN_IDS из
// конфигурации, без паролей.
// callbacks.go описывает формат callback-данных кнопок управления балансом.
package admin

import (
	"fmt"
	"strconv"
	"strings"
)

// BalanceKind — какой баланс правит админ.
type BalanceKind string

const (
	KindComments BalanceKind = "comments"
	KindMoney    BalanceKind = "money"
)

// BalanceOp — направление правки.
type BalanceOp string

const (
	OpAdd BalanceOp = "add"
	OpSub BalanceOp = "sub"
)

// balancePrefix — префикс callback-данных кнопок правки баланса.
const balancePrefix = "bal_"

// BuildBalanceCallback собирает callback-данные кнопки правки баланса:
// bal_<kind>_<op>_<userID>.
func BuildBalanceCallback(kind BalanceKind, op BalanceOp, userID int64) string {
	return fmt.Sprintf("%s%s_%s_%d", balancePrefix, kind, op, userID)
}

// ParseBalanceCallback разбирает callback-данные кнопки правки баланса.
func ParseBalanceCallback(data string) (kind BalanceKind, op BalanceOp, userID int64, ok bool) {
	rest, found := strings.CutPrefix(data, balancePrefix)
	if !found {
		return "", "", 0, false
	}
	parts := strings.Split(rest, "_")
	if len(parts) != 3 {
		return "", "", 0, false
	}

	kind = BalanceKind(parts[0])
	if kind != KindComments && kind != KindMoney {
		return "", "", 0, false
	}
	op = BalanceOp(parts[1])
	if op != OpAdd && op != OpSub {
		return "", "", 0, false
	}
	userID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", "", 0, false
	}
	return kind, op, userID, true
}

// IsBalanceCallback сообщает, относится ли callback к правке баланса.
func IsBalanceCallback(data string) bool {
	return strings.HasPrefix(data, balancePrefix)
}
