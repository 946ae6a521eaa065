package withdraw

import (
	"strings"
	"testing"
)

func TestTicketText(t *testing.T) {
	w := &Withdrawal{
		ID:      42,
		UserID:  777,
		Method:  MethodCard,
		Amount:  150,
		Details: "1234567890123456",
	}
	got := ticketText(w, "@ivan")

	want := "💸 Заявка на вывод №42\nОт: @ivan (ID: 777)\nСумма: 150 рублей\nСпособ: на карту\nРеквизиты: 1234567890123456"
	if got != want {
		t.Errorf("ticketText() =\n%q\nwant\n%q", got, want)
	}
}

func TestTicketKeyboard(t *testing.T) {
	kb := ticketKeyboard(42)
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("ticketKeyboard: ожидался один ряд из двух кнопок, получено %v", kb.InlineKeyboard)
	}
	approve := kb.InlineKeyboard[0][0]
	reject := kb.InlineKeyboard[0][1]
	if approve.CallbackData == nil || !strings.HasSuffix(*approve.CallbackData, "42") ||
		!strings.HasPrefix(*approve.CallbackData, CallbackApprove) {
		t.Errorf("кнопка одобрения: неверный callback %v", approve.CallbackData)
	}
	if reject.CallbackData == nil || !strings.HasPrefix(*reject.CallbackData, CallbackReject) {
		t.Errorf("кнопка отклонения: неверный callback %v", reject.CallbackData)
	}
}
