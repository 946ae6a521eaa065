package middleware

import (
	"testing"
	"time"
)

func TestAntiflood(t *testing.T) {
	a := NewAntiflood(10 * time.Second)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	const userID = int64(1)

	ok, _ := a.Allow(userID)
	if !ok {
		t.Fatal("первая попытка должна пройти")
	}

	// Сразу вторая — отказ, ждать 10 секунд
	ok, wait := a.Allow(userID)
	if ok {
		t.Fatal("повторная попытка без паузы должна быть отклонена")
	}
	if wait != 10 {
		t.Errorf("wait = %d, want 10", wait)
	}

	// Через 4 секунды — отказ, ждать 6.
	// Отклонённая попытка выше таймер НЕ сбросила.
	now = now.Add(4 * time.Second)
	ok, wait = a.Allow(userID)
	if ok {
		t.Fatal("попытка через 4с должна быть отклонена")
	}
	if wait != 6 {
		t.Errorf("wait = %d, want 6", wait)
	}

	// Через 10 секунд от первой попытки — разрешено
	now = now.Add(6 * time.Second)
	ok, _ = a.Allow(userID)
	if !ok {
		t.Fatal("попытка спустя полный интервал должна пройти")
	}

	// Другой пользователь лимитируется независимо
	ok, _ = a.Allow(int64(2))
	if !ok {
		t.Fatal("другой пользователь не должен упираться в чужой таймер")
	}
}

func TestAntifloodFractionalWait(t *testing.T) {
	a := NewAntiflood(10 * time.Second)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	a.Allow(1)
	now = now.Add(9500 * time.Millisecond)
	ok, wait := a.Allow(1)
	if ok {
		t.Fatal("9.5с < 10с, попытка должна быть отклонена")
	}
	// Остаток 0.5с округляется вверх до 1
	if wait != 1 {
		t.Errorf("wait = %d, want 1", wait)
	}
}
