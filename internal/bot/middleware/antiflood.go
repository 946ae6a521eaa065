package middleware

import (
	"sync"
	"time"
)

// Antiflood ограничивает частоту отправки фото: не чаще одного раза
// в interval на пользователя.
//
// Важно: отметка времени ставится только при разрешённой попытке.
// Отклонённая попытка таймер НЕ сбрасывает, иначе флудящий пользователь
// никогда не дождался бы разрешения.
type Antiflood struct {
	mu       sync.Mutex
	last     map[int64]time.Time
	interval time.Duration

	// now подменяется в тестах
	now func() time.Time
}

func NewAntiflood(interval time.Duration) *Antiflood {
	return &Antiflood{
		last:     make(map[int64]time.Time),
		interval: interval,
		now:      time.Now,
	}
}

// Allow проверяет, можно ли пользователю отправить фото сейчас.
// При отказе возвращает, сколько секунд осталось ждать (округление вверх).
func (a *Antiflood) Allow(userID int64) (bool, int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	last, ok := a.last[userID]
	if ok {
		elapsed := now.Sub(last)
		if elapsed < a.interval {
			wait := int((a.interval - elapsed + time.Second - 1) / time.Second)
			return false, wait
		}
	}

	a.last[userID] = now
	return true, 0
}
