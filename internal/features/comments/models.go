// Package comments реализует приём фото-доказательств: пользователь
// присылает скриншот своего комментария, бот начисляет ему +1 комментарий
// и пересылает фото админам на проверку.
// models.go описывает структуры данных таблиц used_photos и comments_log.
package comments

import "time"

// UsedPhoto — запись об использованном фото. Хеш уникален навсегда:
// одно и то же фото второй раз не засчитывается никому.
type UsedPhoto struct {
	PhotoHash string    `db:"photo_hash"` // SHA-256 содержимого файла (hex)
	UserID    int64     `db:"user_id"`    // Кто прислал
	UsedAt    time.Time `db:"used_at"`
}

// LogEntry — строка журнала начислений комментариев.
// Номер ISO-недели и месяца пишутся при начислении, чтобы статистика
// за период считалась простым COUNT по журналу.
type LogEntry struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	PhotoHash string    `db:"photo_hash"`
	ISOWeek   int       `db:"iso_week"`
	Month     int       `db:"month"`
	CreatedAt time.Time `db:"created_at"`
}

// PeriodOf возвращает номер ISO-недели и месяца для момента времени.
func PeriodOf(t time.Time) (week, month int) {
	_, week = t.ISOWeek()
	return week, int(t.Month())
}

// CreditResult — итог зачёта одного фото.
type CreditResult struct {
	NewBalance int64 // Баланс комментариев после начисления
	Blocked    bool  // Остался ли доступ закрытым
	Remaining  int64 // Сколько ещё не хватает до открытия доступа
}
