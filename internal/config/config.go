// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	AdminIDsRaw      string `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs         []int64 `envconfig:"-"` // заполним вручную
	// Название бота — его должны упоминать в комментариях на скриншотах.
	BotName string `envconfig:"BOT_NAME" default:"RudepsBot"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"rudeps_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`
	// Таймаут одного запроса к Telegram API (секунды). Без него зависший
	// send останавливает циклы рассылки и уведомлений навсегда.
	BotRequestTimeoutSeconds int `envconfig:"BOT_REQUEST_TIMEOUT_SECONDS" default:"30"`

	// --- Комментарии ---
	// Порог доступа: баланс >= порога — функции бота открыты.
	CommentThreshold int `envconfig:"COMMENT_THRESHOLD" default:"10"`
	// Еженедельное списание комментариев (понедельник 00:00).
	WeeklyCommentDecrement int `envconfig:"WEEKLY_COMMENT_DECREMENT" default:"10"`
	// Антифлуд: минимальный интервал между попытками отправки фото (секунды).
	AntifloodSeconds int `envconfig:"ANTIFLOOD_SECONDS" default:"10"`
	// Максимальный размер фото в мегабайтах.
	MaxPhotoSizeMB int `envconfig:"MAX_PHOTO_SIZE_MB" default:"20"`

	// --- Вывод средств ---
	MinWithdrawCard  int64 `envconfig:"MIN_WITHDRAW_CARD" default:"150"`
	MinWithdrawPhone int64 `envconfig:"MIN_WITHDRAW_PHONE" default:"100"`

	// --- Рассылки ---
	// Пауза между отправками, чтобы не упереться в лимиты Telegram API.
	BroadcastDelay time.Duration `envconfig:"BROADCAST_DELAY" default:"50ms"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// MaxPhotoSize возвращает максимальный размер фото в байтах.
func (c *Config) MaxPhotoSize() int {
	return c.MaxPhotoSizeMB * 1024 * 1024
}

// MinWithdraw возвращает нижнюю из двух минимальных сумм вывода.
// Пока на балансе меньше — начинать заявку бессмысленно.
func (c *Config) MinWithdraw() int64 {
	if c.MinWithdrawPhone < c.MinWithdrawCard {
		return c.MinWithdrawPhone
	}
	return c.MinWithdrawCard
}

// IsAdmin проверяет, входит ли пользователь в статический список админов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("ADMIN_IDS не задан")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.BotRequestTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_REQUEST_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.CommentThreshold <= 0 {
		return fmt.Errorf("COMMENT_THRESHOLD должен быть > 0")
	}
	if c.WeeklyCommentDecrement < 0 {
		return fmt.Errorf("WEEKLY_COMMENT_DECREMENT не может быть отрицательным")
	}
	if c.MinWithdrawCard <= 0 || c.MinWithdrawPhone <= 0 {
		return fmt.Errorf("минимальные суммы вывода должны быть > 0")
	}
	if c.MaxPhotoSizeMB <= 0 {
		return fmt.Errorf("MAX_PHOTO_SIZE_MB должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
