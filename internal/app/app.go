// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики
// и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/bot"
	"github.com/rudeps/RudepsBot/internal/bot/middleware"
	"github.com/rudeps/RudepsBot/internal/config"
	"github.com/rudeps/RudepsBot/internal/db/postgres"
	"github.com/rudeps/RudepsBot/internal/features/admin"
	"github.com/rudeps/RudepsBot/internal/features/broadcast"
	"github.com/rudeps/RudepsBot/internal/features/comments"
	"github.com/rudeps/RudepsBot/internal/features/users"
	"github.com/rudeps/RudepsBot/internal/features/withdraw"
	"github.com/rudeps/RudepsBot/internal/jobs"
	"github.com/rudeps/RudepsBot/internal/session"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	// Таймаут клиента должен перекрывать long polling, иначе GetUpdates
	// будет обрываться раньше времени.
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.BotUpdateTimeoutSeconds+cfg.BotRequestTimeoutSeconds) * time.Second,
	}
	botAPI, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramBotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	userRepo := users.NewRepository(pool)
	commentsRepo := comments.NewRepository(pool)
	withdrawRepo := withdraw.NewRepository(pool)
	broadcastRepo := broadcast.NewRepository(pool)

	// === 4. Сервисы ===
	threshold := int64(cfg.CommentThreshold)
	userService := users.NewService(userRepo, threshold)
	commentsService := comments.NewService(commentsRepo, threshold)
	withdrawService := withdraw.NewService(withdrawRepo, cfg.MinWithdrawCard, cfg.MinWithdrawPhone)
	broadcastService := broadcast.NewService(broadcastRepo, userService)

	// === 5. Состояния диалогов и антифлуд ===
	sessions := session.NewStore()
	antiflood := middleware.NewAntiflood(time.Duration(cfg.AntifloodSeconds) * time.Second)

	// === 6. Обработчики ===
	commentsHandler := comments.NewHandler(commentsService, botAPI, antiflood, sessions, cfg.MaxPhotoSize(), cfg.AdminIDs)
	withdrawHandler := withdraw.NewHandler(withdrawService, userService, sessions, botAPI, cfg.AdminIDs)
	broadcastHandler := broadcast.NewHandler(broadcastService, sessions, botAPI, cfg.BroadcastDelay)
	adminHandler := admin.NewHandler(userService, commentsService, withdrawService, sessions, botAPI)

	// === 7. Собираем бота ===
	b := bot.New(
		botAPI, cfg, sessions, userService,
		commentsHandler, withdrawHandler, broadcastHandler, adminHandler,
	)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(userService, int64(cfg.WeeklyCommentDecrement), b.SendMessageToUser)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Comments},
		{3, migration003Withdrawals},
		{4, migration004Broadcasts},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    user_id BIGINT PRIMARY KEY,
    username VARCHAR(255) NOT NULL DEFAULT '',
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    last_name VARCHAR(255) NOT NULL DEFAULT '',
    comment_balance BIGINT NOT NULL DEFAULT 0,
    money_balance BIGINT NOT NULL DEFAULT 0,
    is_blocked BOOLEAN NOT NULL DEFAULT TRUE,
    is_permanently_banned BOOLEAN NOT NULL DEFAULT FALSE,
    tasks_completed INTEGER NOT NULL DEFAULT 0,
    total_comments_ever BIGINT NOT NULL DEFAULT 0,
    rules_accepted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    last_activity TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE INDEX IF NOT EXISTS idx_users_is_blocked ON users(is_blocked);
CREATE INDEX IF NOT EXISTS idx_users_last_activity ON users(last_activity DESC);
`

var migration002Comments = `
CREATE TABLE IF NOT EXISTS used_photos (
    photo_hash VARCHAR(64) PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(user_id),
    used_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS comments_log (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(user_id),
    photo_hash VARCHAR(64) NOT NULL,
    iso_week INTEGER NOT NULL,
    month INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_comments_log_user_id ON comments_log(user_id);
CREATE INDEX IF NOT EXISTS idx_comments_log_created_at ON comments_log(created_at DESC);
`

var migration003Withdrawals = `
CREATE TABLE IF NOT EXISTS withdrawals (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(user_id),
    method VARCHAR(16) NOT NULL,
    amount BIGINT NOT NULL,
    details VARCHAR(255) NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'pending',
    reject_reason TEXT,
    admin_id BIGINT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_withdrawals_user_id ON withdrawals(user_id);
CREATE INDEX IF NOT EXISTS idx_withdrawals_status ON withdrawals(status);
CREATE TABLE IF NOT EXISTS withdrawal_tickets (
    withdrawal_id BIGINT NOT NULL REFERENCES withdrawals(id),
    admin_id BIGINT NOT NULL,
    message_id INTEGER NOT NULL,
    PRIMARY KEY (withdrawal_id, admin_id)
);
`

var migration004Broadcasts = `
CREATE TABLE IF NOT EXISTS broadcasts (
    id BIGSERIAL PRIMARY KEY,
    admin_id BIGINT NOT NULL,
    audience VARCHAR(32) NOT NULL,
    target_count INTEGER NOT NULL DEFAULT 0,
    text TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    reward BIGINT NOT NULL DEFAULT 0,
    sent_count INTEGER NOT NULL DEFAULT 0,
    fail_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS broadcast_completions (
    broadcast_id BIGINT NOT NULL REFERENCES broadcasts(id),
    user_id BIGINT NOT NULL REFERENCES users(user_id),
    completed_at TIMESTAMP NOT NULL DEFAULT NOW(),
    PRIMARY KEY (broadcast_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_broadcast_completions_user ON broadcast_completions(user_id);
`
