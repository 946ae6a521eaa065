// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go принимает апдейты, проверяет доступ и маршрутизирует сообщения
// по командам, кнопкам меню и шагам активных диалогов.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/bot/middleware"
	"github.com/rudeps/RudepsBot/internal/common"
	"github.com/rudeps/RudepsBot/internal/config"
	"github.com/rudeps/RudepsBot/internal/features/admin"
	"github.com/rudeps/RudepsBot/internal/features/broadcast"
	"github.com/rudeps/RudepsBot/internal/features/comments"
	"github.com/rudeps/RudepsBot/internal/features/users"
	"github.com/rudeps/RudepsBot/internal/features/withdraw"
	"github.com/rudeps/RudepsBot/internal/session"
)

// bannedText — единственный ответ вечно забаненному на любое обращение.
const bannedText = "⛔ Вы забанены навсегда. Доступ к боту закрыт."

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	rateLimiter *middleware.RateLimiter
	sessions    *session.Store

	userService *users.Service

	commentsHandler  *comments.Handler
	withdrawHandler  *withdraw.Handler
	broadcastHandler *broadcast.Handler
	adminHandler     *admin.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	sessions *session.Store,
	userService *users.Service,
	commentsHandler *comments.Handler,
	withdrawHandler *withdraw.Handler,
	broadcastHandler *broadcast.Handler,
	adminHandler *admin.Handler,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:              api,
		cfg:              cfg,
		rateLimiter:      middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		sessions:         sessions,
		userService:      userService,
		commentsHandler:  commentsHandler,
		withdrawHandler:  withdrawHandler,
		broadcastHandler: broadcastHandler,
		adminHandler:     adminHandler,
		parser:           NewCommandParser(),
		inflight:         make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// Close освобождает фоновые ресурсы бота.
func (b *Bot) Close() {
	b.rateLimiter.Close()
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message

	// Бот работает только в личных сообщениях
	if !message.Chat.IsPrivate() {
		return
	}

	middleware.LogMessage(message)

	userID := message.From.ID
	chatID := message.Chat.ID

	// Rate limiting
	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("rate limited")
		return
	}

	// Регистрируем/обновляем пользователя на каждое сообщение.
	// Забаненный получает фиксированный ответ, его запись не трогается.
	u, err := b.userService.EnsureUser(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName)
	if errors.Is(err, common.ErrPermanentlyBanned) {
		b.sendMessage(chatID, bannedText)
		return
	}
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("EnsureUser failed")
		b.sendMessage(chatID, "❌ Что-то пошло не так, попробуйте позже")
		return
	}

	// Фото обрабатываются отдельно от текста
	if len(message.Photo) > 0 {
		b.commentsHandler.HandlePhoto(ctx, message)
		return
	}

	if message.Text == "" {
		return
	}

	// Отмена прерывает любой начатый диалог
	if message.Text == ButtonCancel {
		if b.sessions.InDialog(userID) {
			b.sessions.Clear(userID)
			b.showMenu(chatID, "Действие отменено.")
		} else {
			b.showMenu(chatID, "Главное меню:")
		}
		return
	}

	// Команда сбрасывает любой начатый диалог
	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if isCommand {
		b.sessions.Clear(userID)
		b.routeCommand(ctx, chatID, userID, u, cmd, args)
		return
	}

	// Активный диалог перехватывает текст раньше кнопок меню
	if b.routeDialog(ctx, message) {
		return
	}

	b.routeMenuButton(ctx, chatID, u, message.Text)
}

// routeDialog направляет текст в активный многошаговый диалог.
// Возвращает true, если сообщение было шагом диалога.
func (b *Bot) routeDialog(ctx context.Context, message *tgbotapi.Message) bool {
	userID := message.From.ID
	isAdmin := b.cfg.IsAdmin(userID)

	switch b.sessions.Step(userID) {
	case session.StepWithdrawAmount:
		b.withdrawHandler.HandleAmountInput(ctx, message)
	case session.StepWithdrawDetails:
		b.withdrawHandler.HandleDetailsInput(ctx, message)

	case session.StepBroadcastCount:
		if !isAdmin {
			return false
		}
		b.broadcastHandler.HandleCountInput(ctx, message)
	case session.StepBroadcastText:
		if !isAdmin {
			return false
		}
		b.broadcastHandler.HandleTextInput(ctx, message)
	case session.StepBroadcastLink:
		if !isAdmin {
			return false
		}
		b.broadcastHandler.HandleLinkInput(ctx, message)
	case session.StepBroadcastReward:
		if !isAdmin {
			return false
		}
		b.broadcastHandler.HandleRewardInput(ctx, message)

	case session.StepBalanceSearch:
		if !isAdmin {
			return false
		}
		b.adminHandler.HandleBalanceSearchInput(ctx, message)
	case session.StepBalanceAmount:
		if !isAdmin {
			return false
		}
		b.adminHandler.HandleBalanceAmountInput(ctx, message)

	case session.StepRejectReason:
		if !isAdmin {
			return false
		}
		b.withdrawHandler.HandleRejectReason(ctx, message)

	default:
		return false
	}
	return true
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, u *users.User, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	isAdmin := b.cfg.IsAdmin(userID)

	switch cmd {
	case "start":
		if !u.RulesAccepted {
			b.showRules(chatID)
			return
		}
		b.showMenu(chatID, "С возвращением! Выберите действие:")

	case "help":
		b.sendHelp(chatID, isAdmin)

	case "menu":
		b.showMenu(chatID, "Главное меню:")

	case "admin":
		if isAdmin {
			b.adminHandler.ShowPanel(chatID)
		}

	case "stats":
		if isAdmin {
			b.adminHandler.HandleStats(ctx, chatID)
		}

	case "ban":
		if isAdmin {
			b.adminHandler.HandleBan(ctx, chatID, args)
		}

	case "export":
		if isAdmin {
			b.adminHandler.HandleExport(ctx, chatID)
		}
	}
}

// lockedButton сообщает, закрыта ли кнопка меню для пользователя без доступа.
// Заблокированному доступна только отправка фото.
func lockedButton(text string) bool {
	switch text {
	case ButtonBalance, ButtonWithdraw, ButtonHelp:
		return true
	}
	return false
}

// routeMenuButton обрабатывает нажатия кнопок главного меню и админ-панели.
func (b *Bot) routeMenuButton(ctx context.Context, chatID int64, u *users.User, text string) {
	isAdmin := b.cfg.IsAdmin(u.UserID)

	// Нажатие любой другой кнопки отменяет ожидание фото
	if text != ButtonSubmitPhoto && b.sessions.Is(u.UserID, session.StepWaitingPhoto) {
		b.sessions.Clear(u.UserID)
	}

	if lockedButton(text) && !isAdmin && !b.userService.HasAccess(u) {
		b.sendLocked(chatID, u)
		return
	}

	switch text {
	case ButtonSubmitPhoto:
		b.sessions.Set(u.UserID, session.StepWaitingPhoto)
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"📸 Пришлите скриншот вашего комментария с упоминанием %s.\n"+
				"За каждый уникальный скриншот — +1 комментарий на баланс.",
			b.cfg.BotName,
		))
		msg.ReplyMarkup = cancelKeyboard()
		if _, err := b.api.Send(msg); err != nil {
			log.WithError(err).Error("Ошибка отправки приглашения прислать фото")
		}
		return

	case ButtonBalance:
		b.showBalance(chatID, u)
		return

	case ButtonWithdraw:
		b.withdrawHandler.HandleStart(ctx, chatID, u)
		return

	case ButtonHelp:
		b.sendHelp(chatID, isAdmin)
		return
	}

	if isAdmin {
		switch text {
		case admin.ButtonStats:
			b.adminHandler.HandleStats(ctx, chatID)
			return
		case admin.ButtonBalances:
			b.adminHandler.StartBalanceSearch(u.UserID)
			return
		case admin.ButtonBroadcast:
			b.broadcastHandler.HandleStart(ctx, u.UserID)
			return
		case admin.ButtonTickets:
			b.withdrawHandler.HandlePendingList(ctx, u.UserID)
			return
		case admin.ButtonExport:
			b.adminHandler.HandleExport(ctx, chatID)
			return
		}
	}

	// Непонятный текст — показываем меню
	b.showMenu(chatID, "Не понял вас. Выберите действие на клавиатуре:")
}

// sendLocked отвечает заблокированному пользователю, сколько осталось набрать.
func (b *Bot) sendLocked(chatID int64, u *users.User) {
	remaining := b.userService.CommentsRemaining(u)
	b.sendMessage(chatID, fmt.Sprintf(
		"🔒 Доступ закрыт. Не хватает %d %s.\nПрисылайте скриншоты комментариев!",
		remaining, common.PluralizeComments(remaining),
	))
}

// handleCallback маршрутизирует нажатия инлайн-кнопок.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	defer middleware.RecoverFromPanic()

	if cb.From == nil || cb.Message == nil {
		return
	}
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	data := cb.Data
	isAdmin := b.cfg.IsAdmin(userID)

	u, err := b.userService.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Callback от незнакомого пользователя")
		return
	}
	if users.Gate(u) != nil {
		b.answerCallback(cb.ID, bannedText)
		return
	}

	switch {
	case data == CallbackRulesAccept:
		if err := b.userService.AcceptRules(ctx, userID); err != nil {
			log.WithError(err).Error("Ошибка сохранения согласия с правилами")
			return
		}
		b.answerCallback(cb.ID, "Правила приняты!")
		b.showMenu(chatID, fmt.Sprintf(
			"Добро пожаловать! Чтобы открыть функции бота, наберите %d %s.",
			b.cfg.CommentThreshold, common.PluralizeComments(int64(b.cfg.CommentThreshold)),
		))

	case data == CallbackRulesDecline:
		b.answerCallback(cb.ID, "")
		b.sendMessage(chatID, "Без принятия правил бот недоступен. Наберите /start, когда передумаете.")

	case data == withdraw.CallbackMethodCard:
		b.withdrawHandler.HandleMethodCallback(ctx, cb, withdraw.MethodCard)
	case data == withdraw.CallbackMethodPhone:
		b.withdrawHandler.HandleMethodCallback(ctx, cb, withdraw.MethodPhone)

	case strings.HasPrefix(data, withdraw.CallbackApprove):
		if !isAdmin {
			return
		}
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, withdraw.CallbackApprove), 10, 64); err == nil {
			b.withdrawHandler.HandleApproveCallback(ctx, cb, id)
		}
	case strings.HasPrefix(data, withdraw.CallbackReject):
		if !isAdmin {
			return
		}
		if id, err := strconv.ParseInt(strings.TrimPrefix(data, withdraw.CallbackReject), 10, 64); err == nil {
			b.withdrawHandler.HandleRejectCallback(ctx, cb, id)
		}

	case broadcast.IsAudienceCallback(data):
		if !isAdmin {
			return
		}
		b.broadcastHandler.HandleAudienceCallback(ctx, cb)

	case broadcast.IsCompleteCallback(data):
		b.broadcastHandler.HandleCompleteCallback(ctx, cb)

	case admin.IsBalanceCallback(data):
		if !isAdmin {
			return
		}
		b.adminHandler.HandleBalanceActionCallback(ctx, cb)
	}
}

// showRules отправляет текст правил с кнопками согласия.
func (b *Bot) showRules(chatID int64) {
	text := fmt.Sprintf(
		"📜 Правила %s\n\n"+
			"1. Вы оставляете комментарии с упоминанием %s и присылаете сюда скриншоты.\n"+
			"2. Каждый уникальный скриншот — +1 комментарий на баланс.\n"+
			"3. Доступ к функциям бота открывается от %d %s на балансе.\n"+
			"4. Каждый понедельник баланс уменьшается на %d — оставайтесь активными.\n"+
			"5. Чужие, старые или поддельные скриншоты — вечный бан без предупреждения.\n\n"+
			"Принимаете правила?",
		b.cfg.BotName, b.cfg.BotName,
		b.cfg.CommentThreshold, common.PluralizeComments(int64(b.cfg.CommentThreshold)),
		b.cfg.WeeklyCommentDecrement,
	)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = rulesKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки правил")
	}
}

// showMenu отправляет главное меню.
func (b *Bot) showMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки меню")
	}
}

// showBalance показывает балансы и статус доступа.
func (b *Bot) showBalance(chatID int64, u *users.User) {
	var access string
	if b.userService.HasAccess(u) {
		access = "✅ Доступ открыт"
	} else {
		remaining := b.userService.CommentsRemaining(u)
		access = fmt.Sprintf("🔒 Доступ закрыт, не хватает %d %s",
			remaining, common.PluralizeComments(remaining))
	}

	b.sendMessage(chatID, fmt.Sprintf(
		"💰 Ваш баланс\n\nКомментарии: %s\nДеньги: %s\nВсего комментариев: %d\nЗаданий выполнено: %d\n\n%s",
		common.FormatComments(u.CommentBalance),
		common.FormatMoney(u.MoneyBalance),
		u.TotalCommentsEver,
		u.TasksCompleted,
		access,
	))
}

// sendHelp отправляет справку.
func (b *Bot) sendHelp(chatID int64, isAdmin bool) {
	text := fmt.Sprintf(
		"ℹ️ Как это работает\n\n"+
			"Оставляйте комментарии с упоминанием %s, присылайте скриншоты и копите баланс. "+
			"От %d комментариев открываются задания с денежными наградами и вывод средств.\n\n"+
			"Команды:\n/start — начать\n/menu — меню\n/help — эта справка",
		b.cfg.BotName, b.cfg.CommentThreshold,
	)
	if isAdmin {
		text += "\n\nАдмин:\n/admin — панель\n/stats — статистика\n/ban <user_id> — вечный бан\n/export — выгрузка ID"
	}
	b.sendMessage(chatID, text)
}

// answerCallback отвечает на нажатие инлайн-кнопки.
func (b *Bot) answerCallback(callbackID, text string) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(cb); err != nil {
		log.WithError(err).Debug("Ошибка ответа на callback")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для уведомлений
// планировщика). Недоставка — не ошибка: пользователь мог закрыть бота.
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	}
}

// CommandParser парсит команды с префиксом /.
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	// Срезаем @BotName из команд вида /start@RudepsBot
	command := strings.ToLower(parts[0])
	if i := strings.Index(command, "@"); i >= 0 {
		command = command[:i]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
