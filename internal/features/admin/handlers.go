// Package admin — handlers.go обрабатывает взаимодействие с админ-панелью.
// Панель работает через Reply Keyboard в личных сообщениях.
// Поток: кнопка панели → выбор действия → пошаговый диалог.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/common"
	"github.com/rudeps/RudepsBot/internal/features/comments"
	"github.com/rudeps/RudepsBot/internal/features/users"
	"github.com/rudeps/RudepsBot/internal/features/withdraw"
	"github.com/rudeps/RudepsBot/internal/session"
)

// Кнопки админ-панели.
const (
	ButtonStats     = "📊 Статистика"
	ButtonBalances  = "💰 Балансы"
	ButtonBroadcast = "📣 Рассылка"
	ButtonTickets   = "🎫 Тикеты на выплату"
	ButtonExport    = "📤 Экспорт ID"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	users    *users.Service
	comments *comments.Service
	withdraw *withdraw.Service
	sessions *session.Store
	bot      *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(usersService *users.Service, commentsService *comments.Service, withdrawService *withdraw.Service, sessions *session.Store, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		users:    usersService,
		comments: commentsService,
		withdraw: withdrawService,
		sessions: sessions,
		bot:      bot,
	}
}

// ShowPanel отображает клавиатуру админ-панели.
func (h *Handler) ShowPanel(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonStats),
			tgbotapi.NewKeyboardButton(ButtonBalances),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonBroadcast),
			tgbotapi.NewKeyboardButton(ButtonTickets),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonExport),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "🛠 Админ-панель. Выберите действие:")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки админ-панели")
	}
}

// HandleStats показывает сводную статистику бота.
func (h *Handler) HandleStats(ctx context.Context, chatID int64) {
	stats, err := h.users.GetStats(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка сбора статистики")
		h.sendMessage(chatID, "❌ Не удалось собрать статистику")
		return
	}
	pending, err := h.withdraw.CountPending(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка подсчёта заявок")
		pending = -1
	}

	var sb strings.Builder
	sb.WriteString("📊 Статистика бота\n\n")
	fmt.Fprintf(&sb, "Пользователей всего: %s\n", common.FormatNumber(stats.TotalUsers))
	fmt.Fprintf(&sb, "Заблокировано (нет доступа): %s\n", common.FormatNumber(stats.BlockedUsers))
	fmt.Fprintf(&sb, "Забанено навсегда: %s\n", common.FormatNumber(stats.BannedUsers))
	fmt.Fprintf(&sb, "Активны за неделю: %s\n", common.FormatNumber(stats.ActiveLastWeek))
	fmt.Fprintf(&sb, "\nКомментариев на балансах: %s\n", common.FormatNumber(stats.TotalComments))
	fmt.Fprintf(&sb, "Денег на балансах: %s\n", common.FormatMoney(stats.TotalMoney))
	fmt.Fprintf(&sb, "Заданий выполнено: %s\n", common.FormatNumber(stats.TotalTasksDone))

	if week, month, err := h.comments.PeriodStats(ctx); err != nil {
		log.WithError(err).Error("Ошибка подсчёта начислений за период")
	} else {
		fmt.Fprintf(&sb, "Фото за неделю: %s, за месяц: %s\n",
			common.FormatNumber(week), common.FormatNumber(month))
	}
	if pending >= 0 {
		fmt.Fprintf(&sb, "\nЗаявок на вывод в ожидании: %d", pending)
	}

	h.sendMessage(chatID, sb.String())
}

// StartBalanceSearch начинает диалог правки балансов.
func (h *Handler) StartBalanceSearch(adminID int64) {
	h.sessions.Set(adminID, session.StepBalanceSearch)
	h.sendMessage(adminID, "Введите ID, @username или имя пользователя:")
}

// HandleBalanceSearchInput ищет пользователей и показывает кнопки правки.
func (h *Handler) HandleBalanceSearchInput(ctx context.Context, message *tgbotapi.Message) {
	adminID := message.From.ID

	found, err := h.users.Search(ctx, message.Text)
	if err != nil {
		log.WithError(err).Error("Ошибка поиска пользователей")
		h.sendMessage(adminID, "❌ Ошибка поиска, попробуйте ещё раз")
		return
	}
	if len(found) == 0 {
		h.sendMessage(adminID, "Никого не нашлось. Введите другой запрос:")
		return
	}

	for _, u := range found {
		text := fmt.Sprintf(
			"%s (ID: %d)\nКомментарии: %s\nДеньги: %s\nДоступ: %s",
			u.DisplayName(), u.UserID,
			common.FormatComments(u.CommentBalance),
			common.FormatMoney(u.MoneyBalance),
			accessLabel(u),
		)
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Комментарии", BuildBalanceCallback(KindComments, OpAdd, u.UserID)),
				tgbotapi.NewInlineKeyboardButtonData("➖ Комментарии", BuildBalanceCallback(KindComments, OpSub, u.UserID)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Деньги", BuildBalanceCallback(KindMoney, OpAdd, u.UserID)),
				tgbotapi.NewInlineKeyboardButtonData("➖ Деньги", BuildBalanceCallback(KindMoney, OpSub, u.UserID)),
			),
		)
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ReplyMarkup = keyboard
		if _, err := h.bot.Send(msg); err != nil {
			log.WithError(err).Error("Ошибка отправки карточки пользователя")
		}
	}
}

// HandleBalanceActionCallback запрашивает сумму правки.
func (h *Handler) HandleBalanceActionCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	adminID := cb.From.ID

	kind, op, targetID, ok := ParseBalanceCallback(cb.Data)
	if !ok {
		return
	}

	h.sessions.Set(adminID, session.StepBalanceAmount)
	h.sessions.Put(adminID, "kind", string(kind))
	h.sessions.Put(adminID, "op", string(op))
	h.sessions.Put(adminID, "target_id", strconv.FormatInt(targetID, 10))

	h.answerCallback(cb.ID, "")

	what := "комментариев"
	if kind == KindMoney {
		what = "рублей"
	}
	verb := "начислить"
	if op == OpSub {
		verb = "списать"
	}
	h.sendMessage(adminID, fmt.Sprintf("Сколько %s %s пользователю %d?", what, verb, targetID))
}

// HandleBalanceAmountInput применяет правку баланса.
func (h *Handler) HandleBalanceAmountInput(ctx context.Context, message *tgbotapi.Message) {
	adminID := message.From.ID

	kindStr, ok1 := h.sessions.Get(adminID, "kind")
	opStr, ok2 := h.sessions.Get(adminID, "op")
	targetStr, ok3 := h.sessions.Get(adminID, "target_id")
	if !ok1 || !ok2 || !ok3 {
		h.sessions.Clear(adminID)
		return
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(adminID, "❌ Введите положительное число:")
		return
	}
	targetID, _ := strconv.ParseInt(targetStr, 10, 64)

	delta := amount
	if BalanceOp(opStr) == OpSub {
		delta = -amount
	}

	var u *users.User
	if BalanceKind(kindStr) == KindComments {
		u, err = h.users.AdjustComments(ctx, targetID, delta)
	} else {
		u, err = h.users.AdjustMoney(ctx, targetID, delta)
	}
	h.sessions.Clear(adminID)

	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(adminID, "❌ Пользователь не найден")
			return
		}
		log.WithError(err).Error("Ошибка правки баланса")
		h.sendMessage(adminID, "❌ Не удалось изменить баланс")
		return
	}

	h.sendMessage(adminID, fmt.Sprintf(
		"✅ Готово. %s (ID: %d)\nКомментарии: %s\nДеньги: %s\nДоступ: %s",
		u.DisplayName(), u.UserID,
		common.FormatComments(u.CommentBalance),
		common.FormatMoney(u.MoneyBalance),
		accessLabel(u),
	))
}

// HandleBan обрабатывает команду /ban <user_id>. Бан вечный,
// команды разбана не существует.
func (h *Handler) HandleBan(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Формат: /ban <user_id>")
		return
	}
	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ user_id должен быть числом")
		return
	}

	u, err := h.users.Ban(ctx, targetID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "❌ Пользователь не найден")
			return
		}
		log.WithError(err).Error("Ошибка бана")
		h.sendMessage(chatID, "❌ Не удалось забанить пользователя")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("🚫 Пользователь %s (ID: %d) забанен навсегда.", u.DisplayName(), u.UserID))
	h.sendMessage(targetID, "🚫 Вы навсегда заблокированы за нарушение правил. Решение не пересматривается.")
}

// HandleExport выгружает ID всех пользователей файлом.
func (h *Handler) HandleExport(ctx context.Context, chatID int64) {
	ids, err := h.users.AllUserIDs(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка экспорта пользователей")
		h.sendMessage(chatID, "❌ Не удалось выгрузить пользователей")
		return
	}

	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, "%d\n", id)
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "user_ids.txt",
		Bytes: []byte(sb.String()),
	})
	doc.Caption = fmt.Sprintf("Всего пользователей: %d", len(ids))
	if _, err := h.bot.Send(doc); err != nil {
		log.WithError(err).Error("Не удалось отправить файл экспорта")
	}
}

func accessLabel(u *users.User) string {
	switch {
	case u.IsPermanentlyBanned:
		return "вечный бан"
	case u.IsBlocked:
		return "закрыт"
	default:
		return "открыт"
	}
}

func (h *Handler) answerCallback(callbackID, text string) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := h.bot.Request(cb); err != nil {
		log.WithError(err).Debug("Ошибка ответа на callback")
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
