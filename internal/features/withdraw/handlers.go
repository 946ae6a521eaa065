// Package withdraw — handlers.go ведёт диалог заявки на вывод:
// способ → сумма → реквизиты, и обрабатывает решения админов.
package withdraw

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/common"
	"github.com/rudeps/RudepsBot/internal/features/users"
	"github.com/rudeps/RudepsBot/internal/session"
)

// Callback-данные кнопок.
const (
	CallbackMethodCard  = "withdraw_method_card"
	CallbackMethodPhone = "withdraw_method_phone"
	CallbackApprove     = "wd_approve_" // + ID заявки
	CallbackReject      = "wd_reject_"  // + ID заявки
)

// Handler обрабатывает диалоги вывода средств.
type Handler struct {
	service  *Service
	users    *users.Service
	sessions *session.Store
	bot      *tgbotapi.BotAPI
	adminIDs []int64
}

// NewHandler создаёт обработчик вывода средств.
func NewHandler(service *Service, usersService *users.Service, sessions *session.Store, bot *tgbotapi.BotAPI, adminIDs []int64) *Handler {
	return &Handler{
		service:  service,
		users:    usersService,
		sessions: sessions,
		bot:      bot,
		adminIDs: adminIDs,
	}
}

// HandleStart начинает заявку: проверяет входной минимум и предлагает
// выбрать способ вывода.
func (h *Handler) HandleStart(ctx context.Context, chatID int64, u *users.User) {
	if u.MoneyBalance < h.service.MinEntry() {
		h.sendMessage(chatID, fmt.Sprintf(
			"❌ Недостаточно средств для вывода.\nВаш баланс: %s, минимум: %s.",
			common.FormatMoney(u.MoneyBalance), common.FormatMoney(h.service.MinEntry()),
		))
		return
	}

	h.sessions.Set(u.UserID, session.StepWithdrawMethod)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 На карту", CallbackMethodCard),
			tgbotapi.NewInlineKeyboardButtonData("📱 На телефон", CallbackMethodPhone),
		),
	)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"💸 Вывод средств. Баланс: %s.\nВыберите способ:", common.FormatMoney(u.MoneyBalance),
	))
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки выбора способа вывода")
	}
}

// HandleMethodCallback обрабатывает выбор способа вывода.
func (h *Handler) HandleMethodCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, method Method) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	if !h.sessions.Is(userID, session.StepWithdrawMethod) {
		return
	}

	u, err := h.users.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения пользователя при выводе")
		h.sendMessage(chatID, "❌ Что-то пошло не так, попробуйте ещё раз")
		h.sessions.Clear(userID)
		return
	}

	min := h.service.MinAmount(method)
	if u.MoneyBalance < min {
		h.sendMessage(chatID, fmt.Sprintf(
			"❌ Для вывода %s нужно минимум %s. Ваш баланс: %s.",
			MethodTitle(method), common.FormatMoney(min), common.FormatMoney(u.MoneyBalance),
		))
		h.sessions.Clear(userID)
		return
	}

	h.sessions.Put(userID, "method", string(method))
	h.sessions.Advance(userID, session.StepWithdrawAmount)

	h.sendMessage(chatID, fmt.Sprintf(
		"Введите сумму вывода (от %s до %s):",
		common.FormatMoney(min), common.FormatMoney(u.MoneyBalance),
	))
}

// HandleAmountInput обрабатывает введённую сумму.
func (h *Handler) HandleAmountInput(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	methodStr, ok := h.sessions.Get(userID, "method")
	if !ok {
		h.sessions.Clear(userID)
		return
	}
	method := Method(methodStr)

	amount, err := strconv.ParseInt(message.Text, 10, 64)
	if err != nil {
		h.sendMessage(chatID, "❌ Введите сумму числом, например: 200")
		return
	}

	u, err := h.users.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения пользователя при выводе")
		h.sendMessage(chatID, "❌ Что-то пошло не так, попробуйте ещё раз")
		h.sessions.Clear(userID)
		return
	}

	if err := h.service.ValidateAmount(method, amount, u.MoneyBalance); err != nil {
		switch {
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(chatID, fmt.Sprintf("❌ На балансе только %s.", common.FormatMoney(u.MoneyBalance)))
		default:
			h.sendMessage(chatID, fmt.Sprintf(
				"❌ Минимальная сумма вывода %s: %s.",
				MethodTitle(method), common.FormatMoney(h.service.MinAmount(method)),
			))
		}
		return
	}

	h.sessions.Put(userID, "amount", strconv.FormatInt(amount, 10))
	h.sessions.Advance(userID, session.StepWithdrawDetails)

	if method == MethodCard {
		h.sendMessage(chatID, "Введите номер карты (16 цифр):")
	} else {
		h.sendMessage(chatID, "Введите номер телефона:")
	}
}

// HandleDetailsInput обрабатывает реквизиты и создаёт заявку.
func (h *Handler) HandleDetailsInput(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	methodStr, ok1 := h.sessions.Get(userID, "method")
	amountStr, ok2 := h.sessions.Get(userID, "amount")
	if !ok1 || !ok2 {
		h.sessions.Clear(userID)
		return
	}
	method := Method(methodStr)
	amount, _ := strconv.ParseInt(amountStr, 10, 64)

	var details string
	if method == MethodCard {
		card, valid := NormalizeCard(message.Text)
		if !valid {
			h.sendMessage(chatID, "❌ Номер карты должен содержать ровно 16 цифр. Попробуйте ещё раз:")
			return
		}
		details = card
	} else {
		if !ValidPhone(message.Text) {
			h.sendMessage(chatID, "❌ В номере телефона должна быть хотя бы одна цифра. Попробуйте ещё раз:")
			return
		}
		details = message.Text
	}

	w, err := h.service.Create(ctx, userID, method, amount, details)
	if err != nil {
		log.WithError(err).Error("Ошибка создания заявки на вывод")
		h.sendMessage(chatID, "❌ Не удалось создать заявку, попробуйте позже")
		h.sessions.Clear(userID)
		return
	}

	h.sessions.Clear(userID)
	h.notifyAdmins(ctx, w, message.From)

	h.sendMessage(chatID, fmt.Sprintf(
		"✅ Заявка №%d создана: %s %s.\nОжидайте решения администратора.",
		w.ID, common.FormatMoney(w.Amount), MethodTitle(w.Method),
	))
}

// ticketText собирает текст тикета заявки для админа.
func ticketText(w *Withdrawal, name string) string {
	return fmt.Sprintf(
		"💸 Заявка на вывод №%d\nОт: %s (ID: %d)\nСумма: %s\nСпособ: %s\nРеквизиты: %s",
		w.ID, name, w.UserID, common.FormatMoney(w.Amount), MethodTitle(w.Method), w.Details,
	)
}

// ticketKeyboard — кнопки решения по заявке.
func ticketKeyboard(withdrawalID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", fmt.Sprintf("%s%d", CallbackApprove, withdrawalID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("%s%d", CallbackReject, withdrawalID)),
		),
	)
}

// sendTicket отправляет тикет одному админу и запоминает сообщение.
func (h *Handler) sendTicket(ctx context.Context, w *Withdrawal, name string, adminID int64) {
	msg := tgbotapi.NewMessage(adminID, ticketText(w, name))
	msg.ReplyMarkup = ticketKeyboard(w.ID)
	sent, err := h.bot.Send(msg)
	if err != nil {
		log.WithError(err).WithField("admin_id", adminID).Warn("Не удалось отправить тикет админу")
		return
	}
	if err := h.service.RememberTicket(ctx, w.ID, adminID, sent.MessageID); err != nil {
		log.WithError(err).Warn("Не удалось сохранить тикет")
	}
}

// notifyAdmins рассылает админам тикет с кнопками одобрения/отклонения.
func (h *Handler) notifyAdmins(ctx context.Context, w *Withdrawal, from *tgbotapi.User) {
	name := from.FirstName
	if from.UserName != "" {
		name = "@" + from.UserName
	}
	for _, adminID := range h.adminIDs {
		h.sendTicket(ctx, w, name, adminID)
	}
}

// HandlePendingList показывает админу все необработанные заявки
// с кнопками решения по каждой.
func (h *Handler) HandlePendingList(ctx context.Context, adminID int64) {
	ws, err := h.service.Pending(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка чтения ожидающих заявок")
		h.sendMessage(adminID, "❌ Не удалось получить список заявок")
		return
	}
	if len(ws) == 0 {
		h.sendMessage(adminID, "Необработанных заявок нет.")
		return
	}

	for _, w := range ws {
		name := fmt.Sprintf("ID %d", w.UserID)
		if u, err := h.users.GetByUserID(ctx, w.UserID); err == nil {
			name = u.DisplayName()
		}
		h.sendTicket(ctx, w, name, adminID)
	}
}

// HandleApproveCallback одобряет заявку по нажатию кнопки.
func (h *Handler) HandleApproveCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, withdrawalID int64) {
	adminID := cb.From.ID

	w, err := h.service.Approve(ctx, withdrawalID, adminID)
	if err != nil {
		h.answerCallback(cb.ID, h.decisionErrorText(err))
		return
	}

	h.answerCallback(cb.ID, "Заявка одобрена")
	h.closeTickets(ctx, w, fmt.Sprintf("✅ Заявка №%d одобрена (%s)", w.ID, common.FormatMoney(w.Amount)))

	h.sendMessage(w.UserID, fmt.Sprintf(
		"✅ Ваша заявка №%d на %s одобрена! Деньги скоро поступят %s.",
		w.ID, common.FormatMoney(w.Amount), MethodTitle(w.Method),
	))
}

// HandleRejectCallback запрашивает у админа причину отклонения.
func (h *Handler) HandleRejectCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, withdrawalID int64) {
	adminID := cb.From.ID

	w, err := h.service.GetByID(ctx, withdrawalID)
	if err != nil {
		h.answerCallback(cb.ID, h.decisionErrorText(err))
		return
	}
	if w.Status != StatusPending {
		h.answerCallback(cb.ID, "Заявка уже обработана")
		return
	}

	h.sessions.Set(adminID, session.StepRejectReason)
	h.sessions.Put(adminID, "withdrawal_id", strconv.FormatInt(withdrawalID, 10))

	h.answerCallback(cb.ID, "")
	h.sendMessage(adminID, fmt.Sprintf("Введите причину отклонения заявки №%d:", withdrawalID))
}

// HandleRejectReason принимает причину и отклоняет заявку.
func (h *Handler) HandleRejectReason(ctx context.Context, message *tgbotapi.Message) {
	adminID := message.From.ID

	idStr, ok := h.sessions.Get(adminID, "withdrawal_id")
	if !ok {
		h.sessions.Clear(adminID)
		return
	}
	withdrawalID, _ := strconv.ParseInt(idStr, 10, 64)
	reason := message.Text

	w, err := h.service.Reject(ctx, withdrawalID, adminID, reason)
	if err != nil {
		h.sessions.Clear(adminID)
		h.sendMessage(adminID, "❌ "+h.decisionErrorText(err))
		return
	}

	h.sessions.Clear(adminID)
	h.deleteTickets(ctx, w)

	h.sendMessage(adminID, fmt.Sprintf("Заявка №%d отклонена.", w.ID))
	h.sendMessage(w.UserID, fmt.Sprintf(
		"❌ Ваша заявка №%d на %s отклонена.\nПричина: %s",
		w.ID, common.FormatMoney(w.Amount), reason,
	))
}

// closeTickets заменяет текст тикетов у всех админов итогом решения,
// чтобы кнопки пропали и никто не нажал их повторно.
func (h *Handler) closeTickets(ctx context.Context, w *Withdrawal, text string) {
	tickets, err := h.service.Tickets(ctx, w.ID)
	if err != nil {
		log.WithError(err).Warn("Не удалось получить тикеты заявки")
		return
	}
	for _, t := range tickets {
		edit := tgbotapi.NewEditMessageText(t.AdminID, t.MessageID, text)
		if _, err := h.bot.Send(edit); err != nil {
			log.WithError(err).WithField("admin_id", t.AdminID).Debug("Не удалось обновить тикет")
		}
	}
}

// deleteTickets убирает тикеты отклонённой заявки из чатов админов.
// Ошибки игнорируются: сообщение могли удалить руками.
func (h *Handler) deleteTickets(ctx context.Context, w *Withdrawal) {
	tickets, err := h.service.Tickets(ctx, w.ID)
	if err != nil {
		log.WithError(err).Warn("Не удалось получить тикеты заявки")
		return
	}
	for _, t := range tickets {
		del := tgbotapi.NewDeleteMessage(t.AdminID, t.MessageID)
		if _, err := h.bot.Request(del); err != nil {
			log.WithError(err).WithField("admin_id", t.AdminID).Debug("Не удалось удалить тикет")
		}
	}
}

func (h *Handler) decisionErrorText(err error) string {
	switch {
	case errors.Is(err, common.ErrWithdrawalAlreadyClosed):
		return "Заявка уже обработана другим админом"
	case errors.Is(err, common.ErrWithdrawalNotFound):
		return "Заявка не найдена"
	default:
		log.WithError(err).Error("Ошибка обработки заявки на вывод")
		return "Ошибка обработки заявки"
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
