// Package broadcast — handlers.go ведёт диалог создания рассылки
// (аудитория → текст → ссылка → награда), отправляет её и обрабатывает
// нажатия кнопки «Выполнил».
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/common"
	"github.com/rudeps/RudepsBot/internal/features/users"
	"github.com/rudeps/RudepsBot/internal/session"
)

// audiencePrefix — префикс callback-данных кнопок выбора аудитории.
const audiencePrefix = "bc_aud_"

// Handler обрабатывает диалог рассылки и награды за задания.
type Handler struct {
	service  *Service
	sessions *session.Store
	bot      *tgbotapi.BotAPI
	delay    time.Duration // Пауза между отправками
}

// NewHandler создаёт обработчик рассылок.
func NewHandler(service *Service, sessions *session.Store, bot *tgbotapi.BotAPI, delay time.Duration) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		bot:      bot,
		delay:    delay,
	}
}

// IsAudienceCallback сообщает, относится ли callback к выбору аудитории.
func IsAudienceCallback(data string) bool {
	return strings.HasPrefix(data, audiencePrefix)
}

// HandleStart начинает диалог рассылки: предлагает выбрать аудиторию.
func (h *Handler) HandleStart(ctx context.Context, adminID int64) {
	h.sessions.Set(adminID, session.StepBroadcastTarget)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Всем", audiencePrefix+string(users.AudienceAll)),
			tgbotapi.NewInlineKeyboardButtonData("Топ активных", audiencePrefix+string(users.AudienceTopActive)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Топ неактивных", audiencePrefix+string(users.AudienceTopInactive)),
			tgbotapi.NewInlineKeyboardButtonData("Случайным", audiencePrefix+string(users.AudienceRandom)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Заблокированным", audiencePrefix+string(users.AudienceBlocked)),
			tgbotapi.NewInlineKeyboardButtonData("Разблокированным", audiencePrefix+string(users.AudienceUnblocked)),
		),
	)
	msg := tgbotapi.NewMessage(adminID, "📣 Новая рассылка. Кому отправляем?")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки выбора аудитории")
	}
}

// HandleAudienceCallback обрабатывает выбор аудитории.
func (h *Handler) HandleAudienceCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	adminID := cb.From.ID
	if !h.sessions.Is(adminID, session.StepBroadcastTarget) {
		return
	}

	raw := strings.TrimPrefix(cb.Data, audiencePrefix)
	audience, ok := users.ParseAudience(raw)
	if !ok {
		log.WithField("data", cb.Data).Warn("Неизвестная аудитория рассылки")
		return
	}

	h.sessions.Put(adminID, "audience", string(audience))
	h.answerCallback(cb.ID, "")

	// Для топов и случайной выборки сначала спрашиваем размер выборки
	if users.AudienceLimited(audience) {
		h.sessions.Advance(adminID, session.StepBroadcastCount)
		h.sendMessage(adminID, "Скольким пользователям отправить?")
		return
	}

	h.sessions.Advance(adminID, session.StepBroadcastText)
	h.sendMessage(adminID, "Введите текст рассылки:")
}

// HandleCountInput принимает запрошенное число получателей.
func (h *Handler) HandleCountInput(ctx context.Context, message *tgbotapi.Message) {
	adminID := message.From.ID

	count, ok := parseCount(message.Text)
	if !ok {
		h.sendMessage(adminID, "❌ Число получателей — целое число больше 0. Введите ещё раз:")
		return
	}

	h.sessions.Put(adminID, "count", strconv.Itoa(count))
	h.sessions.Advance(adminID, session.StepBroadcastText)

	h.sendMessage(adminID, "Введите текст рассылки:")
}

// HandleTextInput принимает текст рассылки.
func (h *Handler) HandleTextInput(ctx context.Context, message *tgbotapi.Message) {
	adminID := message.From.ID
	if strings.TrimSpace(message.Text) == "" {
		h.sendMessage(adminID, "❌ Текст не может быть пустым. Введите текст рассылки:")
		return
	}

	h.sessions.Put(adminID, "text", message.Text)
	h.sessions.Advance(adminID, session.StepBroadcastLink)

	h.sendMessage(adminID, "Пришлите ссылку для кнопки (или «-», если без ссылки):")
}

// HandleLinkInput принимает ссылку («-» — без ссылки).
func (h *Handler) HandleLinkInput(ctx context.Context, message *tgbotapi.Message) {
	adminID := message.From.ID

	link := strings.TrimSpace(message.Text)
	if link == "-" {
		link = ""
	}

	h.sessions.Put(adminID, "link", link)
	h.sessions.Advance(adminID, session.StepBroadcastReward)

	h.sendMessage(adminID, "Введите награду в рублях за выполнение (0 — без награды):")
}

// HandleRewardInput принимает награду и запускает отправку.
func (h *Handler) HandleRewardInput(ctx context.Context, message *tgbotapi.Message) {
	adminID := message.From.ID

	reward, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
	if err != nil || reward < 0 {
		h.sendMessage(adminID, "❌ Награда — целое число не меньше 0. Введите ещё раз:")
		return
	}

	audienceStr, ok1 := h.sessions.Get(adminID, "audience")
	text, ok2 := h.sessions.Get(adminID, "text")
	link, ok3 := h.sessions.Get(adminID, "link")
	if !ok1 || !ok2 || !ok3 {
		h.sessions.Clear(adminID)
		return
	}
	// count есть только у ограниченных аудиторий
	countStr, _ := h.sessions.Get(adminID, "count")
	count, _ := strconv.Atoi(countStr)
	h.sessions.Clear(adminID)

	b, recipients, err := h.service.Create(ctx, adminID, users.Audience(audienceStr), count, text, link, reward)
	if err != nil {
		log.WithError(err).Error("Ошибка создания рассылки")
		h.sendMessage(adminID, "❌ Не удалось создать рассылку")
		return
	}

	if len(recipients) == 0 {
		h.sendMessage(adminID, "В выбранной аудитории никого нет, рассылка не отправлена.")
		return
	}

	h.sendMessage(adminID, fmt.Sprintf("🚀 Рассылка №%d запущена, получателей: %d.", b.ID, len(recipients)))
	h.run(ctx, b, recipients, adminID)
}

// run отправляет рассылку по одному получателю с паузой между отправками.
// Упавшие отправки собираются и отдаются админу файлом.
func (h *Handler) run(ctx context.Context, b *Broadcast, recipients []int64, adminID int64) {
	markup := h.buildMarkup(b)

	var sent int
	var failedIDs []int64
	for _, userID := range recipients {
		if ctx.Err() != nil {
			log.WithField("broadcast_id", b.ID).Warn("Рассылка прервана остановкой бота")
			break
		}

		msg := tgbotapi.NewMessage(userID, b.Text)
		if markup != nil {
			msg.ReplyMarkup = markup
		}
		if _, err := h.bot.Send(msg); err != nil {
			// Типовой случай: пользователь заблокировал бота
			failedIDs = append(failedIDs, userID)
		} else {
			sent++
		}
		time.Sleep(h.delay)
	}

	if err := h.service.SaveTallies(ctx, b.ID, sent, len(failedIDs)); err != nil {
		log.WithError(err).Error("Ошибка сохранения итогов рассылки")
	}

	h.sendMessage(adminID, fmt.Sprintf(
		"📊 Рассылка №%d завершена.\nДоставлено: %d\nНе доставлено: %d",
		b.ID, sent, len(failedIDs),
	))

	if len(failedIDs) > 0 {
		h.sendFailedIDs(adminID, b.ID, failedIDs)
	}
}

// buildMarkup собирает клавиатуру рассылки: кнопка-ссылка и/или «Выполнил».
func (h *Handler) buildMarkup(b *Broadcast) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if b.Link != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Перейти", b.Link),
		))
	}
	if b.Reward > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ Выполнил (+%s)", common.FormatMoney(b.Reward)),
				BuildCompleteCallback(b.ID, b.Reward),
			),
		))
	}
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// sendFailedIDs отправляет админу файл со списком недоставленных ID.
func (h *Handler) sendFailedIDs(adminID, broadcastID int64, ids []int64) {
	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, "%d\n", id)
	}

	doc := tgbotapi.NewDocument(adminID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("broadcast_%d_failed.txt", broadcastID),
		Bytes: []byte(sb.String()),
	})
	doc.Caption = "ID пользователей, которым рассылка не доставлена"
	if _, err := h.bot.Send(doc); err != nil {
		log.WithError(err).Error("Не удалось отправить файл недоставленных ID")
	}
}

// HandleCompleteCallback начисляет награду за выполненное задание.
func (h *Handler) HandleCompleteCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	broadcastID, _, ok := ParseCompleteCallback(cb.Data)
	if !ok {
		return
	}
	userID := cb.From.ID

	reward, err := h.service.ClaimReward(ctx, broadcastID, userID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRewardAlreadyClaimed):
			h.answerCallback(cb.ID, "Награда за это задание уже получена")
		case errors.Is(err, common.ErrBroadcastNotFound):
			h.answerCallback(cb.ID, "Задание больше недоступно")
		default:
			log.WithError(err).Error("Ошибка начисления награды")
			h.answerCallback(cb.ID, "Ошибка, попробуйте позже")
		}
		return
	}

	h.answerCallback(cb.ID, fmt.Sprintf("Начислено %s!", common.FormatMoney(reward)))
	h.sendMessage(userID, fmt.Sprintf(
		"🎉 Задание выполнено! На баланс начислено %s.", common.FormatMoney(reward),
	))
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

// parseCount разбирает введённое админом число получателей.
func parseCount(s string) (int, bool) {
	count, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || count <= 0 {
		return 0, false
	}
	return count, true
}
