// Package comments — handlers.go обрабатывает присланные фото.
// Порядок проверок: шаг диалога → антифлуд → размер файла → скачивание → зачёт.
package comments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/bot/middleware"
	"github.com/rudeps/RudepsBot/internal/common"
	"github.com/rudeps/RudepsBot/internal/session"
)

// Handler обрабатывает фото-доказательства в личных сообщениях.
type Handler struct {
	service      *Service
	bot          *tgbotapi.BotAPI
	antiflood    *middleware.Antiflood
	sessions     *session.Store
	maxPhotoSize int     // Максимальный размер файла в байтах
	adminIDs     []int64 // Кому пересылать фото на проверку
	httpClient   *http.Client
}

// NewHandler создаёт обработчик фото.
func NewHandler(service *Service, bot *tgbotapi.BotAPI, antiflood *middleware.Antiflood, sessions *session.Store, maxPhotoSize int, adminIDs []int64) *Handler {
	return &Handler{
		service:      service,
		bot:          bot,
		antiflood:    antiflood,
		sessions:     sessions,
		maxPhotoSize: maxPhotoSize,
		adminIDs:     adminIDs,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// claimSubmission проверяет, ждал ли бот фото от пользователя, и сразу
// снимает шаг ожидания. Повторная доставка того же апдейта второй раз
// шаг уже не застанет и фото не засчитает.
func (h *Handler) claimSubmission(userID int64) bool {
	if !h.sessions.Is(userID, session.StepWaitingPhoto) {
		return false
	}
	h.sessions.Clear(userID)
	return true
}

// HandlePhoto обрабатывает присланное фото: скачивает, хеширует, засчитывает
// и пересылает админам на проверку.
func (h *Handler) HandlePhoto(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	// Фото засчитываются только после нажатия кнопки в меню
	if !h.claimSubmission(userID) {
		h.sendMessage(chatID, "📸 Сначала нажмите кнопку «Отправить фото» в меню, затем пришлите скриншот.")
		return
	}

	if ok, wait := h.antiflood.Allow(userID); !ok {
		h.sendMessage(chatID, fmt.Sprintf("⏳ Не так быстро! Следующее фото можно отправить через %d сек.", wait))
		return
	}

	if len(message.Photo) == 0 {
		return
	}
	// Telegram присылает несколько размеров одного фото, последний — самый большой
	photo := message.Photo[len(message.Photo)-1]

	if photo.FileSize > h.maxPhotoSize {
		h.sendMessage(chatID, fmt.Sprintf("❌ Фото слишком большое. Максимум — %d МБ.", h.maxPhotoSize/(1024*1024)))
		return
	}

	data, err := h.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		if errors.Is(err, common.ErrPhotoTooLarge) {
			h.sendMessage(chatID, fmt.Sprintf("❌ Фото слишком большое. Максимум — %d МБ.", h.maxPhotoSize/(1024*1024)))
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Ошибка скачивания фото")
		h.sendMessage(chatID, "❌ Не удалось обработать фото, попробуйте ещё раз")
		return
	}

	res, err := h.service.Submit(ctx, userID, data)
	if err != nil {
		if errors.Is(err, common.ErrDuplicatePhoto) {
			h.sendMessage(chatID, "⚠️ Это фото уже было использовано. Повторная отправка чужих или старых скриншотов карается вечным баном.")
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Ошибка зачёта фото")
		h.sendMessage(chatID, "❌ Не удалось засчитать фото, попробуйте ещё раз")
		return
	}

	h.forwardToAdmins(message)

	if res.Blocked {
		h.sendMessage(chatID, fmt.Sprintf(
			"✅ Фото принято! Баланс: %s.\nДо открытия доступа осталось: %d.",
			common.FormatComments(res.NewBalance), res.Remaining,
		))
	} else {
		h.sendMessage(chatID, fmt.Sprintf(
			"✅ Фото принято! Баланс: %s.\n🎉 Доступ к функциям бота открыт!",
			common.FormatComments(res.NewBalance),
		))
	}
}

// downloadPhoto скачивает файл с серверов Telegram.
func (h *Handler) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ссылки на файл: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания файла: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("сервер Telegram вернул статус %d", resp.StatusCode)
	}

	// Читаем на один байт больше лимита: так видно превышение
	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(h.maxPhotoSize)+1))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if len(data) > h.maxPhotoSize {
		return nil, common.ErrPhotoTooLarge
	}
	return data, nil
}

// forwardToAdmins пересылает фото всем админам на проверку честности.
// Ошибка пересылки одному админу не мешает остальным.
func (h *Handler) forwardToAdmins(message *tgbotapi.Message) {
	from := message.From
	caption := fmt.Sprintf("📸 Фото от %s (ID: %d)", displayName(from), from.ID)

	for _, adminID := range h.adminIDs {
		fwd := tgbotapi.NewForward(adminID, message.Chat.ID, message.MessageID)
		if _, err := h.bot.Send(fwd); err != nil {
			log.WithError(err).WithField("admin_id", adminID).Warn("Не удалось переслать фото админу")
			continue
		}
		note := tgbotapi.NewMessage(adminID, caption)
		if _, err := h.bot.Send(note); err != nil {
			log.WithError(err).WithField("admin_id", adminID).Warn("Не удалось отправить подпись админу")
		}
	}
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
