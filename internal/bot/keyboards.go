// Package bot — keyboards.go собирает клавиатуры главного меню и правил.
package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Кнопки главного меню пользователя.
const (
	ButtonSubmitPhoto = "📸 Отправить фото"
	ButtonBalance     = "💰 Мой баланс"
	ButtonWithdraw    = "💸 Вывести деньги"
	ButtonHelp        = "ℹ️ Помощь"
	ButtonCancel      = "❌ Отмена"
)

// Callback-данные кнопок правил.
const (
	CallbackRulesAccept  = "rules_accept"
	CallbackRulesDecline = "rules_decline"
)

// mainMenuKeyboard — постоянная клавиатура пользователя.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonSubmitPhoto),
			tgbotapi.NewKeyboardButton(ButtonBalance),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonWithdraw),
			tgbotapi.NewKeyboardButton(ButtonHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// cancelKeyboard — клавиатура с единственной кнопкой отмены,
// показывается во время ожидания фото.
func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCancel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// rulesKeyboard — инлайн-кнопки согласия с правилами.
func rulesKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Принимаю", CallbackRulesAccept),
			tgbotapi.NewInlineKeyboardButtonData("❌ Не принимаю", CallbackRulesDecline),
		),
	)
}
