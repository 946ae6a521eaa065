// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки пользователей и доступа
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrPermanentlyBanned — пользователь навсегда забанен
	ErrPermanentlyBanned = errors.New("пользователь заблокирован навсегда")
)

// Ошибки обработки фото
var (
	// ErrDuplicatePhoto — такое фото уже присылали (совпал хеш)
	ErrDuplicatePhoto = errors.New("это фото уже было использовано")
	// ErrPhotoTooLarge — фото превышает допустимый размер
	ErrPhotoTooLarge = errors.New("фото слишком большое")
)

// Ошибки баланса и вывода средств
var (
	// ErrInsufficientBalance — недостаточно средств на счёте
	ErrInsufficientBalance = errors.New("недостаточно средств на счёте")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrWithdrawalNotFound — заявка на вывод не найдена
	ErrWithdrawalNotFound = errors.New("заявка на вывод не найдена")
	// ErrWithdrawalAlreadyClosed — заявка уже обработана другим админом
	ErrWithdrawalAlreadyClosed = errors.New("заявка уже обработана")
)

// Ошибки рассылок
var (
	// ErrBroadcastNotFound — рассылка не найдена
	ErrBroadcastNotFound = errors.New("рассылка не найдена")
	// ErrRewardAlreadyClaimed — награда за эту рассылку уже получена
	ErrRewardAlreadyClaimed = errors.New("награда уже получена")
)
