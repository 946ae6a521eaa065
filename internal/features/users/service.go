// Package users — service.go содержит бизнес-логику работы с пользователями.
// Сервис координирует регистрацию, проверку доступа и изменение балансов.
package users

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/common"
)

// Service управляет пользователями бота.
type Service struct {
	repo      *Repository
	threshold int64 // порог комментариев для открытия доступа
}

// NewService создаёт новый сервис пользователей.
func NewService(repo *Repository, threshold int64) *Service {
	return &Service{repo: repo, threshold: threshold}
}

// Threshold возвращает порог открытия доступа.
func (s *Service) Threshold() int64 {
	return s.threshold
}

// EnsureUser гарантирует, что пользователь есть в базе, и обновляет его
// имя/username/активность. Вызывается на каждое личное сообщение боту.
// Для вечно забаненного возвращает common.ErrPermanentlyBanned, ничего
// не записывая: бан не оставляет следов активности.
func (s *Service) EnsureUser(ctx context.Context, userID int64, username, firstName, lastName string) (*User, error) {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		if gateErr := Gate(existing); gateErr != nil {
			return existing, gateErr
		}
	} else if !errors.Is(err, common.ErrUserNotFound) {
		return nil, fmt.Errorf("ошибка проверки пользователя: %w", err)
	}

	u, err := s.repo.Upsert(ctx, userID, UpdateInfo{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка регистрации пользователя: %w", err)
	}
	return u, nil
}

// GetByUserID возвращает пользователя по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Search ищет пользователей по ID, @username или имени (для админки).
func (s *Service) Search(ctx context.Context, query string) ([]*User, error) {
	return s.repo.Search(ctx, query)
}

// HasAccess сообщает, открыты ли пользователю функции бота.
// Вечный бан закрывает всё независимо от баланса.
func (s *Service) HasAccess(u *User) bool {
	if u.IsPermanentlyBanned {
		return false
	}
	return !Blocked(u.CommentBalance, s.threshold)
}

// CommentsRemaining возвращает, сколько комментариев не хватает до доступа.
func (s *Service) CommentsRemaining(u *User) int64 {
	return Remaining(u.CommentBalance, s.threshold)
}

// AcceptRules отмечает согласие пользователя с правилами.
func (s *Service) AcceptRules(ctx context.Context, userID int64) error {
	return s.repo.SetRulesAccepted(ctx, userID)
}

// AdjustComments меняет баланс комментариев пользователя (админская правка).
// Флаг is_blocked пересчитывается всегда, в обе стороны: админ может
// и открыть доступ начислением, и закрыть списанием.
func (s *Service) AdjustComments(ctx context.Context, userID, delta int64) (*User, error) {
	u, err := s.repo.AdjustCommentBalance(ctx, userID, delta, s.threshold)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"delta":   delta,
		"balance": u.CommentBalance,
		"blocked": u.IsBlocked,
	}).Info("Баланс комментариев изменён")
	return u, nil
}

// AdjustMoney меняет денежный баланс пользователя.
func (s *Service) AdjustMoney(ctx context.Context, userID, delta int64) (*User, error) {
	u, err := s.repo.AdjustMoneyBalance(ctx, userID, delta)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"delta":   delta,
		"balance": u.MoneyBalance,
	}).Info("Денежный баланс изменён")
	return u, nil
}

// Ban навсегда банит пользователя. Команды разбана нет.
func (s *Service) Ban(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.SetPermanentBan(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.WithField("user_id", userID).Warn("Пользователь забанен навсегда")
	return u, nil
}

// RunWeeklyDecrement списывает у всех недельную норму комментариев
// и возвращает пользователей, потерявших доступ именно этим списанием.
func (s *Service) RunWeeklyDecrement(ctx context.Context, decrement int64) ([]Decayed, error) {
	affected, err := s.repo.WeeklyDecrement(ctx, decrement, s.threshold)
	if err != nil {
		return nil, err
	}

	var newlyBlocked []Decayed
	for _, d := range affected {
		if NewlyBlocked(d.OldBalance, d.NewBalance, s.threshold) {
			newlyBlocked = append(newlyBlocked, d)
		}
	}

	log.WithFields(log.Fields{
		"affected":      len(affected),
		"newly_blocked": len(newlyBlocked),
		"decrement":     decrement,
	}).Info("Еженедельное списание комментариев выполнено")

	return newlyBlocked, nil
}

// AudienceIDs возвращает получателей рассылки для категории.
// Для топов и случайной выборки count задаёт размер выборки.
func (s *Service) AudienceIDs(ctx context.Context, audience Audience, count int) ([]int64, error) {
	return s.repo.AudienceIDs(ctx, audience, count)
}

// AllUserIDs возвращает ID всех пользователей для экспорта.
func (s *Service) AllUserIDs(ctx context.Context) ([]int64, error) {
	return s.repo.AllUserIDs(ctx)
}

// GetStats возвращает сводную статистику для админки.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	return s.repo.GetStats(ctx)
}
