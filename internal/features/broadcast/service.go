// Package broadcast — service.go содержит бизнес-логику рассылок.
package broadcast

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/features/users"
)

// Service управляет рассылками и наградами за задания.
type Service struct {
	repo  *Repository
	users *users.Service
}

// NewService создаёт сервис рассылок.
func NewService(repo *Repository, usersService *users.Service) *Service {
	return &Service{repo: repo, users: usersService}
}

// Create сохраняет рассылку и возвращает список получателей.
// Для топов и случайной выборки count задаёт запрошенное число получателей.
func (s *Service) Create(ctx context.Context, adminID int64, audience users.Audience, count int, text, link string, reward int64) (*Broadcast, []int64, error) {
	b, err := s.repo.Create(ctx, adminID, audience, count, text, link, reward)
	if err != nil {
		return nil, nil, err
	}

	recipients, err := s.users.AudienceIDs(ctx, audience, count)
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"broadcast_id": b.ID,
		"audience":     audience,
		"requested":    count,
		"recipients":   len(recipients),
		"reward":       reward,
	}).Info("Рассылка создана")

	return b, recipients, nil
}

// SaveTallies записывает итоги отправки.
func (s *Service) SaveTallies(ctx context.Context, id int64, sent, failed int) error {
	return s.repo.SaveTallies(ctx, id, sent, failed)
}

// ClaimReward начисляет награду за выполненное задание.
// Возвращает фактически начисленную сумму из БД.
func (s *Service) ClaimReward(ctx context.Context, broadcastID, userID int64) (int64, error) {
	reward, err := s.repo.ClaimReward(ctx, broadcastID, userID)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"broadcast_id": broadcastID,
		"user_id":      userID,
		"reward":       reward,
	}).Info("Награда за задание начислена")
	return reward, nil
}
