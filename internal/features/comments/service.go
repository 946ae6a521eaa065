// Package comments — service.go содержит бизнес-логику зачёта фото.
package comments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/common"
)

// Service засчитывает фото-доказательства.
type Service struct {
	repo      *Repository
	threshold int64
}

// NewService создаёт сервис зачёта фото.
func NewService(repo *Repository, threshold int64) *Service {
	return &Service{repo: repo, threshold: threshold}
}

// HashPhoto возвращает SHA-256 содержимого файла в hex.
// Один и тот же файл всегда даёт один и тот же хеш, по нему
// ловятся повторные отправки.
func HashPhoto(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Submit засчитывает фото пользователю и возвращает новый баланс.
// Содержимое фото не анализируется: честность проверяет админ по
// пересланной копии, обман карается вечным баном.
func (s *Service) Submit(ctx context.Context, userID int64, photo []byte) (*CreditResult, error) {
	hash := HashPhoto(photo)

	res, err := s.repo.Credit(ctx, userID, hash, s.threshold)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"hash":    hash[:12],
		"balance": res.NewBalance,
		"blocked": res.Blocked,
	}).Info("Фото засчитано")

	return res, nil
}

// PeriodStats возвращает число начислений за текущие неделю и месяц
// по московскому времени.
func (s *Service) PeriodStats(ctx context.Context) (weekCount, monthCount int64, err error) {
	week, month := PeriodOf(common.GetMoscowTime())
	return s.repo.CountForPeriods(ctx, week, month)
}
