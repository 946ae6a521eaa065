// Package withdraw — service.go содержит бизнес-логику заявок на вывод.
package withdraw

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/common"
)

// Service управляет заявками на вывод средств.
type Service struct {
	repo     *Repository
	minCard  int64
	minPhone int64
}

// NewService создаёт сервис вывода средств.
func NewService(repo *Repository, minCard, minPhone int64) *Service {
	return &Service{
		repo:     repo,
		minCard:  minCard,
		minPhone: minPhone,
	}
}

// MinAmount возвращает минимальную сумму вывода для способа.
func (s *Service) MinAmount(method Method) int64 {
	if method == MethodPhone {
		return s.minPhone
	}
	return s.minCard
}

// MinEntry возвращает нижнюю из минимальных сумм. С балансом меньше неё
// начинать заявку нет смысла ни одним способом.
func (s *Service) MinEntry() int64 {
	if s.minPhone < s.minCard {
		return s.minPhone
	}
	return s.minCard
}

// ValidateAmount проверяет сумму заявки против минимума и баланса.
func (s *Service) ValidateAmount(method Method, amount, balance int64) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	if amount < s.MinAmount(method) {
		return fmt.Errorf("минимум %s: %w", common.FormatMoney(s.MinAmount(method)), common.ErrInvalidAmount)
	}
	if amount > balance {
		return common.ErrInsufficientBalance
	}
	return nil
}

// Create регистрирует заявку. Деньги при этом НЕ замораживаются:
// списание произойдёт при одобрении.
func (s *Service) Create(ctx context.Context, userID int64, method Method, amount int64, details string) (*Withdrawal, error) {
	w, err := s.repo.Create(ctx, userID, method, amount, details)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"withdrawal_id": w.ID,
		"user_id":       userID,
		"method":        method,
		"amount":        amount,
	}).Info("Создана заявка на вывод")
	return w, nil
}

// Approve одобряет заявку и списывает деньги.
func (s *Service) Approve(ctx context.Context, id, adminID int64) (*Withdrawal, error) {
	w, err := s.repo.Approve(ctx, id, adminID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"withdrawal_id": id,
		"admin_id":      adminID,
		"amount":        w.Amount,
	}).Info("Заявка на вывод одобрена")
	return w, nil
}

// Reject отклоняет заявку с причиной.
func (s *Service) Reject(ctx context.Context, id, adminID int64, reason string) (*Withdrawal, error) {
	w, err := s.repo.Reject(ctx, id, adminID, reason)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"withdrawal_id": id,
		"admin_id":      adminID,
	}).Info("Заявка на вывод отклонена")
	return w, nil
}

// GetByID возвращает заявку.
func (s *Service) GetByID(ctx context.Context, id int64) (*Withdrawal, error) {
	return s.repo.GetByID(ctx, id)
}

// RememberTicket сохраняет сообщение-заявку админа.
func (s *Service) RememberTicket(ctx context.Context, withdrawalID, adminID int64, messageID int) error {
	return s.repo.AddTicket(ctx, withdrawalID, adminID, messageID)
}

// Tickets возвращает сообщения-заявки по выводу.
func (s *Service) Tickets(ctx context.Context, withdrawalID int64) ([]Ticket, error) {
	return s.repo.GetTickets(ctx, withdrawalID)
}

// Pending возвращает все необработанные заявки, старые первыми.
func (s *Service) Pending(ctx context.Context) ([]*Withdrawal, error) {
	return s.repo.ListPending(ctx)
}

// CountPending возвращает число необработанных заявок.
func (s *Service) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountPending(ctx)
}
