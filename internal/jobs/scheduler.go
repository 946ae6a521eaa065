// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: еженедельное списание комментариев
// в полночь понедельника по Москве.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/rudeps/RudepsBot/internal/features/users"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron        *cron.Cron
	userService *users.Service
	decrement   int64
	sendFunc    func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
func NewScheduler(userService *users.Service, decrement int64, sendFunc func(userID int64, text string)) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:        c,
		userService: userService,
		decrement:   decrement,
		sendFunc:    sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Еженедельное списание: понедельник 00:00 по Москве
	s.cron.AddFunc("0 0 * * 1", func() {
		log.Info("[CRON] Еженедельное списание комментариев")
		if err := s.runWeeklyDecrement(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка списания")
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// runWeeklyDecrement списывает недельную норму и уведомляет только тех,
// кто потерял доступ именно этим списанием.
func (s *Scheduler) runWeeklyDecrement(ctx context.Context) error {
	newlyBlocked, err := s.userService.RunWeeklyDecrement(ctx, s.decrement)
	if err != nil {
		return err
	}

	for _, d := range newlyBlocked {
		s.sendFunc(d.UserID, fmt.Sprintf(
			"📉 Еженедельное списание: -%d комментариев, на балансе %d.\n"+
				"Доступ к функциям бота закрыт. Присылайте новые фото комментариев, чтобы открыть его снова!",
			s.decrement, d.NewBalance,
		))
	}
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
