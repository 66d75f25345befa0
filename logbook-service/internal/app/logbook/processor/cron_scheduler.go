package processor

import (
	"context"
	"sync"

	"stoutlog/logbook-service/internal/app/logbook/service"
	"stoutlog/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически удаляет загрузки без ссылок
type CronScheduler struct {
	cron    *cron.Cron
	sweeper service.UploadSweeperInterface
	initial sync.WaitGroup
}

func NewCronScheduler(sweeper service.UploadSweeperInterface) *CronScheduler {
	c := cron.New(cron.WithLogger(cronLogger{}))

	return &CronScheduler{
		cron:    c,
		sweeper: sweeper,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.runSweep(ctx, "scheduled")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	// первый проход в фоне: листинг бакета не должен задерживать старт HTTP
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.runSweep(ctx, "initial")
	}()

	return nil
}

func (s *CronScheduler) runSweep(ctx context.Context, trigger string) {
	removed, err := s.sweeper.Sweep(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("trigger", trigger).Msg("Upload sweep failed")
		return
	}
	logger.Debug().Str("trigger", trigger).Int("removed", removed).Msg("Upload sweep finished")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.initial.Wait()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger пишет внутренние сообщения cron через zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
