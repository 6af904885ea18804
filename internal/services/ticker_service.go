package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ninja813/NFT-marketplace/internal/config"
	"github.com/ninja813/NFT-marketplace/internal/metrics"
	"github.com/ninja813/NFT-marketplace/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// EventStats carries the live sales ticker
const EventStats = "stats"

// TickerService periodically counts recent sales and broadcasts the figure
type TickerService struct {
	txs      TransactionStore
	hub      Broadcaster
	interval time.Duration
	window   time.Duration
	log      logrus.FieldLogger
	now      func() time.Time

	cron   *cron.Cron
	cancel context.CancelFunc
}

// NewTickerService creates a new TickerService
func NewTickerService(stores Stores, hub Broadcaster, cfg config.MarketConfig, log logrus.FieldLogger) *TickerService {
	if hub == nil {
		hub = nopBroadcaster{}
	}
	return &TickerService{
		txs:      stores.Transactions,
		hub:      hub,
		interval: cfg.TickerInterval.Duration,
		window:   cfg.TickerWindow.Duration,
		log:      log,
		now:      time.Now,
	}
}

// Tick counts sales inside the window ending now and broadcasts them
func (s *TickerService) Tick(ctx context.Context) (models.MarketStats, error) {
	now := s.now().UTC()
	n, err := s.txs.CountSince(ctx, models.TransactionSale, now.Add(-s.window))
	if err != nil {
		return models.MarketStats{}, fmt.Errorf("failed to count sales: %w", err)
	}

	stats := models.MarketStats{T: now, SalesLastHour: n}
	metrics.SetSalesInWindow(n)
	s.hub.Broadcast(EventStats, stats)
	return stats, nil
}

// Start runs one tick immediately and then schedules one per interval.
// Overlapping runs are skipped.
func (s *TickerService) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	run := func() {
		tickCtx, cancel := context.WithTimeout(ctx, s.interval)
		defer cancel()
		if _, err := s.Tick(tickCtx); err != nil && ctx.Err() == nil {
			s.log.WithError(err).Warn("Ticker run failed")
		}
	}

	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), run); err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule ticker: %w", err)
	}

	go run()
	s.cron.Start()
	s.log.WithField("interval", s.interval.String()).Info("Ticker started")
	return nil
}

// Stop cancels in-flight runs and waits for them to finish
func (s *TickerService) Stop() {
	if s.cron == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("Ticker stopped")
}
