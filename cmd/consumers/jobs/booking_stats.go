package jobs

import (
	"context"
	"log/slog"
	"time"

	"milan/internal/metrics"
	"milan/internal/models"
)

const BookingStatsInterval = time.Minute

// StatusCounter считает бронирования по статусу оплаты
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// BookingStatsJob периодически выгружает число бронирований по статусам в метрики
type BookingStatsJob struct {
	counter  StatusCounter
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

// NewBookingStatsJob creates a new booking stats job
func NewBookingStatsJob(counter StatusCounter, interval time.Duration) *BookingStatsJob {
	if interval <= 0 {
		interval = BookingStatsInterval
	}
	return &BookingStatsJob{
		counter:  counter,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the background job
func (j *BookingStatsJob) Start(ctx context.Context) {
	slog.Info("Starting booking stats job", "interval", j.interval)

	j.ticker = time.NewTicker(j.interval)

	// Run initial collection immediately
	go j.Collect(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.Collect(ctx)
			case <-ctx.Done():
				return
			case <-j.done:
				slog.Info("Booking stats job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *BookingStatsJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

// Collect reads the counts once and updates the milan_bookings gauge.
func (j *BookingStatsJob) Collect(ctx context.Context) map[string]int64 {
	counts, err := j.counter.CountByStatus(ctx)
	if err != nil {
		slog.Error("Failed to count bookings", "error", err)
		return nil
	}

	// статусы без строк тоже выставляем, иначе gauge хранит старое значение
	for _, status := range []string{models.PaymentStatusPending, models.PaymentStatusCompleted} {
		metrics.Bookings.WithLabelValues(status).Set(float64(counts[status]))
	}

	slog.Debug("Booking stats collected", "counts", counts)
	return counts
}
