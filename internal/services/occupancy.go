package services

import (
	"context"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/ridemap/admin-server/internal/cache"
	"github.com/ridemap/admin-server/internal/metrics"
	"github.com/ridemap/admin-server/internal/models"
	"github.com/ridemap/admin-server/internal/store"
	"github.com/ridemap/admin-server/internal/utils"
)

// OccupancyService computes per-bus rider counts and the gender split for
// the dashboard. The report is recomputed only when the BusCounts snapshot
// is absent; bus mutations elsewhere invalidate it.
type OccupancyService struct {
	gateway    store.Gateway
	institutes *InstituteService
	cache      *cache.Store
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewOccupancyService(gateway store.Gateway, institutes *InstituteService, cacheStore *cache.Store, m *metrics.Metrics, log *zap.Logger) *OccupancyService {
	return &OccupancyService{
		gateway:    gateway,
		institutes: institutes,
		cache:      cacheStore,
		metrics:    m,
		log:        log,
	}
}

// Report returns the occupancy aggregate for an institute. Output rows are
// in the same order as the institute's bus list, one row per bus. A single
// bus count failing is logged and reported as zero without aborting the
// rest, and such a degraded report is never cached; only a bus-list or
// gender-count failure fails the whole report.
func (s *OccupancyService) Report(ctx context.Context, institute string) (*models.OccupancyReport, error) {
	key := cache.Key{Institute: institute, Collection: cache.BusCounts}
	if report, ok := cache.Get[*models.OccupancyReport](s.cache, key); ok {
		return report, nil
	}

	busses, err := s.institutes.Busses(ctx, institute)
	if err != nil {
		return nil, err
	}

	tasks := make([]func() (int64, error), 0, len(busses)+1)
	for _, busNo := range busses {
		busNo := busNo
		tasks = append(tasks, func() (int64, error) {
			return s.gateway.CountUsersByBus(ctx, institute, busNo)
		})
	}
	tasks = append(tasks, func() (int64, error) {
		return s.gateway.CountUsersByGender(ctx, institute, models.GenderMale)
	})

	counts, errs := utils.RunParallel(tasks)

	report := &models.OccupancyReport{
		Buses: make([]models.BusUserCount, len(busses)),
	}
	degraded := false
	for i, busNo := range busses {
		count := counts[i]
		if errs[i] != nil {
			degraded = true
			s.log.Warn("bus count query failed",
				zap.String("institute", institute),
				zap.String("busNo", busNo),
				zap.Error(errs[i]))
			sentry.CaptureException(errs[i])
			s.metrics.BusCountFailures.Inc()
			count = 0
		}
		report.Buses[i] = models.BusUserCount{
			BusName:      busNo,
			UserCount:    count,
			OverCapacity: count >= models.BusCapacity,
		}
		report.Total += count
	}

	maleIdx := len(busses)
	if errs[maleIdx] != nil {
		return nil, errs[maleIdx]
	}
	report.MaleCount = counts[maleIdx]
	report.FemaleCount = report.Total - report.MaleCount

	// A report with zeroed-out failed rows is served once but never cached,
	// so the next request retries the counts.
	if !degraded {
		cache.Put(s.cache, key, report)
	}
	s.metrics.OccupancyRecomputes.Inc()
	return report, nil
}
