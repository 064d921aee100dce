package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/logging"
	"github.com/dmitrijs2005/siteadmin/internal/querycache"
	"github.com/dmitrijs2005/siteadmin/internal/server/models"
	"github.com/dmitrijs2005/siteadmin/internal/server/records"
)

const statisticsKey = "statistics"

// ErrNoStatistics is returned when the statistics table has no row.
var ErrNoStatistics = fmt.Errorf("no statistics record found: %w", common.ErrorNotFound)

// StatisticsService reads and updates the single statistics row.
type StatisticsService struct {
	repo   records.Repository[models.Statistics]
	cache  *querycache.Cache
	logger logging.Logger
	now    func() time.Time
}

func NewStatisticsService(repo records.Repository[models.Statistics], cache *querycache.Cache, logger logging.Logger, now func() time.Time) *StatisticsService {
	if cache == nil {
		cache = querycache.New(0)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &StatisticsService{
		repo:   repo,
		cache:  cache,
		logger: logger.With("module", "statistics"),
		now:    now,
	}
}

// Get returns the statistics row.
func (s *StatisticsService) Get(ctx context.Context) (*models.Statistics, error) {
	st, err := querycache.Fetch(ctx, s.cache, statisticsKey, s.repo.First)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNoStatistics
	}
	return st, err
}

// Update applies a partial change to the statistics row.
func (s *StatisticsService) Update(ctx context.Context, fields records.Fields) (*models.Statistics, error) {
	patch, err := StatisticsSchema.NormalizePatch(fields)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.First(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrNoStatistics
		}
		return nil, err
	}

	updated, err := s.repo.Update(ctx, current.ID, patch, s.now().UTC())
	if err != nil {
		s.logger.Error(ctx, "update failed", "error", err)
		return nil, err
	}

	s.cache.Invalidate(statisticsKey)
	return updated, nil
}
