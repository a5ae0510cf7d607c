package services

import (
	"context"
	"sort"

	"github.com/apexlaps/pitwall/internal/logger"
	"github.com/apexlaps/pitwall/pkg/iracing"
)

// SeasonRef identifies one selectable year/quarter pair
type SeasonRef struct {
	Year   int `json:"year"`
	Season int `json:"season"`
}

// SeasonService expands a driver's yearly stats into the list of season
// quarters the dashboard can select from.
type SeasonService struct {
	log    logger.Logger
	client iracing.Client
}

// NewSeasonService creates a new SeasonService
func NewSeasonService(log logger.Logger, client iracing.Client) *SeasonService {
	return &SeasonService{log: log, client: client}
}

// ListSeasons returns one entry per season quarter for every year the driver
// has yearly stats, years ascending. Upstream does not say which quarters the
// driver actually raced, so all four are offered for each active year.
func (s *SeasonService) ListSeasons(ctx context.Context, custID int) ([]SeasonRef, error) {
	stats, err := s.client.MemberYearlyStats(ctx, custID)
	if err != nil {
		return nil, classifyUpstream(err, "yearly stats")
	}

	years := make(map[int]bool)
	for _, stat := range stats {
		if stat.Year != 0 {
			years[stat.Year] = true
		}
	}
	sorted := make([]int, 0, len(years))
	for year := range years {
		sorted = append(sorted, year)
	}
	sort.Ints(sorted)

	seasons := make([]SeasonRef, 0, len(sorted)*4)
	for _, year := range sorted {
		for quarter := 1; quarter <= 4; quarter++ {
			seasons = append(seasons, SeasonRef{Year: year, Season: quarter})
		}
	}
	return seasons, nil
}
