package services

import (
	"context"
	"math"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/apexlaps/pitwall/internal/errors"
	"github.com/apexlaps/pitwall/internal/logger"
	"github.com/apexlaps/pitwall/pkg/iracing"
)

// DefaultCategory is the fallback used when a recap has no races or the
// most-raced category cannot be resolved against the category list. This is
// policy, not derived data; earlier deployments defaulted to road (id 2).
type DefaultCategory struct {
	CategoryID int
	Name       string
}

// SportsCarFallback is the current fallback category policy
var SportsCarFallback = DefaultCategory{CategoryID: 5, Name: "sports_car"}

// ChartSeries is a rating history series plus its most recent value,
// formatted for display. Safety rating points stay in raw 100x form so the
// dashboard can rescale per point.
type ChartSeries struct {
	Points       []iracing.ChartPoint `json:"points"`
	DisplayValue string               `json:"displayValue"`
}

// AggregatedDriverReport is the unified response consumed by the dashboard
type AggregatedDriverReport struct {
	Recap                 *iracing.MemberRecap  `json:"recap"`
	MemberInfo            iracing.MemberProfile `json:"memberInfo"`
	IRatingData           ChartSeries           `json:"iRatingData"`
	SafetyRatingData      ChartSeries           `json:"safetyRatingData"`
	AllCategories         []iracing.Category    `json:"allCategories"`
	YearlyStats           []iracing.YearlyStat  `json:"yearlyStats"`
	MostRacedCategoryName string                `json:"mostRacedCategoryName"`
}

// CategoryLister defines the category resolver dependency of ReportService
type CategoryLister interface {
	List(ctx context.Context) ([]iracing.Category, error)
}

// DriverViewRecorder defines the optional history dependency of ReportService
type DriverViewRecorder interface {
	RecordDriverView(ctx context.Context, custID int, displayName string) error
}

// ReportService builds the aggregated driver season report
type ReportService struct {
	log        logger.Logger
	client     iracing.Client
	categories CategoryLister
	views      DriverViewRecorder
	fallback   DefaultCategory
}

// NewReportService creates a new ReportService. views may be nil to disable
// the recently-viewed history.
func NewReportService(log logger.Logger, client iracing.Client, categories CategoryLister, views DriverViewRecorder) *ReportService {
	return &ReportService{
		log:        log,
		client:     client,
		categories: categories,
		views:      views,
		fallback:   SportsCarFallback,
	}
}

// SetFallbackCategory overrides the fallback category policy
func (s *ReportService) SetFallbackCategory(fallback DefaultCategory) {
	s.fallback = fallback
}

// BuildReport assembles the unified season report for one driver. The four
// independent fetches of the first batch run concurrently, as do the two
// chart fetches of the second batch. A failed category fetch degrades to an
// empty list and the fallback category; any other failed call aborts the
// whole report.
func (s *ReportService) BuildReport(ctx context.Context, custID, year, season int) (*AggregatedDriverReport, error) {
	if !s.client.HasCredentials() {
		return nil, errors.Configuration("Authentication secrets not configured")
	}

	var (
		recap         *iracing.MemberRecap
		profile       iracing.MemberProfile
		yearlyStats   []iracing.YearlyStat
		allCategories []iracing.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recap, err = s.client.MemberRecap(gctx, custID, year, season)
		if err != nil {
			return classifyUpstream(err, "season recap")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		profile, err = s.client.MemberProfile(gctx, custID)
		if err != nil {
			return classifyUpstream(err, "member profile")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		yearlyStats, err = s.client.MemberYearlyStats(gctx, custID)
		if err != nil {
			return classifyUpstream(err, "yearly stats")
		}
		return nil
	})
	g.Go(func() error {
		cats, err := s.categories.List(gctx)
		if err != nil {
			// Reference data is optional for the report: the dashboard can
			// render without the full list, and the fallback category covers
			// the chart lookup.
			s.log.Warn("Category list unavailable, degrading to empty list", "error", err)
			allCategories = []iracing.Category{}
			return nil
		}
		allCategories = cats
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if recap.Races == nil {
		recap.Races = []iracing.RaceRecord{}
	}
	if yearlyStats == nil {
		yearlyStats = []iracing.YearlyStat{}
	}
	if allCategories == nil {
		allCategories = []iracing.Category{}
	}

	mostRaced := s.mostRacedCategory(recap.Races, allCategories)

	var iRating, safetyRating *iracing.ChartData
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		iRating, err = s.client.ChartData(gctx, custID, mostRaced.CategoryID, iracing.ChartTypeIRating)
		if err != nil {
			return classifyUpstream(err, "iRating chart")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		safetyRating, err = s.client.ChartData(gctx, custID, mostRaced.CategoryID, iracing.ChartTypeSafetyRating)
		if err != nil {
			return classifyUpstream(err, "safety rating chart")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.views != nil && profile.DisplayName != "" {
		if err := s.views.RecordDriverView(ctx, custID, profile.DisplayName); err != nil {
			s.log.Warn("Failed to record driver view", "custId", custID, "error", err)
		}
	}

	return &AggregatedDriverReport{
		Recap:                 recap,
		MemberInfo:            profile,
		IRatingData:           buildChartSeries(iRating, false),
		SafetyRatingData:      buildChartSeries(safetyRating, true),
		AllCategories:         allCategories,
		YearlyStats:           yearlyStats,
		MostRacedCategoryName: mostRaced.Name,
	}, nil
}

// mostRacedCategory tallies races by normalized category key and resolves the
// winner against the category list. Ties break lexicographically by
// normalized key so the selection is deterministic. An empty race list, or a
// winning key absent from the category list, yields the fallback category.
func (s *ReportService) mostRacedCategory(races []iracing.RaceRecord, categories []iracing.Category) DefaultCategory {
	counts := make(map[string]int)
	for _, race := range races {
		key := NormalizeCategoryKey(race.Category)
		if key != "" {
			counts[key]++
		}
	}
	if len(counts) == 0 {
		return s.fallback
	}

	best := ""
	for key, count := range counts {
		switch {
		case best == "":
			best = key
		case count > counts[best]:
			best = key
		case count == counts[best] && key < best:
			best = key
		}
	}

	for _, cat := range categories {
		if NormalizeCategoryKey(cat.Label) == best {
			return DefaultCategory{CategoryID: cat.CategoryID, Name: best}
		}
	}
	return s.fallback
}

// buildChartSeries derives the display value from the last point of a series.
// Points arrive in chronological order from upstream and are not re-sorted.
func buildChartSeries(chart *iracing.ChartData, safetyRating bool) ChartSeries {
	points := chart.Points
	if points == nil {
		points = []iracing.ChartPoint{}
	}
	series := ChartSeries{Points: points}
	if len(points) > 0 {
		last := points[len(points)-1].Value
		if safetyRating {
			series.DisplayValue = SafetyRatingDisplay(last)
		} else {
			series.DisplayValue = strconv.Itoa(int(math.Round(last)))
		}
	}
	return series
}
