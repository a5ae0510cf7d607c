package services

import (
	"context"
	"testing"

	"github.com/apexlaps/pitwall/internal/errors"
	"github.com/apexlaps/pitwall/internal/logger"
	"github.com/apexlaps/pitwall/pkg/iracing"
)

func TestListSeasons_FourQuartersPerYear(t *testing.T) {
	client := iracing.NewMockClient(
		iracing.WithYearlyStats([]iracing.YearlyStat{
			{Year: 2024},
			{Year: 2022},
			{Year: 2023},
		}),
	)
	svc := NewSeasonService(logger.Noop{}, client)

	seasons, err := svc.ListSeasons(context.Background(), 123)
	if err != nil {
		t.Fatalf("ListSeasons failed: %v", err)
	}
	if len(seasons) != 12 {
		t.Fatalf("expected 12 seasons, got %d", len(seasons))
	}
	// Years ascending, quarters 1..4 within each year
	want := []SeasonRef{
		{2022, 1}, {2022, 2}, {2022, 3}, {2022, 4},
		{2023, 1}, {2023, 2}, {2023, 3}, {2023, 4},
		{2024, 1}, {2024, 2}, {2024, 3}, {2024, 4},
	}
	for i, ref := range want {
		if seasons[i] != ref {
			t.Errorf("seasons[%d] = %+v, want %+v", i, seasons[i], ref)
		}
	}
}

func TestListSeasons_DuplicateAndZeroYears(t *testing.T) {
	client := iracing.NewMockClient(
		iracing.WithYearlyStats([]iracing.YearlyStat{
			{Year: 2024},
			{Year: 2024},
			{Year: 0},
		}),
	)
	svc := NewSeasonService(logger.Noop{}, client)

	seasons, err := svc.ListSeasons(context.Background(), 123)
	if err != nil {
		t.Fatalf("ListSeasons failed: %v", err)
	}
	if len(seasons) != 4 {
		t.Errorf("expected 4 seasons for one distinct year, got %d", len(seasons))
	}
}

func TestListSeasons_NoStats(t *testing.T) {
	svc := NewSeasonService(logger.Noop{}, iracing.NewMockClient())

	seasons, err := svc.ListSeasons(context.Background(), 123)
	if err != nil {
		t.Fatalf("ListSeasons failed: %v", err)
	}
	if seasons == nil || len(seasons) != 0 {
		t.Errorf("expected non-nil empty list, got %v", seasons)
	}
}

func TestListSeasons_UpstreamFailure(t *testing.T) {
	client := iracing.NewMockClient(
		iracing.WithYearlyStatsError(&iracing.StatusError{Code: 503, Body: "down"}),
	)
	svc := NewSeasonService(logger.Noop{}, client)

	_, err := svc.ListSeasons(context.Background(), 123)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.KindOf(err) != errors.ErrUpstreamData {
		t.Errorf("expected UpstreamData kind, got %v", errors.KindOf(err))
	}
}
