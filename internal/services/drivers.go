package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/apexlaps/pitwall/internal/errors"
	"github.com/apexlaps/pitwall/internal/logger"
	"github.com/apexlaps/pitwall/pkg/iracing"
)

// DriverService handles driver lookup and subsession result pass-through
type DriverService struct {
	log    logger.Logger
	client iracing.Client
}

// NewDriverService creates a new DriverService
func NewDriverService(log logger.Logger, client iracing.Client) *DriverService {
	return &DriverService{log: log, client: client}
}

// Search returns driver identities matching a free-text query
func (s *DriverService) Search(ctx context.Context, term string) ([]iracing.Driver, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.Validation("search term must not be empty")
	}
	if !s.client.HasCredentials() {
		return nil, errors.Configuration("Authentication secrets not configured")
	}

	drivers, err := s.client.SearchDrivers(ctx, term)
	if err != nil {
		return nil, classifyUpstream(err, "driver search")
	}
	if drivers == nil {
		drivers = []iracing.Driver{}
	}
	return drivers, nil
}

// SubsessionResult returns the full per-entrant result set of one race,
// forwarded without transformation.
func (s *DriverService) SubsessionResult(ctx context.Context, subsessionID int) (json.RawMessage, error) {
	if !s.client.HasCredentials() {
		return nil, errors.Configuration("Authentication secrets not configured")
	}

	result, err := s.client.SubsessionResult(ctx, subsessionID)
	if err != nil {
		return nil, classifyUpstream(err, "subsession result")
	}
	return result, nil
}
