package profile

import (
	"context"

	"carwise/internal/core"
)

// Builder is anything that can produce a CarProfile for a VIN.
type Builder interface {
	BuildProfile(ctx context.Context, vin string) (core.CarProfile, error)
}

// Service is the VIN lookup surface used by the HTTP and CLI layers.
type Service struct {
	builder Builder
}

// NewService wraps a Builder.
func NewService(builder Builder) *Service {
	return &Service{builder: builder}
}

// Lookup builds the profile for vin. A profile without a resolved, non-zero
// year is reported as a NotFoundError.
func (s *Service) Lookup(ctx context.Context, vin string) (core.CarProfile, error) {
	if vin == "" {
		return core.CarProfile{}, core.NewInvalidRequestError("vin is required", nil)
	}
	p, err := s.builder.BuildProfile(ctx, vin)
	if err != nil {
		return core.CarProfile{}, err
	}
	if p.Year == nil || *p.Year == 0 {
		return core.CarProfile{}, core.NewNotFoundError("Could not decode VIN")
	}
	return p, nil
}

// Summary is Lookup followed by Summarize.
func (s *Service) Summary(ctx context.Context, vin string) (string, error) {
	p, err := s.Lookup(ctx, vin)
	if err != nil {
		return "", err
	}
	return Summarize(p), nil
}
