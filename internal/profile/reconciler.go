// Package profile merges VIN decode, economy and safety data into one CarProfile.
package profile

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"carwise/internal/core"
	"carwise/internal/providers/autodev"
	"carwise/internal/providers/carquery"
	"carwise/internal/providers/nhtsa"
)

// buildTimeout bounds one shared profile build: two concurrent stages of
// adapter calls, each adapter capped at its own request timeout.
const buildTimeout = 45 * time.Second

// PrimaryDecoder is the mandatory VIN source.
type PrimaryDecoder interface {
	DecodeVIN(ctx context.Context, vin string) (autodev.VINDecode, core.Outcome, error)
}

// SecondaryDecoder is the best-effort VIN source.
type SecondaryDecoder interface {
	DecodeVIN(ctx context.Context, vin string, modelYear *int) (nhtsa.VPICRecord, core.Outcome)
}

// EconomySource supplies trim-level fuel economy.
type EconomySource interface {
	Economy(ctx context.Context, year int, vehicleMake, vehicleModel string) (carquery.Economy, core.Outcome)
}

// SafetySource supplies overall crash-test stars.
type SafetySource interface {
	OverallRating(ctx context.Context, year int, vehicleMake, vehicleModel string) (*int, core.Outcome)
}

// Reconciler builds CarProfiles. Profiles are recomputed on every call from
// the adapters' cached results; they are never cached themselves.
type Reconciler struct {
	primary   PrimaryDecoder
	secondary SecondaryDecoder
	economy   EconomySource
	safety    SafetySource

	// inflight collapses concurrent builds for the same VIN.
	inflight singleflight.Group
}

// NewReconciler creates a Reconciler over the four sources.
func NewReconciler(primary PrimaryDecoder, secondary SecondaryDecoder, economy EconomySource, safety SafetySource) *Reconciler {
	return &Reconciler{
		primary:   primary,
		secondary: secondary,
		economy:   economy,
		safety:    safety,
	}
}

// decoded holds both VIN decode results for the precedence chains.
type decoded struct {
	primary   autodev.VINDecode
	secondary nhtsa.VPICRecord
}

// BuildProfile decodes vin with both decoders concurrently, resolves identity
// through the precedence chains, then fetches economy and safety concurrently
// when year, make and model are known. Only the primary decoder can fail the call.
//
// Concurrent calls for one VIN share a single build. The shared build is
// detached from any one caller's cancellation and bounded by buildTimeout;
// each caller still returns as soon as its own ctx is done.
func (r *Reconciler) BuildProfile(ctx context.Context, vin string) (core.CarProfile, error) {
	ch := r.inflight.DoChan(vin, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()
		return r.build(buildCtx, vin)
	})

	select {
	case <-ctx.Done():
		return core.CarProfile{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return core.CarProfile{}, res.Err
		}
		return res.Val.(core.CarProfile), nil
	}
}

func (r *Reconciler) build(ctx context.Context, vin string) (core.CarProfile, error) {
	var d decoded

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.primary, _, err = r.primary.DecodeVIN(gctx, vin)
		return err
	})
	g.Go(func() error {
		var outcome core.Outcome
		d.secondary, outcome = r.secondary.DecodeVIN(gctx, vin, nil)
		if outcome != core.OutcomeOK {
			slog.Debug("secondary decode degraded", "vin", vin)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.CarProfile{}, err
	}

	identity := core.VehicleIdentity{
		Year:  resolve(d, "year", yearChain),
		Make:  resolve(d, "make", makeChain),
		Model: resolve(d, "model", modelChain),
		Trim:  resolve(d, "trim", trimChain),
	}

	economy := carquery.Economy{Profile: core.EmptyEconomy()}
	safety := core.SafetyRating{Source: core.SafetySourceNone}

	if identity.Complete() {
		year, vehicleMake, vehicleModel := *identity.Year, *identity.Make, *identity.Model

		// Both lookups are best-effort and never return errors.
		var eg errgroup.Group
		eg.Go(func() error {
			economy, _ = r.economy.Economy(ctx, year, vehicleMake, vehicleModel)
			return nil
		})
		eg.Go(func() error {
			if stars, outcome := r.safety.OverallRating(ctx, year, vehicleMake, vehicleModel); outcome == core.OutcomeOK && stars != nil {
				safety = core.SafetyRating{Stars: stars, Source: core.SafetySourceNHTSA}
			}
			return nil
		})
		_ = eg.Wait()
	} else {
		slog.Info("identity incomplete, skipping economy and safety lookups",
			"vin", vin, "has_year", identity.Year != nil,
			"has_make", identity.Make != nil, "has_model", identity.Model != nil)
	}

	return core.CarProfile{
		VIN:             vin,
		VehicleIdentity: identity,
		BodyType:        d.primary.Type,
		Origin:          d.primary.Origin,
		Engine:          buildEngine(d.secondary, economy.FuelType),
		Economy:         economy.Profile,
		Safety:          safety,
	}, nil
}

func buildEngine(rec nhtsa.VPICRecord, economyFuel *string) core.EngineSpec {
	fuel := economyFuel
	if fuel == nil {
		fuel = rec.FuelTypePrimary
	}
	return core.EngineSpec{
		DisplacementLiters: core.ParseOptionalFloat(deref(rec.DisplacementL)),
		Cylinders:          core.ParseOptionalInt(deref(rec.EngineCylinders)),
		Horsepower:         core.ParseOptionalInt(deref(rec.EngineHP)),
		FuelType:           fuel,
	}
}

// deref turns a nil *string into an untyped nil so the parse helpers see "absent".
func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
