package assessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dream-tool/internal/assessment"
	"dream-tool/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Record is one persisted, auditable run of the engine: the exact input and
// assumptions alongside the result they produced.
type Record struct {
	ID           string                   `json:"id"`
	FacilityName string                   `json:"facility_name"`
	CreatedAt    time.Time                `json:"created_at"`
	Profile      assessment.EnergyProfile `json:"profile"`
	Assumptions  assessment.Assumptions   `json:"assumptions"`
	Result       assessment.Comparison    `json:"result"`
}

type Store interface {
	SaveAssessment(rec *Record) error
}

type Publisher interface {
	Publish(rec *Record) error
}

type Request struct {
	FacilityName string                   `json:"facility_name"`
	Profile      assessment.EnergyProfile `json:"profile"`
	// Assumptions overrides the service defaults for this request only.
	Assumptions *assessment.Assumptions `json:"assumptions,omitempty"`
}

type Assessor struct {
	store       Store
	publisher   Publisher
	metrics     *metrics.Metrics
	assumptions assessment.Assumptions
	now         func() time.Time

	mu     sync.RWMutex
	latest *Record
}

type AssessorConfig struct {
	Store       Store
	Publisher   Publisher
	Metrics     *metrics.Metrics
	Assumptions assessment.Assumptions
}

func NewAssessor(cfg AssessorConfig) *Assessor {
	return &Assessor{
		store:       cfg.Store,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
		assumptions: cfg.Assumptions,
		now:         time.Now,
	}
}

func (a *Assessor) Assumptions() assessment.Assumptions {
	return a.assumptions
}

// Assess runs the engine, then persists and publishes the record. A storage
// failure fails the call; a publish failure is only logged.
func (a *Assessor) Assess(ctx context.Context, req Request) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	assumptions := a.assumptions
	if req.Assumptions != nil {
		assumptions = *req.Assumptions
	}

	start := a.now()
	result, err := assessment.Analyze(req.Profile, assumptions)
	elapsed := a.now().Sub(start)
	if err != nil {
		a.metrics.ObserveFailure(failureReason(err))
		return nil, err
	}

	rec := &Record{
		ID:           uuid.NewString(),
		FacilityName: req.FacilityName,
		CreatedAt:    start.UTC(),
		Profile:      req.Profile,
		Assumptions:  assumptions,
		Result:       result,
	}

	if a.store != nil {
		if err := a.store.SaveAssessment(rec); err != nil {
			a.metrics.ObserveFailure("storage")
			return nil, fmt.Errorf("failed to save assessment: %w", err)
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Publish(rec); err != nil {
			log.Warn().Err(err).Str("assessment_id", rec.ID).Msg("failed to publish assessment")
		}
	}

	a.metrics.ObserveSuccess(elapsed,
		string(result.PV.IRR.Status), string(result.Diesel.IRR.Status), result.Summary.LowerLifecycleCost)

	a.mu.Lock()
	a.latest = rec
	a.mu.Unlock()

	log.Info().
		Str("assessment_id", rec.ID).
		Str("facility", rec.FacilityName).
		Float64("pv_size_kw", result.PV.Sizing.PVSizeKw).
		Float64("generator_size_kw", result.Diesel.Sizing.GeneratorSizeKw).
		Float64("pv_lifecycle_cost", result.PV.LifecycleCost).
		Float64("diesel_lifecycle_cost", result.Diesel.LifecycleCost).
		Str("lower_lifecycle_cost", result.Summary.LowerLifecycleCost).
		Msg("assessment completed")

	return rec, nil
}

func (a *Assessor) Latest() *Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, assessment.ErrInvalidProfile):
		return "invalid_profile"
	case errors.Is(err, assessment.ErrInvalidAssumptions):
		return "invalid_assumptions"
	case errors.Is(err, assessment.ErrNumericOverflow):
		return "numeric_overflow"
	}
	return "error"
}
