package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-voice-translator/internal/domain/model"
	"telegram-voice-translator/internal/domain/ports/adapter"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase serves the ops API's view of pipeline health.
type StatsUseCase interface {
	Pipeline(ctx context.Context) (model.PipelineStats, error)
	Uptime() time.Duration
}

type statsUC struct {
	inspector adapter.PipelineInspector
	startedAt time.Time

	log *zerolog.Logger
}

func NewStatsUseCase(inspector adapter.PipelineInspector, logger *zerolog.Logger) *statsUC {
	return &statsUC{inspector: inspector, startedAt: time.Now(), log: logger}
}

func (s *statsUC) Pipeline(ctx context.Context) (model.PipelineStats, error) {
	return s.inspector.Stats(), nil
}

func (s *statsUC) Uptime() time.Duration {
	return time.Since(s.startedAt)
}
