package recorder

import (
	"context"

	"StockScope/internal/model"
)

// NoopRecorder is a no-op implementation used when no sink is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReport(_ context.Context, _ *model.Report) error { return nil }
func (n *NoopRecorder) Close() error                                          { return nil }
