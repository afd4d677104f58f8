package logctx

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	observability.Logger
	fields []observability.Field
}

func (l *recordingLogger) With(fields ...observability.Field) observability.Logger {
	return &recordingLogger{Logger: observability.NopLogger(), fields: append(append([]observability.Field(nil), l.fields...), fields...)}
}

func TestFromOrFallback(t *testing.T) {
	fallback := &recordingLogger{Logger: observability.NopLogger()}
	assert.Same(t, fallback, FromOr(context.Background(), fallback))
	assert.NotNil(t, FromOr(context.Background(), nil))

	ctx := With(context.Background(), fallback)
	assert.Same(t, fallback, From(ctx))
}

func TestEnrichStoresLogger(t *testing.T) {
	base := &recordingLogger{Logger: observability.NopLogger()}
	ctx, logger := Enrich(context.Background(), base, observability.F("use_case", "order.create"))

	got, ok := From(ctx).(*recordingLogger)
	require.True(t, ok)
	assert.Same(t, logger, got)
	require.Len(t, got.fields, 1)
	assert.Equal(t, "use_case", got.fields[0].Key)
}
