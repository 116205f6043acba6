package logger_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

func observed(level zapcore.Level) (*logger.ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logger.NewFromZap(zap.New(core)), logs
}

func TestZapLogger_Fields(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	log.WithFields(interfaces.String("component", "loader")).
		Info("movies loaded", interfaces.Int("count", 3), interfaces.Error(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "movies loaded", entry.Message)

	ctx := entry.ContextMap()
	assert.Equal(t, "loader", ctx["component"])
	assert.EqualValues(t, 3, ctx["count"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_WithContextAddsRequestID(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	ctx := logger.WithRequestID(context.Background(), "req-42")
	log.WithContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-42", logs.All()[0].ContextMap()["request_id"])
}

func TestConfig_Build(t *testing.T) {
	cfg := logger.DefaultConfig()
	cfg.Level = "not-a-level"
	cfg.InitialFields = map[string]interface{}{"service": "catalog"}

	l, err := cfg.Build()
	require.NoError(t, err)
	assert.NotNil(t, l.Zap())
	assert.True(t, l.Zap().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Zap().Core().Enabled(zapcore.DebugLevel))
}

func TestFromContext(t *testing.T) {
	noop := logger.NewNoop()
	ctx := logger.WithContext(context.Background(), noop)
	assert.Same(t, noop, logger.FromContext(ctx))
}

func TestHTTPMiddleware(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(logger.HTTPMiddleware(log))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	for _, path := range []string{"/ok", "/missing"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "HTTP request completed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusNotFound, entries[1].ContextMap()["status"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}

func TestUnaryServerInterceptor(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	interceptor := logger.UnaryServerInterceptor(log)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "nope")
	})
	require.Error(t, err)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gRPC request failed", logs.All()[0].Message)
	assert.Equal(t, "NotFound", logs.All()[0].ContextMap()["status"])
}

func TestRecoveryInterceptors(t *testing.T) {
	log, logs := observed(zapcore.ErrorLevel)

	unary := logger.UnaryRecoveryInterceptor(log)
	_, err := unary(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			panic("boom")
		})
	assert.Equal(t, codes.Internal, status.Code(err))

	stream := logger.StreamRecoveryInterceptor(log)
	err = stream(nil, nil, &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"},
		func(srv interface{}, ss grpc.ServerStream) error {
			panic("boom")
		})
	assert.Equal(t, codes.Internal, status.Code(err))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "Panic recovered", logs.All()[0].Message)
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["panic"])
	assert.Equal(t, "/grpc.health.v1.Health/Watch", logs.All()[1].ContextMap()["method"])
}
