// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

// Package rtotel provides OpenTelemetry instrumentation for rtorrent RPC
// clients. It implements the [rtrpc.CallHook] interface to add distributed
// tracing and metrics to every round trip, single-field and multicall alike.
//
// Usage:
//
//	server := rtrpc.NewServer("http://localhost:8080/RPC2")
//	rtotel.InstrumentServer(server, rtotel.DefaultConfig())
package rtotel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rtorrentlib/rtorrent-rpc/rtrpc"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "rtorrent_rpc"

// Config configures OpenTelemetry instrumentation for an rtorrent client.
type Config struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// EnableTracing enables span creation. Default true.
	EnableTracing bool
	// EnableMetrics enables counter and histogram recording. Default true.
	EnableMetrics bool
	// RecordExceptions calls RecordError on the span for failed calls.
	// Default true.
	RecordExceptions bool
	// CustomAttributes are added to every span.
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig returns a Config with sensible defaults. TracerProvider and
// MeterProvider are resolved from the global OTel SDK at instrumentation
// time.
func DefaultConfig() Config {
	return Config{
		EnableTracing:    true,
		EnableMetrics:    true,
		RecordExceptions: true,
	}
}

// InstrumentServer attaches OpenTelemetry instrumentation to a server
// handle. The hook is installed via [rtrpc.Server.SetCallHook].
func InstrumentServer(server *rtrpc.Server, cfg Config) {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	hook := &otelHook{
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}

	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		hook.requestCounter, _ = meter.Int64Counter("rpc.client.requests",
			metric.WithUnit("{request}"),
			metric.WithDescription("Number of RPC round trips"),
		)
		hook.durationHistogram, _ = meter.Float64Histogram("rpc.client.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of RPC round trips"),
		)
	}

	server.SetCallHook(hook)
}

// otelHook implements rtrpc.CallHook with OpenTelemetry tracing and metrics.
type otelHook struct {
	cfg               Config
	tracer            trace.Tracer
	requestCounter    metric.Int64Counter
	durationHistogram metric.Float64Histogram
}

// spanToken is the HookToken returned by OnCallStart.
type spanToken struct {
	span      trace.Span
	startTime time.Time
}

// OnCallStart starts a client span for the round trip.
func (h *otelHook) OnCallStart(ctx context.Context, info rtrpc.CallInfo) (context.Context, rtrpc.HookToken) {
	if !h.cfg.EnableTracing {
		return ctx, &spanToken{startTime: time.Now()}
	}

	spanName := fmt.Sprintf("rtorrent/%s", info.Method)

	attrs := []attribute.KeyValue{
		attribute.String("rpc.system", "xmlrpc"),
		attribute.String("rpc.method", info.Method),
		attribute.String("server.address", info.Endpoint),
		attribute.Bool("rpc.rtorrent.batched", info.Batched),
	}
	if info.Batched {
		attrs = append(attrs, attribute.Int("rpc.rtorrent.columns", info.Columns))
	}
	attrs = append(attrs, h.cfg.CustomAttributes...)

	ctx, span := h.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, &spanToken{span: span, startTime: time.Now()}
}

// OnCallEnd records span attributes, metrics, and ends the span.
func (h *otelHook) OnCallEnd(ctx context.Context, token rtrpc.HookToken, info rtrpc.CallInfo, stats *rtrpc.CallStatistics, err error) {
	st, ok := token.(*spanToken)
	if !ok {
		return
	}

	duration := time.Since(st.startTime)

	status := "ok"
	if err != nil {
		status = "error"
	}

	if h.cfg.EnableMetrics {
		metricAttrs := metric.WithAttributes(
			attribute.String("rpc.system", "xmlrpc"),
			attribute.String("rpc.method", info.Method),
			attribute.Bool("rpc.rtorrent.batched", info.Batched),
			attribute.String("status", status),
		)
		if h.requestCounter != nil {
			h.requestCounter.Add(ctx, 1, metricAttrs)
		}
		if h.durationHistogram != nil {
			h.durationHistogram.Record(ctx, duration.Seconds(), metricAttrs)
		}
	}

	if st.span != nil && st.span.IsRecording() {
		if stats != nil {
			st.span.SetAttributes(
				attribute.Int64("rpc.rtorrent.rows", stats.Rows),
				attribute.Int64("rpc.rtorrent.columns", stats.Columns),
			)
		}

		if err != nil {
			st.span.SetStatus(codes.Error, err.Error())
			if h.cfg.RecordExceptions {
				st.span.RecordError(err)
			}
			errType := fmt.Sprintf("%T", err)
			var rpcErr *rtrpc.Error
			if errors.As(err, &rpcErr) {
				errType = rpcErr.Kind.String()
			}
			st.span.SetAttributes(attribute.String("rpc.rtorrent.error_type", errType))
		} else {
			st.span.SetStatus(codes.Ok, "")
		}

		st.span.End()
	}
}
