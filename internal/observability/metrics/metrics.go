package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	salesCommitted metric.Int64Counter
	saleRollbacks  metric.Int64Counter
	stockConflicts metric.Int64Counter
	qrRenders      metric.Int64Counter
	landingCache   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "anticuario"
	}
	meter := provider.Meter(name)

	salesCommitted, err := meter.Int64Counter("sales_committed_total",
		metric.WithDescription("Sales fully committed by the sale workflow"))
	if err != nil {
		return nil, err
	}
	saleRollbacks, err := meter.Int64Counter("sale_saga_rollbacks_total",
		metric.WithDescription("Sale sagas that required compensation"))
	if err != nil {
		return nil, err
	}
	stockConflicts, err := meter.Int64Counter("stock_conflicts_total",
		metric.WithDescription("Sale requests rejected for insufficient or sold-out stock"))
	if err != nil {
		return nil, err
	}
	qrRenders, err := meter.Int64Counter("qr_renders_total",
		metric.WithDescription("QR code images rendered"))
	if err != nil {
		return nil, err
	}
	landingCache, err := meter.Int64Counter("landing_cache_total",
		metric.WithDescription("Featured-items cache lookups by outcome"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		salesCommitted: salesCommitted,
		saleRollbacks:  saleRollbacks,
		stockConflicts: stockConflicts,
		qrRenders:      qrRenders,
		landingCache:   landingCache,
	}, nil
}

func (m *Metrics) RecordSaleCommitted(ctx context.Context, lineCount int) {
	if m == nil || m.salesCommitted == nil {
		return
	}
	m.salesCommitted.Add(ctx, 1, metric.WithAttributes(attribute.Int("lines", lineCount)))
}

func (m *Metrics) RecordSaleRollback(ctx context.Context, phase string) {
	if m == nil || m.saleRollbacks == nil {
		return
	}
	m.saleRollbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
}

func (m *Metrics) RecordStockConflict(ctx context.Context, reason string) {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecordQRRender(ctx context.Context, format string) {
	if m == nil || m.qrRenders == nil {
		return
	}
	m.qrRenders.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

func (m *Metrics) RecordLandingCache(ctx context.Context, outcome string) {
	if m == nil || m.landingCache == nil {
		return
	}
	m.landingCache.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("metrics exporter endpoint is required")
	}
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	}
}
