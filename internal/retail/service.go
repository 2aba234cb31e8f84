package retail

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nazeru/retail-mock-api/internal/catalog"
	"github.com/nazeru/retail-mock-api/internal/customer"
	"github.com/nazeru/retail-mock-api/internal/order"
	"github.com/nazeru/retail-mock-api/internal/order/domain"
	"github.com/nazeru/retail-mock-api/pkg/contracts"
	"github.com/nazeru/retail-mock-api/pkg/idempotency"
	"github.com/nazeru/retail-mock-api/pkg/logging"
	"github.com/nazeru/retail-mock-api/pkg/metrics"
)

const publishTimeout = 2 * time.Second

// EventPublisher delivers domain events. Implementations: *kafka.Publisher,
// *outbox.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev contracts.Event) error
}

type Options struct {
	Events  EventPublisher
	Log     *logging.Logger
	Metrics *metrics.DomainMetrics
	Tracer  trace.Tracer
	Now     func() time.Time

	Customers []customer.Customer
	Products  []catalog.Product
	Orders    []domain.Order
}

// Service owns the customer, product and order stores. Every call takes one
// lock, so reads that join across stores see a consistent snapshot.
type Service struct {
	mu        sync.Mutex
	customers *customer.Store
	catalog   *catalog.Catalog
	orders    *order.Engine
	idem      *idempotency.Registry

	events  EventPublisher
	log     *logging.Logger
	metrics *metrics.DomainMetrics
	tracer  trace.Tracer
}

// New builds a service over the fixture data unless opts supplies its own.
func New(opts Options) *Service {
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.Tracer == nil {
		opts.Tracer = noop.NewTracerProvider().Tracer("retail")
	}
	if opts.Customers == nil {
		opts.Customers = customer.Seed()
	}
	if opts.Products == nil {
		opts.Products = catalog.Seed()
	}
	if opts.Orders == nil {
		opts.Orders = order.Seed()
	}
	s := &Service{
		customers: customer.NewStore(opts.Customers, opts.Now),
		catalog:   catalog.New(opts.Products),
		idem:      idempotency.NewRegistry(),
		events:    opts.Events,
		log:       opts.Log,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
	}
	s.orders = order.NewEngine(opts.Orders, s.customers, s.catalog, opts.Now)
	s.refreshGauges()
	return s
}

// op starts a span and returns a finisher that records the outcome in the
// span, the operation counter and the log.
func (s *Service) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(f logging.Fields, err error)) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(f logging.Fields, err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.metrics != nil {
			s.metrics.Op(name, err)
		}
		f.Step = name
		f.Err = err
		f.RequestID = logging.RequestID(ctx)
		f.DurationMS = time.Since(start).Milliseconds()
		if f.Status == "" {
			f.Status = "ok"
			if err != nil {
				f.Status = "rejected"
			}
		}
		if f.Message == "" {
			f.Message = name
		}
		s.log.Log(f)
	}
}

// emit publishes after the mutation has been applied and must be called with
// s.mu held, so events leave in the order their mutations were applied.
// Failures are logged and counted; the mutation stands.
func (s *Service) emit(ctx context.Context, ev contracts.Event) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	result := "published"
	if err := s.events.Publish(ctx, ev); err != nil {
		result = "failed"
		s.log.Error(logging.Fields{EventID: ev.EventID, Step: ev.Type, Status: result, Err: err, Message: "event publish failed"})
	}
	if s.metrics != nil {
		s.metrics.Events.WithLabelValues(ev.Type, result).Inc()
	}
}

// refreshGauges must be called with s.mu held or before s is shared.
func (s *Service) refreshGauges() {
	if s.metrics == nil {
		return
	}
	s.metrics.InventoryValue.Set(s.catalog.InventoryValue().InexactFloat64())
	s.metrics.Orders.Reset()
	for _, sc := range s.orders.RevenueSummary().ByStatus {
		s.metrics.Orders.WithLabelValues(string(sc.Status)).Set(float64(sc.Count))
	}
}
