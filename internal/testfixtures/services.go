package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/campus-booking/internal/application"
)

// ServiceFactory assists tests with constructing application services
// using deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(),
		IDGenerator: NewIDGenerator(""),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock()
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BookingServiceDeps captures dependencies for constructing a booking service.
type BookingServiceDeps struct {
	Reservations application.ReservationStore
	Catalog      application.ResourceCatalog
	Tasks        *application.SecurityTaskService
	Notifier     application.NotificationSink
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewBookingService builds a booking service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewBookingServiceWithLogger(
		deps.Reservations,
		deps.Catalog,
		deps.Tasks,
		deps.Notifier,
		idGen,
		now,
		deps.Logger,
	)
}

// TaskServiceDeps captures dependencies for constructing a task service.
type TaskServiceDeps struct {
	Staff        application.StaffDirectory
	Tasks        application.TaskStore
	SecurityRole string
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewSecurityTaskService builds a task service using the supplied dependencies.
func (f *ServiceFactory) NewSecurityTaskService(deps TaskServiceDeps) *application.SecurityTaskService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewSecurityTaskServiceWithLogger(
		deps.Staff,
		deps.Tasks,
		deps.SecurityRole,
		idGen,
		now,
		deps.Logger,
	)
}
