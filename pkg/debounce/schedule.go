package debounce

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/vnykmshr/coalesce/pkg/common/clock"
	"github.com/vnykmshr/coalesce/pkg/common/errors"
	"github.com/vnykmshr/coalesce/pkg/common/validation"
	"github.com/vnykmshr/coalesce/pkg/metrics"
)

// cronParser accepts an optional seconds field and descriptors such as "@every 30s".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ScheduleConfig holds configuration for a FlushSchedule.
type ScheduleConfig struct {
	// Clock provides the current time and timers. If nil, clock.System is used.
	Clock clock.Clock

	// Location is the time zone the expression is evaluated in. If nil, time.Local is used.
	Location *time.Location

	// Logger receives debug events. If nil, logging is disabled.
	Logger *zerolog.Logger

	// Name identifies the schedule in logs and metrics.
	Name string

	// Metrics enables the schedule flush counter when Metrics.Enabled is set.
	Metrics metrics.Config
}

// FlushSchedule flushes on a cron schedule, so that a debouncer fed by a
// never-ending burst still checkpoints at predictable times.
type FlushSchedule struct {
	schedule cron.Schedule
	flush    func()
	clock    clock.Clock
	location *time.Location
	logger   zerolog.Logger
	name     string
	registry *metrics.Registry

	mu      sync.Mutex
	timer   clock.Timer
	next    time.Time
	stopped bool
	runs    atomic.Int64
}

// ScheduleFlush flushes d according to the cron expression expr.
func ScheduleFlush[A, R any](d Debouncer[A, R], expr string, config ScheduleConfig) (*FlushSchedule, error) {
	if d == nil {
		return nil, errors.NewValidationError("schedule", "debouncer", nil, "cannot be nil")
	}
	return NewFlushSchedule(expr, func() { d.Flush() }, config)
}

// NewFlushSchedule parses expr and arms the first run of flush.
// Standard five-field expressions, an optional leading seconds field and
// descriptors ("@hourly", "@every 5m") are accepted.
func NewFlushSchedule(expr string, flush func(), config ScheduleConfig) (*FlushSchedule, error) {
	if err := validation.ValidateNotEmpty("schedule", "expr", expr); err != nil {
		return nil, err
	}
	if flush == nil {
		return nil, errors.NewValidationError("schedule", "flush", nil, "cannot be nil")
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, errors.NewValidationError("schedule", "expr", expr, err.Error()).
			WithHint(`use a cron expression such as "*/5 * * * *" or "@every 30s"`)
	}

	if config.Clock == nil {
		config.Clock = clock.System{}
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = config.Logger.With().Str("schedule", config.Name).Logger()
	}

	var registry *metrics.Registry
	if config.Metrics.Enabled {
		registry = metrics.RegistryFor(config.Metrics)
	}

	s := &FlushSchedule{
		schedule: schedule,
		flush:    flush,
		clock:    config.Clock,
		location: config.Location,
		logger:   logger,
		name:     config.Name,
		registry: registry,
	}

	s.mu.Lock()
	s.arm()
	s.mu.Unlock()

	return s, nil
}

// Next returns the time of the next run, or the zero time once stopped or
// when the expression has no further activation.
func (s *FlushSchedule) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Runs returns how many scheduled flushes have completed.
func (s *FlushSchedule) Runs() int64 {
	return s.runs.Load()
}

// Stop disarms the schedule. It is idempotent.
func (s *FlushSchedule) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.next = time.Time{}
}

// arm schedules the next activation. Callers hold s.mu.
func (s *FlushSchedule) arm() {
	now := s.clock.Now()
	next := s.schedule.Next(now.In(s.location))
	if next.IsZero() {
		s.next = time.Time{}
		s.timer = nil
		s.logger.Debug().Msg("cron expression has no further activations")
		return
	}
	s.next = next
	s.timer = s.clock.AfterFunc(next.Sub(now), s.run)
}

func (s *FlushSchedule) run() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	s.flush()
	s.runs.Add(1)
	if s.registry != nil {
		s.registry.ScheduledFlushes.WithLabelValues(s.name).Inc()
	}
	s.logger.Debug().Msg("scheduled flush")

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.arm()
	}
}
