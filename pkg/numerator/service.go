// Package numerator provides business code generation for repairs, bookings,
// purchases, sales and quick notes.
package numerator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/pkg/logger"
)

var tracer = otel.Tracer("repairdesk/numerator")

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// Service generates business codes. It is safe for concurrent use.
type Service struct {
	sequencer corenumerator.Sequencer
	checker   corenumerator.CodeChecker
	opts      corenumerator.Options

	now   func() time.Time
	intN  func(n int) int
	sleep func(ctx context.Context, d time.Duration) error

	// issued tracks random codes handed out during the current minute, so two
	// concurrent callers never receive the same candidate before either is persisted.
	issuedMu     sync.Mutex
	issuedMinute string
	issued       map[string]struct{}
}

// New creates a numerator service.
func New(sequencer corenumerator.Sequencer, checker corenumerator.CodeChecker, opts corenumerator.Options) *Service {
	def := corenumerator.DefaultOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	}
	return &Service{
		sequencer: sequencer,
		checker:   checker,
		opts:      opts,
		now:       time.Now,
		intN:      rand.IntN,
		sleep:     sleepCtx,
		issued:    make(map[string]struct{}),
	}
}

// WithClock replaces the time source. Used by tests and migrations.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GenerateCode returns a unique code for kind within tenantID. It never fails.
func (s *Service) GenerateCode(ctx context.Context, kind corenumerator.Kind, tenantID int64) string {
	ctx, span := tracer.Start(ctx, "numerator.GenerateCode")
	defer span.End()
	span.SetAttributes(attribute.String("code.kind", string(kind)))

	cfg, ok := corenumerator.ConfigFor(kind)
	if !ok {
		cfg = corenumerator.Config{Prefix: strings.ToUpper(string(kind)), Strategy: corenumerator.StrategyRandom}
	}

	if cfg.Strategy == corenumerator.StrategySequential {
		return s.nextSequential(ctx, kind, cfg, tenantID)
	}
	return s.nextRandom(ctx, kind, cfg, tenantID)
}

// nextRandom builds PREFIX-YYYYMMDD-HHMM-NNN, retrying on collision.
func (s *Service) nextRandom(ctx context.Context, kind corenumerator.Kind, cfg corenumerator.Config, tenantID int64) string {
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		now := s.now()
		candidate := fmt.Sprintf("%s-%s-%03d", cfg.Prefix, now.Format("20060102-1504"), 100+s.intN(900))

		if s.reserve(now, candidate) {
			exists, err := s.exists(ctx, kind, tenantID, candidate)
			if err == nil && !exists {
				return candidate
			}
			if err != nil {
				logger.Warn(ctx, "code existence check failed",
					"kind", kind, "code", candidate, "attempt", attempt, "error", err)
			}
		}

		if attempt < s.opts.MaxAttempts {
			if err := s.sleep(ctx, s.opts.RetryBackoff); err != nil {
				break
			}
		}
	}

	code := s.degraded(cfg)
	logger.Warn(ctx, "code generation degraded to timestamp fallback",
		"kind", kind, "code", code, "attempts", s.opts.MaxAttempts)
	return code
}

// nextSequential reserves the next counter value for tenant and period.
func (s *Service) nextSequential(ctx context.Context, kind corenumerator.Kind, cfg corenumerator.Config, tenantID int64) string {
	period := s.now()
	if s.sequencer == nil {
		code := s.degraded(cfg)
		logger.Error(ctx, "no sequencer configured, using timestamp fallback", "kind", kind, "code", code)
		return code
	}

	num, err := s.sequencer.Next(ctx, BuildKey(tenantID, cfg, period))
	if err != nil {
		code := s.degraded(cfg)
		logger.Error(ctx, "sequencer failed, using timestamp fallback",
			"kind", kind, "code", code, "error", err)
		return code
	}

	return s.formatNumber(cfg, period, num)
}

// SetNextNumber sets the counter so the next sequential code for the period
// carries value+1. Used when importing codes from another system.
func (s *Service) SetNextNumber(ctx context.Context, kind corenumerator.Kind, tenantID int64, period time.Time, value int64) error {
	cfg, ok := corenumerator.ConfigFor(kind)
	if !ok || cfg.Strategy != corenumerator.StrategySequential {
		return fmt.Errorf("kind %q has no sequential counter", kind)
	}
	if s.sequencer == nil {
		return fmt.Errorf("numerator service has no sequencer")
	}
	return s.sequencer.Set(ctx, BuildKey(tenantID, cfg, period), value)
}

func (s *Service) exists(ctx context.Context, kind corenumerator.Kind, tenantID int64, code string) (bool, error) {
	if s.checker == nil {
		return false, nil
	}
	return s.checker.Exists(ctx, kind, tenantID, code)
}

// reserve records code as issued for the current minute. Returns false if it
// was already handed out by this process.
func (s *Service) reserve(now time.Time, code string) bool {
	minute := now.Format("200601021504")

	s.issuedMu.Lock()
	defer s.issuedMu.Unlock()

	if minute != s.issuedMinute {
		s.issuedMinute = minute
		s.issued = make(map[string]struct{})
	}
	if _, taken := s.issued[code]; taken {
		return false
	}
	s.issued[code] = struct{}{}
	return true
}

// degraded returns PREFIX-YYYYMMDDHHMMSSmmm-NNNNNN without consulting the store.
func (s *Service) degraded(cfg corenumerator.Config) string {
	for {
		now := s.now()
		stamp := now.Format("20060102150405") + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
		code := fmt.Sprintf("%s-%s-%06d", cfg.Prefix, stamp, 100000+s.intN(900000))
		if s.reserve(now, code) {
			return code
		}
	}
}

// BuildKey creates the counter key for tenant, config and period.
func BuildKey(tenantID int64, cfg corenumerator.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%d:%s_%s", tenantID, cfg.Prefix, period.Format("2006_01"))
	case "never":
		return fmt.Sprintf("%d:%s", tenantID, cfg.Prefix)
	default:
		return fmt.Sprintf("%d:%s_%s", tenantID, cfg.Prefix, period.Format("2006"))
	}
}

// formatNumber creates the final code string.
func (s *Service) formatNumber(cfg corenumerator.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if s.opts.PadWidth > 0 {
		padWidth = s.opts.PadWidth
	}
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.ResetPeriod == "never" {
		return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
	}
	return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
}

// ParseNumber extracts the trailing counter from a sequential code.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	idx := strings.LastIndexByte(formatted, '-')
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}
	num, err := strconv.ParseInt(formatted[idx+1:], 10, 64)
	if err != nil || num < 0 {
		return -1
	}
	return num
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
