// Package numerator provides domain contracts for business code generation.
package numerator

import "time"

// Kind identifies a code family.
type Kind string

const (
	KindRepair    Kind = "repair"
	KindBooking   Kind = "booking"
	KindPurchase  Kind = "purchase"
	KindSale      Kind = "sale"
	KindQuickNote Kind = "quick_note"
)

// Strategy defines how codes of a family are generated.
type Strategy int

const (
	// StrategyRandom builds PREFIX-YYYYMMDD-HHMM-NNN and retries on collision.
	// Suitable for codes read aloud at the counter (repairs, bookings).
	StrategyRandom Strategy = iota

	// StrategySequential reserves the next value of a per-tenant, per-year
	// counter: PREFIX-YYYY-00001. Suitable for accounting documents.
	StrategySequential
)

// Config holds numbering configuration for one kind.
type Config struct {
	// Prefix added to all codes (e.g., "REP", "SALE")
	Prefix string

	Strategy Strategy

	// PadWidth is the counter width for sequential codes (default 5)
	PadWidth int

	// ResetPeriod for sequential counters: "year", "month", "never"
	ResetPeriod string
}

var configs = map[Kind]Config{
	KindRepair:    {Prefix: "REP", Strategy: StrategyRandom},
	KindBooking:   {Prefix: "BOOK", Strategy: StrategyRandom},
	KindPurchase:  {Prefix: "ACQ", Strategy: StrategySequential, PadWidth: 5, ResetPeriod: "year"},
	KindSale:      {Prefix: "SALE", Strategy: StrategySequential, PadWidth: 5, ResetPeriod: "year"},
	KindQuickNote: {Prefix: "NOTE", Strategy: StrategySequential, PadWidth: 5, ResetPeriod: "year"},
}

// ConfigFor returns the configuration registered for kind.
func ConfigFor(kind Kind) (Config, bool) {
	cfg, ok := configs[kind]
	return cfg, ok
}

// Kinds returns every known code family.
func Kinds() []Kind {
	return []Kind{KindRepair, KindBooking, KindPurchase, KindSale, KindQuickNote}
}

// Options tunes the generator.
type Options struct {
	// MaxAttempts bounds collision retries for the random strategy.
	MaxAttempts int
	// RetryBackoff is slept between attempts.
	RetryBackoff time.Duration
	// PadWidth overrides Config.PadWidth when positive.
	PadWidth int
}

// DefaultOptions returns standard options.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:  5,
		RetryBackoff: 50 * time.Millisecond,
	}
}
