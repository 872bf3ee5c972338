// Package stake distributes stakes across the mutually exclusive outcomes of a
// wager so that whichever outcome wins, the net profit is at least a target.
//
// The Solver recomputes every stake in quote order until one full pass leaves
// every outcome at or above the target. Stakes never decrease from one pass to
// the next, so the loop converges whenever the quotes leave a margin (their
// implied probabilities sum to less than one). A pass cap bounds the loop.
package stake

import (
	"sync"

	"github.com/iwvelando/stake-distributor/pkg/constants"
	"github.com/iwvelando/stake-distributor/pkg/mathutil"
	"github.com/iwvelando/stake-distributor/pkg/odds"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cacheState int

const (
	stale cacheState = iota
	fresh
)

// Solver owns a target profit, an ordered list of quotes and a rounding mode,
// and lazily computes the stake for each quote. Any mutation invalidates the
// cached stakes; any read recomputes them if needed.
//
// A Solver is safe for concurrent use; each read computes and serves its
// result under one lock.
type Solver struct {
	mu sync.Mutex

	logger       *zap.Logger
	targetProfit decimal.Decimal
	quotes       []decimal.Decimal
	rounding     RoundingMode
	maxPasses    int

	state  cacheState
	stakes []decimal.Decimal
	passes int
}

// Option configures a Solver.
type Option func(*Solver)

// WithRoundingMode sets the initial rounding mode.
func WithRoundingMode(mode RoundingMode) Option {
	return func(s *Solver) {
		s.rounding = mode
	}
}

// WithMaxPasses caps the number of passes. Non-positive values keep the default.
func WithMaxPasses(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxPasses = n
		}
	}
}

// WithLogger enables debug tracing of computations.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Result is a snapshot of a computed distribution.
type Result struct {
	TargetProfit     decimal.Decimal
	Rounding         RoundingMode
	Quotes           []decimal.Decimal
	Stakes           []decimal.Decimal
	TotalStake       decimal.Decimal
	EffectiveProfits []decimal.Decimal
	Passes           int
}

// NewSolver constructs a Solver. The quotes are copied; nil or empty quotes are
// valid and yield an empty distribution.
func NewSolver(targetProfit decimal.Decimal, quotes []decimal.Decimal, opts ...Option) (*Solver, error) {
	if err := validateQuotes(quotes); err != nil {
		return nil, err
	}

	s := &Solver{
		logger:       zap.NewNop(),
		targetProfit: targetProfit,
		quotes:       append([]decimal.Decimal{}, quotes...),
		rounding:     RoundingInteger,
		maxPasses:    constants.DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetQuotes replaces all quotes. On error the solver is left unchanged.
func (s *Solver) SetQuotes(quotes []decimal.Decimal) error {
	if err := validateQuotes(quotes); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append([]decimal.Decimal{}, quotes...)
	s.state = stale
	return nil
}

// AppendQuote adds one outcome at the end of the quote list.
func (s *Solver) AppendQuote(quote decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateQuote(len(s.quotes), quote); err != nil {
		return err
	}
	s.quotes = append(s.quotes, quote)
	s.state = stale
	return nil
}

// ClearQuotes removes every quote.
func (s *Solver) ClearQuotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = nil
	s.state = stale
}

// SetTargetProfit replaces the target. Negative targets accept a bounded loss.
func (s *Solver) SetTargetProfit(target decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetProfit = target
	s.state = stale
}

// SetRoundingMode changes the rounding applied to each stake.
func (s *Solver) SetRoundingMode(mode RoundingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounding = mode
	s.state = stale
}

// Quotes returns a copy of the current quotes.
func (s *Solver) Quotes() []decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]decimal.Decimal{}, s.quotes...)
}

// TargetProfit returns the current target.
func (s *Solver) TargetProfit() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetProfit
}

// RoundingMode returns the current rounding mode.
func (s *Solver) RoundingMode() RoundingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rounding
}

// Stakes returns the stake for each quote, computing it first if needed.
func (s *Solver) Stakes() ([]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.compute(); err != nil {
		return nil, err
	}
	return append([]decimal.Decimal{}, s.stakes...), nil
}

// TotalStake returns the sum of all stakes.
func (s *Solver) TotalStake() (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.compute(); err != nil {
		return decimal.Zero, err
	}
	return mathutil.Sum(s.stakes), nil
}

// EffectiveProfits returns the net profit realised for each winning outcome.
func (s *Solver) EffectiveProfits() ([]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.compute(); err != nil {
		return nil, err
	}
	return EffectiveProfits(s.quotes, s.stakes), nil
}

// Passes returns how many passes the last successful computation took. It is
// zero before the first read and for empty quote lists.
func (s *Solver) Passes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

// Result computes the distribution and returns a snapshot of every output.
func (s *Solver) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.compute(); err != nil {
		return Result{}, err
	}
	return Result{
		TargetProfit:     s.targetProfit,
		Rounding:         s.rounding,
		Quotes:           append([]decimal.Decimal{}, s.quotes...),
		Stakes:           append([]decimal.Decimal{}, s.stakes...),
		TotalStake:       mathutil.Sum(s.stakes),
		EffectiveProfits: EffectiveProfits(s.quotes, s.stakes),
		Passes:           s.passes,
	}, nil
}

// compute refreshes the cached stakes. Callers must hold s.mu.
func (s *Solver) compute() error {
	if s.state == fresh {
		return nil
	}

	if len(s.quotes) == 0 {
		s.stakes = []decimal.Decimal{}
		s.passes = 0
		s.state = fresh
		return nil
	}

	if s.targetProfit.IsPositive() && !odds.HasMargin(s.quotes) {
		return &NonConvergenceError{Passes: 0, BookSum: odds.BookSum(s.quotes)}
	}

	stakes := make([]decimal.Decimal, len(s.quotes))
	total := decimal.Zero
	for pass := 1; pass <= s.maxPasses; pass++ {
		for i, quote := range s.quotes {
			// Drop this outcome's previous stake so the total only holds the
			// other outcomes.
			total = total.Sub(stakes[i])
			stakes[i] = s.stakeFor(quote, total)
			total = total.Add(stakes[i])
		}

		if MeetsTarget(s.quotes, stakes, s.targetProfit) {
			s.stakes = stakes
			s.passes = pass
			s.state = fresh
			s.logger.Debug("stake distribution computed",
				zap.String("op", "stake.Solver.compute"),
				zap.Int("outcomes", len(stakes)),
				zap.Int("passes", pass),
				zap.String("rounding", s.rounding.String()),
				zap.String("targetProfit", s.targetProfit.String()),
				zap.String("totalStake", total.String()),
			)
			return nil
		}
	}

	s.logger.Debug("stake distribution did not converge",
		zap.String("op", "stake.Solver.compute"),
		zap.Int("outcomes", len(stakes)),
		zap.Int("maxPasses", s.maxPasses),
		zap.String("targetProfit", s.targetProfit.String()),
	)
	return &NonConvergenceError{Passes: s.maxPasses, BookSum: odds.BookSum(s.quotes)}
}

// stakeFor returns the smallest stake on quote that covers the other stakes
// plus the target profit, rounded up according to the rounding mode.
func (s *Solver) stakeFor(quote, others decimal.Decimal) decimal.Decimal {
	raw := s.targetProfit.Add(others).Div(quote.Sub(decimal.NewFromInt(1)))
	stake := mathutil.CeilToCents(raw)
	if s.rounding == RoundingInteger {
		stake = mathutil.CeilToUnit(stake)
	}
	return mathutil.NonNegative(stake)
}
