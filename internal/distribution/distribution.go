// Package distribution defines the data structures related to a distributed
// book and includes functions for computing them from a configuration.
package distribution

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/stake-distributor/internal/config"
	"github.com/iwvelando/stake-distributor/internal/metrics"
	"github.com/iwvelando/stake-distributor/pkg/odds"
	"github.com/iwvelando/stake-distributor/pkg/stake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Distribution holds the computed stakes for one book.
type Distribution struct {
	Name              string              `json:"name,omitempty"`
	TargetProfit      decimal.Decimal     `json:"targetProfit"`
	Rounding          string              `json:"rounding"`
	Quotes            []decimal.Decimal   `json:"quotes"`
	Stakes            []decimal.Decimal   `json:"stakes"`
	TotalStake        decimal.Decimal     `json:"totalStake"`
	EffectiveProfits  []decimal.Decimal   `json:"effectiveProfits"`
	BookSum           decimal.Decimal     `json:"bookSum"`
	Margin            decimal.Decimal     `json:"margin"`
	MinimumTotalStake decimal.NullDecimal `json:"minimumTotalStake"`
	Passes            int                 `json:"passes"`
}

// GetDistributions computes the stakes for every active book in the order
// the books are configured.
func GetDistributions(logger *zap.Logger, conf config.Configuration) ([]Distribution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Distribution
	for _, book := range conf.Books {
		if !book.IsActive() {
			logger.Debug(fmt.Sprintf("skipping book %s because it is inactive", book.Name),
				zap.String("op", "distribution.GetDistributions"),
			)
			continue
		}

		result, err := Distribute(logger, book, conf.Solver)
		if err != nil {
			return results, fmt.Errorf("book '%s': %w", book.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Distribute computes the stakes for a single book, falling back to the
// solver defaults for anything the book does not set.
func Distribute(logger *zap.Logger, book config.Book, solverConf config.SolverConfig) (Distribution, error) {
	mode, err := book.RoundingMode(solverConf)
	if err != nil {
		return Distribution{}, err
	}
	if err := checkFinite(book); err != nil {
		return Distribution{}, err
	}

	return Solve(logger, book.Name, book.TargetProfitDecimal(), book.QuoteDecimals(), mode, solverConf.MaxPasses)
}

// checkFinite rejects NaN and infinite config values, which have no decimal form.
func checkFinite(book config.Book) error {
	if math.IsNaN(book.TargetProfit) || math.IsInf(book.TargetProfit, 0) {
		return fmt.Errorf("target profit %g is not a finite number", book.TargetProfit)
	}
	for i, q := range book.Quotes {
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return fmt.Errorf("quote %d is %g: %w", i+1, q, stake.ErrInvalidQuote)
		}
	}
	return nil
}

// Solve runs the solver over decimal inputs and records the outcome in metrics.
func Solve(logger *zap.Logger, name string, target decimal.Decimal, quotes []decimal.Decimal, mode stake.RoundingMode, maxPasses int) (Distribution, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	solverLogger := logger
	if name != "" {
		solverLogger = logger.With(zap.String("book", name))
	}
	solver, err := stake.NewSolver(target, quotes,
		stake.WithRoundingMode(mode),
		stake.WithMaxPasses(maxPasses),
		stake.WithLogger(solverLogger),
	)
	if err != nil {
		metrics.RecordSolve(mode.String(), metrics.OutcomeInvalid, 0)
		return Distribution{}, err
	}

	result, err := solver.Result()
	if err != nil {
		outcome := metrics.OutcomeInvalid
		if errors.Is(err, stake.ErrNonConvergence) {
			outcome = metrics.OutcomeNonConvergence
		}
		metrics.RecordSolve(mode.String(), outcome, 0)
		return Distribution{}, err
	}
	metrics.RecordSolve(mode.String(), metrics.OutcomeConverged, result.Passes)

	return FromResult(name, result), nil
}

// FromResult attaches the book statistics to a solver result.
func FromResult(name string, result stake.Result) Distribution {
	minimum, ok := odds.MinimumTotalStake(result.TargetProfit, result.Quotes)
	return Distribution{
		Name:              name,
		TargetProfit:      result.TargetProfit,
		Rounding:          result.Rounding.String(),
		Quotes:            result.Quotes,
		Stakes:            result.Stakes,
		TotalStake:        result.TotalStake,
		EffectiveProfits:  result.EffectiveProfits,
		BookSum:           odds.BookSum(result.Quotes),
		Margin:            odds.Margin(result.Quotes),
		MinimumTotalStake: decimal.NullDecimal{Decimal: minimum, Valid: ok},
		Passes:            result.Passes,
	}
}

// MinimumProfit returns the smallest effective profit across the outcomes,
// or zero for an empty book.
func (d Distribution) MinimumProfit() decimal.Decimal {
	if len(d.EffectiveProfits) == 0 {
		return decimal.Zero
	}
	return decimal.Min(d.EffectiveProfits[0], d.EffectiveProfits[1:]...)
}
