package distribution_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/stake-distributor/internal/config"
	"github.com/iwvelando/stake-distributor/internal/distribution"
	"github.com/iwvelando/stake-distributor/pkg/stake"
	"github.com/iwvelando/stake-distributor/pkg/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestGetDistributions(t *testing.T) {
	conf := config.Configuration{
		Books: []config.Book{
			{Name: "Six runners", TargetProfit: 10, Quotes: []float64{5, 8, 7, 12, 10, 7}},
			{Name: "Empty", TargetProfit: 10},
		},
	}
	conf.Normalize()

	results, err := distribution.GetDistributions(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("GetDistributions() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	six := results[0]
	if six.Name != "Six runners" {
		t.Errorf("unexpected name %q", six.Name)
	}
	if !six.TotalStake.Equal(decimal.NewFromInt(45)) {
		t.Errorf("expected total stake 45, got %s", six.TotalStake)
	}
	if six.Passes != 5 {
		t.Errorf("expected 5 passes, got %d", six.Passes)
	}
	if six.Rounding != "integer" {
		t.Errorf("expected integer rounding, got %s", six.Rounding)
	}
	for i, p := range six.EffectiveProfits {
		if p.LessThan(decimal.NewFromInt(10)) {
			t.Errorf("outcome %d profit %s below target", i, p)
		}
	}
	if !six.MinimumProfit().Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected minimum profit 10, got %s", six.MinimumProfit())
	}
	if !six.Margin.IsPositive() || !six.MinimumTotalStake.Valid {
		t.Errorf("expected a positive margin and a minimum total stake, got %s %v", six.Margin, six.MinimumTotalStake)
	}
	if six.MinimumTotalStake.Decimal.GreaterThan(six.TotalStake) {
		t.Errorf("minimum total stake %s exceeds rounded total %s", six.MinimumTotalStake.Decimal, six.TotalStake)
	}

	empty := results[1]
	if len(empty.Stakes) != 0 || !empty.TotalStake.IsZero() || empty.Passes != 0 {
		t.Errorf("empty book should produce no stakes, got %+v", empty)
	}
	if !empty.MinimumProfit().IsZero() {
		t.Errorf("empty book minimum profit should be zero")
	}
}

func TestGetDistributionsInactiveBook(t *testing.T) {
	conf := config.Configuration{
		Books: []config.Book{
			{Name: "Off", Active: boolPtr(false), TargetProfit: 10, Quotes: []float64{2, 2}},
			{Name: "On", Active: boolPtr(true), TargetProfit: 20, Quotes: []float64{2.5, 2.5}},
		},
	}
	conf.Normalize()

	results, err := distribution.GetDistributions(nil, conf)
	if err != nil {
		t.Fatalf("GetDistributions() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only the active book, got %d results", len(results))
	}
	if testutil.FindDistribution(results, "Off") != nil {
		t.Errorf("inactive book should not be distributed")
	}
	on := testutil.FindDistribution(results, "On")
	if on == nil {
		t.Fatal("active book missing")
	}
	if !on.TotalStake.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected total stake 80, got %s", on.TotalStake)
	}
}

func TestGetDistributionsNonConvergence(t *testing.T) {
	conf := config.Configuration{
		Books: []config.Book{
			{Name: "Fine", TargetProfit: 10, Quotes: []float64{5, 8, 7, 12, 10, 7}},
			{Name: "Coin", TargetProfit: 10, Quotes: []float64{2, 2}},
		},
	}
	conf.Normalize()

	results, err := distribution.GetDistributions(zap.NewNop(), conf)
	if err == nil {
		t.Fatal("expected non-convergence error")
	}
	if !errors.Is(err, stake.ErrNonConvergence) {
		t.Errorf("expected ErrNonConvergence, got %v", err)
	}
	if got := err.Error(); !strings.HasPrefix(got, "book 'Coin'") {
		t.Errorf("error should name the book, got %q", got)
	}
	if len(results) != 1 {
		t.Errorf("expected books before the failure to be returned, got %d", len(results))
	}
}

func TestDistributeRoundingOverride(t *testing.T) {
	book := config.Book{Name: "Cents", TargetProfit: 100, Rounding: "exact", Quotes: []float64{3, 4, 5, 20, 34}}
	solverConf := config.SolverConfig{Rounding: "integer", MaxPasses: 10000}

	result, err := distribution.Distribute(zap.NewNop(), book, solverConf)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if result.Rounding != "exact" {
		t.Errorf("expected exact rounding, got %s", result.Rounding)
	}
	if !result.TotalStake.Equal(decimal.RequireFromString("628.60")) {
		t.Errorf("expected total stake 628.60, got %s", result.TotalStake)
	}

	book.Rounding = ""
	result, err = distribution.Distribute(zap.NewNop(), book, solverConf)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if !result.TotalStake.Equal(decimal.NewFromInt(635)) {
		t.Errorf("expected total stake 635, got %s", result.TotalStake)
	}
}

func TestDistributeInvalid(t *testing.T) {
	_, err := distribution.Distribute(nil, config.Book{Name: "Bad", Quotes: []float64{3, 1}}, config.SolverConfig{})
	if !errors.Is(err, stake.ErrInvalidQuote) {
		t.Errorf("expected ErrInvalidQuote, got %v", err)
	}

	_, err = distribution.Distribute(nil, config.Book{Name: "Bad", Rounding: "nearest", Quotes: []float64{3, 3}}, config.SolverConfig{})
	if err == nil {
		t.Error("expected error for unknown rounding mode")
	}
}

func TestDistributeNonFinite(t *testing.T) {
	tests := []struct {
		name      string
		book      config.Book
		wantQuote bool
	}{
		{"NaN quote", config.Book{Name: "a", TargetProfit: 10, Quotes: []float64{math.NaN(), 3}}, true},
		{"infinite quote", config.Book{Name: "a", TargetProfit: 10, Quotes: []float64{3, math.Inf(1)}}, true},
		{"negative infinite quote", config.Book{Name: "a", TargetProfit: 10, Quotes: []float64{math.Inf(-1)}}, true},
		{"NaN target", config.Book{Name: "a", TargetProfit: math.NaN(), Quotes: []float64{3, 3}}, false},
		{"infinite target", config.Book{Name: "a", TargetProfit: math.Inf(1), Quotes: []float64{3, 3}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := distribution.Distribute(nil, tt.book, config.SolverConfig{})
			if err == nil {
				t.Fatal("expected error for non-finite input")
			}
			if errors.Is(err, stake.ErrInvalidQuote) != tt.wantQuote {
				t.Errorf("errors.Is(err, ErrInvalidQuote) = %v, expected %v (err = %v)",
					errors.Is(err, stake.ErrInvalidQuote), tt.wantQuote, err)
			}
		})
	}
}

func TestGetDistributionsRealistic(t *testing.T) {
	conf, err := config.LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("Failed to load test config: %v", err)
	}

	results, err := distribution.GetDistributions(zap.NewNop(), *conf)
	if err != nil {
		t.Fatalf("GetDistributions() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 active books, got %d", len(results))
	}

	expectedTotals := map[string]string{
		"six runner race":           "45",
		"five runner race":          "635",
		"five runner race in cents": "628.6",
	}
	for name, total := range expectedTotals {
		result := testutil.FindDistribution(results, name)
		if result == nil {
			t.Errorf("missing result for %s", name)
			continue
		}
		if !result.TotalStake.Equal(decimal.RequireFromString(total)) {
			t.Errorf("%s: expected total %s, got %s", name, total, result.TotalStake)
		}
		if !stake.MeetsTarget(result.Quotes, result.Stakes, result.TargetProfit) {
			t.Errorf("%s: distribution misses its target", name)
		}
	}
}

func TestSolve(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		quotes    []string
		mode      stake.RoundingMode
		maxPasses int
		wantTotal string
		wantErr   error
	}{
		{name: "Single outcome", target: "50", quotes: []string{"1.5"}, mode: stake.RoundingExact, wantTotal: "100"},
		{name: "Loss target", target: "-5", quotes: []string{"2", "2"}, mode: stake.RoundingInteger, wantTotal: "0"},
		{name: "Empty book", target: "10", mode: stake.RoundingInteger, wantTotal: "0"},
		{name: "Pass cap", target: "10", quotes: []string{"5", "8", "7", "12", "10", "7"}, mode: stake.RoundingInteger, maxPasses: 4, wantErr: stake.ErrNonConvergence},
		{name: "Invalid quote", target: "10", quotes: []string{"1"}, mode: stake.RoundingInteger, wantErr: stake.ErrInvalidQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := distribution.Solve(zap.NewNop(), "", decimal.RequireFromString(tt.target),
				testutil.Decimals(tt.quotes...), tt.mode, tt.maxPasses)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Solve() error = %v", err)
			}
			if !result.TotalStake.Equal(decimal.RequireFromString(tt.wantTotal)) {
				t.Errorf("expected total %s, got %s", tt.wantTotal, result.TotalStake)
			}
		})
	}
}
