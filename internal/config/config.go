// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/stake-distributor/pkg/constants"
	"github.com/iwvelando/stake-distributor/pkg/mathutil"
	"github.com/iwvelando/stake-distributor/pkg/stake"
	"github.com/iwvelando/stake-distributor/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for stake-distributor.
type Configuration struct {
	Solver  SolverConfig  `yaml:"solver,omitempty" mapstructure:"solver"`
	Books   []Book        `yaml:"books" mapstructure:"books"`
	Logging LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv
}

// SolverConfig holds the defaults shared by every book.
type SolverConfig struct {
	Rounding  string `yaml:"rounding,omitempty" mapstructure:"rounding"` // integer, exact
	MaxPasses int    `yaml:"maxPasses,omitempty" mapstructure:"maxPasses"`
}

// Book is one wager: a set of mutually exclusive outcomes, each with a quote.
type Book struct {
	Name         string    `yaml:"name" mapstructure:"name"`
	Active       *bool     `yaml:"active,omitempty" mapstructure:"active"`
	TargetProfit float64   `yaml:"targetProfit" mapstructure:"targetProfit"`
	Rounding     string    `yaml:"rounding,omitempty" mapstructure:"rounding"` // overrides solver.rounding
	Quotes       []float64 `yaml:"quotes" mapstructure:"quotes"`
}

// IsActive reports whether the book should be distributed. Books are active
// unless explicitly disabled.
func (b Book) IsActive() bool {
	return b.Active == nil || *b.Active
}

// RoundingMode resolves the book's rounding mode, falling back to the solver default.
func (b Book) RoundingMode(solver SolverConfig) (stake.RoundingMode, error) {
	if strings.TrimSpace(b.Rounding) != "" {
		return stake.ParseRoundingMode(b.Rounding)
	}
	return stake.ParseRoundingMode(solver.Rounding)
}

// TargetProfitDecimal returns the target as a decimal.
func (b Book) TargetProfitDecimal() decimal.Decimal {
	return decimal.NewFromFloat(b.TargetProfit)
}

// QuoteDecimals returns the quotes as decimals.
func (b Book) QuoteDecimals() []decimal.Decimal {
	return mathutil.FromFloats(b.Quotes)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

// Normalize applies defaults and canonical values.
func (conf *Configuration) Normalize() {
	conf.Solver.Rounding = strings.ToLower(strings.TrimSpace(conf.Solver.Rounding))
	if conf.Solver.Rounding == "" {
		conf.Solver.Rounding = constants.DefaultRounding
	}
	if conf.Solver.MaxPasses <= 0 {
		conf.Solver.MaxPasses = constants.DefaultMaxPasses
	}

	for i := range conf.Books {
		book := &conf.Books[i]
		book.Name = strings.TrimSpace(book.Name)
		if book.Name == "" {
			book.Name = fmt.Sprintf("book %d", i+1)
		}
		book.Rounding = strings.ToLower(strings.TrimSpace(book.Rounding))
	}
}

// Validate returns an error for configuration that cannot be distributed.
func (conf *Configuration) Validate() error {
	if err := validation.ValidateRoundingMode(conf.Solver.Rounding); err != nil {
		return fmt.Errorf("solver: %w", err)
	}

	seen := make(map[string]struct{}, len(conf.Books))
	for _, book := range conf.Books {
		if _, dup := seen[book.Name]; dup {
			return fmt.Errorf("book '%s' is defined more than once", book.Name)
		}
		seen[book.Name] = struct{}{}

		if _, err := book.RoundingMode(conf.Solver); err != nil {
			return fmt.Errorf("book '%s': %w", book.Name, err)
		}
		if book.IsActive() {
			if err := validation.ValidateTargetProfit(book.Name, book.TargetProfit); err != nil {
				return err
			}
			if err := validation.ValidateQuotes(book.Name, book.Quotes); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	books := make([]validation.BookConfig, 0, len(conf.Books))
	for _, book := range conf.Books {
		books = append(books, validation.BookConfig{
			Name:         book.Name,
			Active:       book.IsActive(),
			TargetProfit: book.TargetProfit,
			Quotes:       book.Quotes,
		})
	}

	validator := validation.ConfigValidator{Books: books}
	return validator.ValidateAll()
}
