// Package config defines the run parameters of a simulation and the ways to
// obtain them.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Defaults.
const (
	DefaultSeed       int64   = 9999
	DefaultTimeout    float64 = 20
	DefaultGBNWindow  int     = 8
	DefaultProtocol           = "abp"
	DefaultTieBreak           = "fifo"
	DefaultTraceLevel         = 1
)

// MaxWindow is the largest accepted window_size.
const MaxWindow = 1 << 16

// Config is the flat record of run parameters.
type Config struct {
	MessageCount          int     `json:"message_count" yaml:"message_count"`
	LossProbability       float64 `json:"loss_probability" yaml:"loss_probability"`
	CorruptionProbability float64 `json:"corruption_probability" yaml:"corruption_probability"`
	MeanInterarrivalTime  float64 `json:"mean_interarrival_time" yaml:"mean_interarrival_time"`
	TraceLevel            int     `json:"trace_level" yaml:"trace_level"`

	Seed               int64   `json:"seed" yaml:"seed"`
	Protocol           string  `json:"protocol" yaml:"protocol"`
	WindowSize         int     `json:"window_size" yaml:"window_size"`
	Timeout            float64 `json:"timeout" yaml:"timeout"`
	MaxRetransmissions int     `json:"max_retransmissions" yaml:"max_retransmissions"`
	TimeLimit          float64 `json:"time_limit" yaml:"time_limit"`
	TieBreak           string  `json:"tie_break" yaml:"tie_break"`
}

// Default returns a Config with every optional field set to its default.
// The five core parameters are left for the caller to fill.
func Default() Config {
	return Config{
		TraceLevel: DefaultTraceLevel,
		Seed:       DefaultSeed,
		Protocol:   DefaultProtocol,
		Timeout:    DefaultTimeout,
		TieBreak:   DefaultTieBreak,
	}
}

// IsGoBackN tells if the configured protocol is Go-Back-N.
func (c Config) IsGoBackN() bool {
	p := strings.ToLower(c.Protocol)
	return p == "gbn" || p == "go-back-n"
}

// Window returns the effective window size. An unset window is 1 for the
// alternating-bit protocol and DefaultGBNWindow for Go-Back-N.
func (c Config) Window() int {
	if c.WindowSize != 0 {
		return c.WindowSize
	}

	if c.IsGoBackN() {
		return DefaultGBNWindow
	}

	return 1
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs *multierror.Error

	if c.MessageCount < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("message_count must not be negative, got %d",
				c.MessageCount))
	}

	errs = checkProbability(errs, "loss_probability", c.LossProbability)
	errs = checkProbability(errs, "corruption_probability",
		c.CorruptionProbability)

	if !(c.MeanInterarrivalTime > 0) || math.IsInf(c.MeanInterarrivalTime, 1) {
		errs = multierror.Append(errs,
			fmt.Errorf("mean_interarrival_time must be finite and > 0, got %g",
				c.MeanInterarrivalTime))
	}

	errs = c.validateProtocol(errs)

	if !(c.Timeout > 0) || math.IsInf(c.Timeout, 1) {
		errs = multierror.Append(errs,
			fmt.Errorf("timeout must be finite and > 0, got %g", c.Timeout))
	}

	if c.MaxRetransmissions < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("max_retransmissions must not be negative, got %d",
				c.MaxRetransmissions))
	}

	if !(c.TimeLimit >= 0) || math.IsInf(c.TimeLimit, 1) {
		errs = multierror.Append(errs,
			fmt.Errorf("time_limit must be finite and not negative, got %g",
				c.TimeLimit))
	}

	switch strings.ToLower(c.TieBreak) {
	case "", "fifo", "lifo":
	default:
		errs = multierror.Append(errs,
			fmt.Errorf("unknown tie_break %q", c.TieBreak))
	}

	return errs.ErrorOrNil()
}

func (c Config) validateProtocol(errs *multierror.Error) *multierror.Error {
	switch strings.ToLower(c.Protocol) {
	case "", "abp", "alternating-bit":
		if c.WindowSize > 1 {
			errs = multierror.Append(errs,
				fmt.Errorf("alternating-bit protocol needs window_size 1, got %d",
					c.WindowSize))
		}
	case "gbn", "go-back-n":
	default:
		errs = multierror.Append(errs,
			fmt.Errorf("unknown protocol %q", c.Protocol))
	}

	if c.WindowSize < 0 || c.WindowSize > MaxWindow {
		errs = multierror.Append(errs,
			fmt.Errorf("window_size must be in [0, %d], got %d",
				MaxWindow, c.WindowSize))
	}

	return errs
}

func checkProbability(
	errs *multierror.Error,
	name string,
	p float64,
) *multierror.Error {
	if !(p >= 0 && p <= 1) {
		errs = multierror.Append(errs,
			fmt.Errorf("%s must be in [0, 1], got %g", name, p))
	}

	return errs
}
