package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of the environment variables that override
// configuration fields, as in ARQSIM_LOSS_PROBABILITY.
const EnvPrefix = "ARQSIM_"

// ReadEnvFile reads the variables of a dotenv file without touching the
// process environment.
func ReadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	return env, nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}

	return env
}

// ApplyEnv overrides the fields of cfg that have an ARQSIM_ variable in env.
func ApplyEnv(cfg *Config, env map[string]string) error {
	for _, o := range cfg.overrides() {
		v, ok := env[EnvPrefix+strings.ToUpper(o.key)]
		if !ok {
			continue
		}

		if err := o.set(strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w",
				EnvPrefix, strings.ToUpper(o.key), err)
		}
	}

	return nil
}

type override struct {
	key string
	set func(string) error
}

func (c *Config) overrides() []override {
	return []override{
		{"message_count", intInto(&c.MessageCount)},
		{"loss_probability", floatInto(&c.LossProbability)},
		{"corruption_probability", floatInto(&c.CorruptionProbability)},
		{"mean_interarrival_time", floatInto(&c.MeanInterarrivalTime)},
		{"trace_level", intInto(&c.TraceLevel)},
		{"seed", int64Into(&c.Seed)},
		{"protocol", stringInto(&c.Protocol)},
		{"window_size", intInto(&c.WindowSize)},
		{"timeout", floatInto(&c.Timeout)},
		{"max_retransmissions", intInto(&c.MaxRetransmissions)},
		{"time_limit", floatInto(&c.TimeLimit)},
		{"tie_break", stringInto(&c.TieBreak)},
	}
}

func int64Into(dst *int64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}

		*dst = v

		return nil
	}
}

func stringInto(dst *string) func(string) error {
	return func(s string) error {
		*dst = s
		return nil
	}
}
