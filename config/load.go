package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a Config from path. YAML and JSON files are recognized by
// their extension. Any other file is read in the legacy line format.
// Fields missing from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg := Default()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil &&
			err != io.EOF {
			return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
		}

		return cfg, nil
	case ".json":
		cfg := Default()
		if err := json.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("json unmarshal: %w", err)
		}

		return cfg, nil
	default:
		return ParseLegacy(f)
	}
}

// ParseLegacy reads the legacy line-oriented input file.
// The first line is a title and is ignored. The next five lines hold the
// message count, the loss probability, the corruption probability, the mean
// inter-arrival time and the trace level, one value per line.
func ParseLegacy(r io.Reader) (Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return Config{}, fmt.Errorf("legacy input: empty file")
	}

	fields := []struct {
		name  string
		parse func(s string) error
	}{
		{"message count", intInto(&cfg.MessageCount)},
		{"loss probability", floatInto(&cfg.LossProbability)},
		{"corruption probability", floatInto(&cfg.CorruptionProbability)},
		{"mean inter-arrival time", floatInto(&cfg.MeanInterarrivalTime)},
		{"trace level", intInto(&cfg.TraceLevel)},
	}

	for i, field := range fields {
		if !scanner.Scan() {
			return Config{}, fmt.Errorf("legacy input: line %d: missing %s",
				i+2, field.name)
		}

		if err := field.parse(strings.TrimSpace(scanner.Text())); err != nil {
			return Config{}, fmt.Errorf("legacy input: line %d: %s: %w",
				i+2, field.name, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func intInto(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}

		*dst = v

		return nil
	}
}

func floatInto(dst *float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}

		*dst = v

		return nil
	}
}
