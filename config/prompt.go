package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompt asks for the five core parameters on out and reads the answers
// from in, one line per answer.
func Prompt(in io.Reader, out io.Writer) (Config, error) {
	cfg := Default()
	reader := bufio.NewReader(in)

	questions := []struct {
		text  string
		parse func(string) error
	}{
		{"Enter the number of messages to simulate: ",
			intInto(&cfg.MessageCount)},
		{"Enter packet loss probability [enter 0.0 for no loss]:",
			floatInto(&cfg.LossProbability)},
		{"Enter packet corruption probability [0.0 for no corruption]:",
			floatInto(&cfg.CorruptionProbability)},
		{"Enter average time between messages from sender's layer5 [ > 0.0]:",
			floatInto(&cfg.MeanInterarrivalTime)},
		{"Enter TRACE:",
			intInto(&cfg.TraceLevel)},
	}

	for _, q := range questions {
		fmt.Fprint(out, q.text)

		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return Config{}, fmt.Errorf("reading answer: %w", err)
		}

		if err := q.parse(strings.TrimSpace(line)); err != nil {
			return Config{}, fmt.Errorf("invalid answer %q: %w",
				strings.TrimSpace(line), err)
		}
	}

	return cfg, nil
}
