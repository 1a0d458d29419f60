package tracing

import (
	"context"
	"fmt"

	"github.com/sarchlab/arqsim/datarecording"
)

// ReadRunSummaries returns the run_summary rows stored by a DBTracer, in the
// order the runs ended.
func ReadRunSummaries(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]RunSummary, error) {
	reader.MapTable(RunSummaryTable, RunSummary{})

	rows, _, err := reader.Query(ctx, RunSummaryTable,
		datarecording.QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", RunSummaryTable, err)
	}

	summaries := make([]RunSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, *row.(*RunSummary))
	}

	return summaries, nil
}

// String prints the summary on one line.
func (s RunSummary) String() string {
	line := fmt.Sprintf(
		"%s: generated %d, sent %d, lost %d, corrupted %d, delivered %d, "+
			"retransmissions %d, final time %f",
		s.RunID, s.Generated, s.SentToChannel, s.Lost, s.Corrupted,
		s.Delivered, s.Retransmissions, s.FinalTime)

	if s.LinkFailed {
		line += fmt.Sprintf(", link failed with %d abandoned", s.Abandoned)
	}

	return line
}
