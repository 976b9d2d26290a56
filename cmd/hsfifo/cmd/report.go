package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/hsfifo/datarecording"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <file.sqlite3>",
		Short: "Summarize the FIFO transfers in a recording.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := os.Stat(args[0])
			if err != nil {
				return errors.Wrap(err, "opening recording")
			}

			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			summaries, err := summarizeTransfers(cmd.Context(), reader)
			if err != nil {
				return err
			}

			return printSummaries(cmd.OutOrStdout(), summaries)
		},
	}
}

type transferSummary struct {
	component    string
	writes       int
	reads        int
	maxOccupancy int
	lastCycle    uint64
}

func summarizeTransfers(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]*transferSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reader.MapTable(datarecording.TransferTableName,
		datarecording.TransferEntry{})

	results, _, err := reader.Query(ctx, datarecording.TransferTableName,
		datarecording.QueryParams{OrderBy: "Cycle"})
	if err != nil {
		return nil, errors.Wrap(err, "querying transfers")
	}

	byName := make(map[string]*transferSummary)

	for _, r := range results {
		entry, ok := r.(*datarecording.TransferEntry)
		if !ok {
			return nil, errors.Errorf("unexpected entry type %T", r)
		}

		s, found := byName[entry.Component]
		if !found {
			s = &transferSummary{component: entry.Component}
			byName[entry.Component] = s
		}

		switch entry.Kind {
		case "write":
			s.writes++
		case "read":
			s.reads++
		}

		s.maxOccupancy = max(s.maxOccupancy, entry.Occupancy)
		s.lastCycle = max(s.lastCycle, entry.Cycle)
	}

	summaries := make([]*transferSummary, 0, len(byName))
	for _, s := range byName {
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].component < summaries[j].component
	})

	return summaries, nil
}

func printSummaries(w io.Writer, summaries []*transferSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "FIFO\tWRITES\tREADS\tMAX OCCUPANCY\tLAST CYCLE")

	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n",
			s.component, s.writes, s.reads, s.maxOccupancy, s.lastCycle)
	}

	return tw.Flush()
}
