package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/internal/parquet"
)

// ExecuteRunsExport writes the run history and stored customer scores
// to <outputFile>.report_runs.parquet and <outputFile>.customer_scores.parquet.
func ExecuteRunsExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --runs-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total report runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total customer scores: %d\n", status.TotalScoredRows)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	scores, err := store.GetAllCustomerScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve customer scores: %w", err)
	}

	runsFile := outputFile + ".report_runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteFile(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write report runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d report runs to: %s\n", len(parquetRuns), runsFile)

	scoresFile := outputFile + ".customer_scores.parquet"
	parquetScores := parquet.ConvertCustomerScoreRecords(scores)
	if err := parquet.WriteFile(parquetScores, scoresFile); err != nil {
		return fmt.Errorf("failed to write customer scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d customer scores to: %s\n", len(parquetScores), scoresFile)

	return nil
}
