package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/config"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/reporting"
)

const dateLayout = "2006-01-02"

type reportOptions struct {
	merchantID string
	from       string
	to         string
	out        string
}

func newReportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a merchant's transactions with their audit trail as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.merchantID, "merchant", "", "merchant ID (required)")
	cmd.Flags().StringVar(&opts.from, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "end date, exclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file (default merchant_<id>_report.csv)")
	_ = cmd.MarkFlagRequired("merchant")

	return cmd
}

// reportWindow resolves the date flags. Missing bounds default to the
// start of the epoch and to tomorrow so that nothing recorded today is cut.
func reportWindow(from, to string, now time.Time) (time.Time, time.Time, error) {
	start := time.Unix(0, 0).UTC()
	end := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	var err error
	if from != "" {
		if start, err = time.Parse(dateLayout, from); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if to != "" {
		if end, err = time.Parse(dateLayout, to); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be before --to")
	}
	return start, end, nil
}

func runReport(ctx context.Context, opts *reportOptions) error {
	from, to, err := reportWindow(opts.from, opts.to, time.Now())
	if err != nil {
		return err
	}

	log.Printf("[INFO] Generating transaction report for merchant %s (%s to %s)\n",
		opts.merchantID, from.Format(dateLayout), to.Format(dateLayout))

	cfg, err := config.LoadDBConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	details, err := reporting.GetMerchantTransactionsWithAudit(ctx, db, opts.merchantID, from, to)
	if err != nil {
		return err
	}

	fileName := opts.out
	if fileName == "" {
		fileName = fmt.Sprintf("merchant_%s_report.csv", opts.merchantID)
	}
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	bufferedWriter := bufio.NewWriter(file)
	if err := reporting.WriteCSV(bufferedWriter, details); err != nil {
		return err
	}
	if err := bufferedWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	totals := reporting.Summarize(details)
	log.Printf("[SUCCESS] Report generated successfully. Rows exported: %d\n", totals.Count)
	log.Printf("[INFO] Total amount: %s, RVNU fees: %s, recommender commission: %s\n",
		totals.TotalAmount.StringFixed(2), totals.RvnuFee.StringFixed(2), totals.RecommenderCommission.StringFixed(2))
	log.Printf("[INFO] Output file: %s\n", fileName)

	return nil
}
