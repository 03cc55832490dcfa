package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tenantkyc/kycdesk/internal/config"
	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/submissions"
)

type exportOptions struct {
	in    string
	out   string
	query string
	date  string
	sort  string
	order string
	ids   []string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a CSV report from a JSON file of submissions",
		Long: "Reads a JSON array of submissions, applies the same filter, search and\n" +
			"sort the dashboard uses, and writes the CSV report. Without --ids every\n" +
			"record in the filtered view is exported.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			proc := newProcessor(cfg, zap.NewNop())
			return runExport(proc, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.in, "in", "i", "-", "submissions JSON file, - for stdin")
	f.StringVarP(&opts.out, "out", "o", "", "output file, - for stdout (default submissions_report_<date>.csv)")
	f.StringVarP(&opts.query, "query", "q", "", "search full name or address")
	f.StringVar(&opts.date, "date", "all", "date filter: all, 7days, 30days or 90days")
	f.StringVar(&opts.sort, "sort", "date", "sort field: date, name or status")
	f.StringVar(&opts.order, "order", "desc", "sort order: asc or desc")
	f.StringSliceVar(&opts.ids, "ids", nil, "only export these submission ids")
	return cmd
}

func runExport(proc *submissions.Processor, opts exportOptions, stdin io.Reader, stdout io.Writer) error {
	records, err := readSubmissions(opts.in, stdin)
	if err != nil {
		return err
	}

	c := submissions.ParseCriteria(opts.query, opts.date, opts.sort, opts.order, opts.ids)
	view := proc.View(records, c)
	if len(c.SelectedIDs) > 0 {
		view = submissions.Select(view, c.SelectedIDs)
	}
	report := proc.Report(view)

	out := opts.out
	if out == "" {
		out = report.Filename
	}
	if out == "-" {
		_, err = stdout.Write(report.Body)
		return err
	}
	if err := os.WriteFile(out, report.Body, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %d submission(s) to %s\n", report.Count, out)
	return nil
}

func readSubmissions(path string, stdin io.Reader) ([]models.Submission, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var records []models.Submission
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	return records, nil
}
