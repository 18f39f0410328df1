package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-screener/internal/app"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/export"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
	"alfredoptarigan/resume-screener/pkg/logging"
)

type screenFlags struct {
	jdPath    string
	out       string
	emails    bool
	threshold int
	partial   bool
	company   string
	jobTitle  string
	asJSON    bool
	logLevel  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags screenFlags

	cmd := &cobra.Command{
		Use:   "screen --jd <file> [--out report.xlsx] [--emails] <resume>...",
		Short: "Score and rank resumes against a job description",
		Long: `Score and rank local resume files (PDF, DOCX or TXT) against a job
description using the configured AI backend.

Example:
  screen --jd backend.txt resumes/*.pdf
  screen --jd backend.html --out ranking.xlsx --emails --company "Acme" cv1.docx cv2.pdf`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreen(cmd.Context(), cmd.OutOrStdout(), flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.jdPath, "jd", "", "Path to the job description (text or HTML)")
	cmd.Flags().StringVar(&flags.out, "out", "", "Write an XLSX report to this path")
	cmd.Flags().BoolVar(&flags.emails, "emails", false, "Draft an invite or rejection email per candidate")
	cmd.Flags().IntVar(&flags.threshold, "threshold", 0, "Invite threshold (default from INVITE_THRESHOLD)")
	cmd.Flags().BoolVar(&flags.partial, "partial", true, "Keep finished results when interrupted")
	cmd.Flags().StringVar(&flags.company, "company", "", "Company name used in emails")
	cmd.Flags().StringVar(&flags.jobTitle, "job-title", "", "Job title used in emails and the report")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("jd")

	return cmd
}

func runScreen(ctx context.Context, stdout io.Writer, flags screenFlags, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.NewDevelopment(flags.logLevel)
	defer log.Sync()

	rawJD, err := os.ReadFile(flags.jdPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	jd := services.NewJobDescription(string(rawJD))

	docs, err := loadResumes(paths)
	if err != nil {
		return err
	}

	pipeline, err := app.NewPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}

	threshold := flags.threshold
	if threshold == 0 {
		threshold = cfg.Email.InviteThreshold
	}

	result, err := pipeline.Screening.Screen(ctx, jd, docs, services.Options{
		GenerateEmails:  flags.emails,
		InviteThreshold: threshold,
		AllowPartial:    flags.partial,
		Email: services.EmailOptions{
			JobTitle:       flags.jobTitle,
			JobDescription: jd.Text,
			CompanyName:    flags.company,
			UseAI:          cfg.Email.UseAI,
		},
	})
	if err != nil {
		return err
	}

	if flags.out != "" {
		path, err := export.SaveReport(flags.out, result, export.ReportMeta{JobTitle: flags.jobTitle, JobDescription: jd.Text})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}

	if flags.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printResult(stdout, result)
}

func loadResumes(paths []string) ([]models.ResumeDocument, error) {
	docs := make([]models.ResumeDocument, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		docs = append(docs, models.NewResumeDocument(filepath.Base(p), data))
	}
	return docs, nil
}

func printResult(w io.Writer, result *models.ScreeningResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tSTATUS\tFILE\tMISSING SKILLS\tREMARKS")
	for _, ev := range result.Ranked {
		remarks := ev.Remarks
		if ev.Failure != "" {
			remarks = fmt.Sprintf("[%s] %s", ev.Failure, remarks)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			ev.Rank, ev.Score, ev.ParseStatus, ev.Filename,
			strings.Join(ev.MissingSkills, ", "), oneLine(remarks))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if result.Partial {
		fmt.Fprintln(w, "\nInterrupted: some candidates were not scored.")
	}

	for _, e := range result.Emails {
		fmt.Fprintf(w, "\n--- %s (%s) ---\nSubject: %s\n\n%s\n", e.CandidateID, e.Decision, e.Subject, e.Body)
	}
	return nil
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 80 {
		return string(r[:77]) + "..."
	}
	return s
}
