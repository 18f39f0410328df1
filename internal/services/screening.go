package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/pkg/logging"
)

const (
	failureCancelled = "CANCELLED"
	cancelledRemark  = "scoring cancelled"
)

type Options struct {
	GenerateEmails  bool
	InviteThreshold int
	// AllowPartial returns completed evaluations when the request context
	// ends mid-batch instead of failing the whole request.
	AllowPartial bool
	Email        EmailOptions
}

type ScreeningService interface {
	Screen(ctx context.Context, jd models.JobDescription, docs []models.ResumeDocument, opts Options) (*models.ScreeningResult, error)
}

type screeningService struct {
	extractor   DocumentExtractor
	prompts     *PromptBuilder
	client      ScoringClient
	parser      ResponseParser
	composer    EmailComposer
	maxInFlight int
	log         *logging.Logger
}

func NewScreeningService(
	extractor DocumentExtractor,
	prompts *PromptBuilder,
	client ScoringClient,
	parser ResponseParser,
	composer EmailComposer,
	maxInFlight int,
	log *logging.Logger,
) ScreeningService {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &screeningService{
		extractor:   extractor,
		prompts:     prompts,
		client:      client,
		parser:      parser,
		composer:    composer,
		maxInFlight: maxInFlight,
		log:         log.With("component", "screening"),
	}
}

// Screen runs extraction, scoring, parsing and ranking for one batch. Every
// document yields exactly one evaluation in the result.
func (s *screeningService) Screen(ctx context.Context, jd models.JobDescription, docs []models.ResumeDocument, opts Options) (*models.ScreeningResult, error) {
	if len(docs) == 0 {
		return nil, models.ErrNoResumes
	}
	if jd.IsEmpty() {
		return nil, models.ErrEmptyJobDescription
	}
	if !s.client.Configured() {
		return nil, models.ErrMissingCredentials
	}

	batchID := uuid.New()
	log := s.log.With("batch_id", batchID.String(), "jd", jd.Fingerprint())
	started := time.Now()
	log.Info("screening started", "resumes", len(docs))

	results := make([]models.CandidateEvaluation, len(docs))
	texts, extracted := s.extractAll(docs, results, log)
	if extracted == 0 {
		return nil, fmt.Errorf("%w: %d file(s) rejected", models.ErrNoValidResumes, len(docs))
	}

	partial, err := s.scoreAll(ctx, jd, docs, texts, results, opts.AllowPartial, log)
	if err != nil {
		return nil, err
	}

	ranked := Rank(results)

	var emails []models.Email
	if opts.GenerateEmails {
		emails = s.composeEmails(ctx, ranked, opts)
	}

	log.Info("screening finished",
		"extracted", extracted,
		"partial", partial,
		"elapsed", time.Since(started),
	)

	return &models.ScreeningResult{
		BatchID:        batchID,
		JobFingerprint: jd.Fingerprint(),
		Ranked:         ranked,
		Emails:         emails,
		Partial:        partial,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// extractAll fills texts for readable documents and FAILED slots in results
// for the rest. It returns how many documents were extracted.
func (s *screeningService) extractAll(docs []models.ResumeDocument, results []models.CandidateEvaluation, log *logging.Logger) ([]*models.ExtractedText, int) {
	texts := make([]*models.ExtractedText, len(docs))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, doc := range docs {
		g.Go(func() error {
			text, err := s.extractor.Extract(doc.Content, doc.Format)
			if err != nil {
				results[i] = extractionFailure(i, doc.Filename, err)
				log.Warn("resume extraction failed", "file", doc.Filename, "error", err)
				return nil
			}
			texts[i] = &text
			return nil
		})
	}
	_ = g.Wait()

	extracted := 0
	for _, t := range texts {
		if t != nil {
			extracted++
		}
	}
	return texts, extracted
}

func extractionFailure(position int, filename string, err error) models.CandidateEvaluation {
	var extErr *models.ExtractionError
	if errors.As(err, &extErr) {
		return models.FailedEvaluation(position, filename, string(extErr.Reason), extErr.Remark())
	}
	return models.FailedEvaluation(position, filename, string(models.ReasonCorruptFile), "The file could not be processed.")
}

// scoreAll scores every extracted resume with at most maxInFlight calls
// outstanding. An AUTH_ERROR aborts the batch.
func (s *screeningService) scoreAll(
	ctx context.Context,
	jd models.JobDescription,
	docs []models.ResumeDocument,
	texts []*models.ExtractedText,
	results []models.CandidateEvaluation,
	allowPartial bool,
	log *logging.Logger,
) (bool, error) {
	done := make([]bool, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxInFlight)
	for i, doc := range docs {
		if texts[i] == nil {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			ev, err := s.scoreOne(gctx, jd, i, doc.Filename, *texts[i])
			switch {
			case err == nil:
				results[i] = ev
			case models.IsAuthError(err):
				return err
			case gctx.Err() != nil:
				return nil
			default:
				svcErr := asServiceError(err)
				log.Warn("resume scoring failed", "file", doc.Filename, "kind", svcErr.Kind, "error", err)
				results[i] = models.FailedEvaluation(i, doc.Filename, string(svcErr.Kind), svcErr.Remark())
			}
			done[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("screening aborted", "error", err)
		return false, fmt.Errorf("screening aborted: %w", err)
	}

	var unfinished []int
	for i := range docs {
		if texts[i] != nil && !done[i] {
			unfinished = append(unfinished, i)
		}
	}
	if len(unfinished) == 0 {
		return false, nil
	}
	if !allowPartial {
		return false, fmt.Errorf("screening cancelled: %w", context.Cause(ctx))
	}

	for _, i := range unfinished {
		results[i] = models.FailedEvaluation(i, docs[i].Filename, failureCancelled, cancelledRemark)
	}
	log.Warn("screening cancelled, returning partial results", "unfinished", len(unfinished), "error", ctx.Err())
	return true, nil
}

func (s *screeningService) scoreOne(ctx context.Context, jd models.JobDescription, position int, filename string, text models.ExtractedText) (models.CandidateEvaluation, error) {
	req := s.prompts.Build(jd, text)

	raw, err := s.client.Score(ctx, req)
	if err != nil {
		return models.CandidateEvaluation{}, err
	}

	ev := s.parser.Parse(raw, models.CandidateID(position, filename))
	ev.Filename = filename
	ev.Position = position
	if ev.ParseStatus != models.ParseOK {
		s.log.Debug("scoring response degraded",
			"candidate", ev.CandidateID,
			"status", ev.ParseStatus,
			"truncated_prompt", req.Truncated,
		)
	}
	return ev, nil
}

// composeEmails drafts one email per scored candidate. Candidates that
// never produced a usable evaluation are skipped.
func (s *screeningService) composeEmails(ctx context.Context, ranked models.RankedResult, opts Options) []models.Email {
	threshold := opts.InviteThreshold
	if threshold <= 0 {
		threshold = DefaultInviteThreshold
	}

	drafts := make([]*models.Email, len(ranked))

	var g errgroup.Group
	g.SetLimit(s.maxInFlight)
	// Names and addresses come from each candidate, not the request.
	emailOpts := opts.Email
	emailOpts.CandidateName = ""
	emailOpts.CandidateEmail = ""

	for i, candidate := range ranked {
		if candidate.ParseStatus == models.ParseFailed {
			continue
		}
		g.Go(func() error {
			email := s.composer.Compose(ctx, candidate, DecisionFor(candidate.Score, threshold), emailOpts)
			drafts[i] = &email
			return nil
		})
	}
	_ = g.Wait()

	emails := make([]models.Email, 0, len(drafts))
	for _, d := range drafts {
		if d != nil {
			emails = append(emails, *d)
		}
	}
	return emails
}
