package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/contactscan/internal/associate"
	"github.com/nao1215/contactscan/internal/detect"
	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/normalize"
	"github.com/nao1215/contactscan/internal/score"
	"github.com/nao1215/contactscan/internal/validate"
)

// NormalizeStep cleans the page text into NormalizedText.
type NormalizeStep struct{}

// Name returns the step name.
func (NormalizeStep) Name() string {
	return "normalize"
}

// Do executes the normalize step.
func (NormalizeStep) Do(_ context.Context, res *model.PageResult) error {
	res.Normalized = normalize.NormalizePage(res.Page)
	return nil
}

// DetectStep finds candidates in the normalized text.
type DetectStep struct {
	detector *detect.Detector
}

// NewDetectStep creates a DetectStep.
func NewDetectStep(detector *detect.Detector) *DetectStep {
	return &DetectStep{detector: detector}
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do executes the detect step.
func (s *DetectStep) Do(_ context.Context, res *model.PageResult) error {
	res.Candidates = s.detector.Detect(res.Normalized, res.Page.SourceURL)
	return nil
}

// AssociateStep turns email candidates into records with nearby attributes.
type AssociateStep struct {
	associator *associate.Associator

	// site is used for pages that do not name their own site.
	site string
}

// NewAssociateStep creates an AssociateStep. site is the fallback site URL
// for domain matching.
func NewAssociateStep(associator *associate.Associator, site string) *AssociateStep {
	return &AssociateStep{associator: associator, site: site}
}

// Name returns the step name.
func (s *AssociateStep) Name() string {
	return "associate"
}

// Do executes the associate step.
func (s *AssociateStep) Do(_ context.Context, res *model.PageResult) error {
	records := s.associator.Associate(res.Candidates)
	for i := range records {
		records[i].PageIndex = res.Index
		records[i].SiteURL = res.Page.SiteURL
		if records[i].SiteURL == "" {
			records[i].SiteURL = s.site
		}
		if res.Page.Kind == model.ContentOCRText {
			records[i].OCRConfidence = res.Page.OCRConfidence
		}
	}
	res.Records = records
	return nil
}

// ValidateStep asks the validator about every record's address.
type ValidateStep struct {
	validator validate.Validator
	logger    *slog.Logger
}

// NewValidateStep creates a ValidateStep.
func NewValidateStep(validator validate.Validator, logger *slog.Logger) *ValidateStep {
	if validator == nil {
		validator = validate.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStep{validator: validator, logger: logger}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validate step. Validator failures leave the verdict Unknown.
func (s *ValidateStep) Do(ctx context.Context, res *model.PageResult) error {
	for i := range res.Records {
		v, err := s.validator.Validate(ctx, res.Records[i].Email)
		if err != nil {
			s.logger.Warn("email validation failed, treating as unknown",
				"email", res.Records[i].Email,
				"error", err,
			)
			v = model.VerdictUnknown
		}
		res.Records[i].Verdict = v
	}
	return nil
}

// ScoreStep computes the per-record confidence.
type ScoreStep struct {
	scorer *score.Scorer
}

// NewScoreStep creates a ScoreStep.
func NewScoreStep(scorer *score.Scorer) *ScoreStep {
	return &ScoreStep{scorer: scorer}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do executes the score step.
func (s *ScoreStep) Do(_ context.Context, res *model.PageResult) error {
	for i := range res.Records {
		res.Records[i].Score = s.scorer.Score(res.Records[i])
	}
	return nil
}
