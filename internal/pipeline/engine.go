package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/contactscan/internal/aggregate"
	"github.com/nao1215/contactscan/internal/associate"
	"github.com/nao1215/contactscan/internal/config"
	"github.com/nao1215/contactscan/internal/detect"
	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/pattern"
	"github.com/nao1215/contactscan/internal/score"
	"github.com/nao1215/contactscan/internal/validate"
)

// Engine turns pages into scored, deduplicated contacts.
// An Engine is immutable after New and may run several times; every run gets
// its own contact table and validation cache.
type Engine struct {
	cfg        *config.Config
	library    *pattern.Library
	detector   *detect.Detector
	associator *associate.Associator
	scorer     *score.Scorer
	validator  validate.Validator
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine and its stages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithValidator sets the email validator. It overrides cfg.Validator.
func WithValidator(v validate.Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

// New creates an Engine from cfg. It fails before any page is processed if the
// configuration is invalid or the pattern rules do not compile; rule errors
// wrap pattern.ErrInvalidRule.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	lib, err := pattern.Compile(append(pattern.DefaultRules(), cfg.ExtraRules...))
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern rules: %w", err)
	}
	e.library = lib

	if e.validator == nil {
		v, err := validate.ByName(cfg.Validator)
		if err != nil {
			return nil, err
		}
		e.validator = v
	}

	e.detector = detect.New(lib, detect.WithLogger(e.logger))
	e.associator = associate.New(
		associate.WithWindow(cfg.Window),
		associate.WithHeadingNames(cfg.HeadingNames),
		associate.WithInferNames(cfg.InferNames),
		associate.WithInferCompany(cfg.InferCompany),
		associate.WithLogger(e.logger),
	)
	e.scorer = score.New(ScoreParams(cfg))
	return e, nil
}

// ScoreParams builds scoring parameters from cfg.
func ScoreParams(cfg *config.Config) score.Params {
	return score.Params{
		Weights:               cfg.MethodWeights,
		DomainMatchBonus:      cfg.DomainMatchBonus,
		CloseAttributionBonus: cfg.CloseAttributionBonus,
		CloseAttribution:      cfg.CloseAttribution,
		GenericRolePenalty:    cfg.GenericRolePenalty,
		GenericRoles:          cfg.GenericRoles,
		ValidBonus:            cfg.ValidBonus,
		CorroborationStep:     cfg.CorroborationStep,
		CorroborationCap:      cfg.CorroborationCap,
	}
}

// Rules returns the number of compiled pattern rules.
func (e *Engine) Rules() int {
	return e.library.Len()
}

// newPipeline builds the per-page step sequence for one run.
func (e *Engine) newPipeline(v validate.Validator) *Pipeline {
	return NewPipeline([]Step{
		NormalizeStep{},
		NewDetectStep(e.detector),
		NewAssociateStep(e.associator, e.cfg.Site),
		NewValidateStep(v, e.logger),
		NewScoreStep(e.scorer),
	}, WithPipelineLogger(e.logger))
}

// runStats are the page counters of one run.
type runStats struct {
	processed  atomic.Int64
	failed     atomic.Int64
	duplicates int
}

// Run processes pages until the channel is closed or ctx is cancelled, and
// returns the finalized result. It always returns a result.
//
// On cancellation no further pages are read. Pages already being processed
// stop at their next step boundary, records already queued are ingested, and
// only then is the contact table finalized.
func (e *Engine) Run(ctx context.Context, pages <-chan model.Page) *model.RunResult {
	result := model.NewRunResult(e.cfg.Site)
	result.MinConfidence = e.cfg.MinConfidence

	agg := aggregate.New(e.scorer,
		aggregate.WithStrict(e.cfg.Strict),
		aggregate.WithLogger(e.logger),
		aggregate.WithDisposableCheck(validate.IsDisposable),
	)
	cache := validate.NewCache(e.validator,
		validate.WithTimeout(e.cfg.ValidationTimeout),
		validate.WithLogger(e.logger),
	)
	pl := e.newPipeline(cache)

	// A single goroutine owns ingestion. The bounded queue blocks workers
	// when aggregation falls behind.
	queue := make(chan model.AssociatedRecord, e.cfg.QueueSize)
	ingested := make(chan struct{})
	go func() {
		defer close(ingested)
		for rec := range queue {
			if err := agg.Ingest(rec); err != nil {
				e.logger.Warn("record dropped", "email", rec.Email, "page", rec.SourceURL, "error", err)
			}
		}
	}()

	e.logger.Info("starting extraction",
		"run_id", result.RunID,
		"workers", e.cfg.Workers,
		"queue_size", e.cfg.QueueSize,
		"rules", e.library.Len(),
	)

	var stats runStats
	seen := make(map[uint64]bool)
	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Workers)

	index := 0
feed:
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			result.Interrupted = true
			break feed
		case page, ok := <-pages:
			if !ok {
				break feed
			}
			idx := index
			index++

			fp := fingerprint(page)
			if seen[fp] {
				stats.duplicates++
				e.logger.Debug("skipping duplicate page", "page", page.SourceURL, "index", idx)
				continue
			}
			seen[fp] = true

			g.Go(func() error {
				e.processPage(ctx, pl, page, idx, queue, &stats)
				return nil
			})
		}
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors
	close(queue)
	<-ingested

	if ctx.Err() != nil {
		result.Interrupted = true
	}

	all := agg.Snapshot()
	result.Contacts = agg.Finalize(e.cfg.MinConfidence)
	result.TotalContacts = len(all)
	result.Excluded = len(all) - len(result.Contacts)
	result.MethodsUsed = methodsUsed(all)
	result.PagesProcessed = int(stats.processed.Load())
	result.FailedPages = int(stats.failed.Load())
	result.DuplicatePages = stats.duplicates
	result.FinishedAt = time.Now()

	e.logger.Info("extraction complete",
		"run_id", result.RunID,
		"pages", result.PagesProcessed,
		"duplicates", result.DuplicatePages,
		"failed", result.FailedPages,
		"contacts", len(result.Contacts),
		"excluded", result.Excluded,
		"interrupted", result.Interrupted,
		"elapsed", result.Duration(),
	)
	return result
}

// RunPages is Run over a fixed slice of pages.
func (e *Engine) RunPages(ctx context.Context, pages []model.Page) *model.RunResult {
	ch := make(chan model.Page)
	go func() {
		defer close(ch)
		for _, p := range pages {
			select {
			case ch <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	return e.Run(ctx, ch)
}

// processPage runs one page through pl and queues its records.
// A panic anywhere in the page's pipeline fails only that page.
func (e *Engine) processPage(
	ctx context.Context,
	pl *Pipeline,
	page model.Page,
	index int,
	queue chan<- model.AssociatedRecord,
	stats *runStats,
) {
	defer func() {
		if r := recover(); r != nil {
			stats.failed.Add(1)
			e.logger.Error("page pipeline panicked", "page", page.SourceURL, "index", index, "panic", r)
		}
	}()

	res := model.NewPageResult(page, index)
	if err := pl.Execute(ctx, res); err != nil {
		if ctx.Err() == nil {
			stats.failed.Add(1)
		}
		return
	}

	for _, rec := range res.Records {
		queue <- rec
	}
	stats.processed.Add(1)
	e.logger.Debug("page processed",
		"page", page.SourceURL,
		"candidates", len(res.Candidates),
		"records", len(res.Records),
	)
}

// fingerprint hashes the parts of a page that determine its output.
func fingerprint(p model.Page) uint64 {
	d := xxhash.New()
	for _, s := range []string{p.SourceURL, p.SiteURL, p.Text, p.Rendered, p.Kind.String()} {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	for _, m := range p.Mailtos {
		_, _ = d.WriteString(m)
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.WriteString(strconv.FormatFloat(p.OCRConfidence, 'g', -1, 64))
	return d.Sum64()
}

func methodsUsed(contacts []model.Contact) []model.Method {
	set := make(map[model.Method]bool)
	for _, c := range contacts {
		for _, m := range c.Methods {
			set[m] = true
		}
	}
	out := make([]model.Method, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stronger(out[j]) })
	return out
}
