package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thinkscotty/fakenews/internal/ai"
	"github.com/thinkscotty/fakenews/internal/models"
)

// Extractor fetches a page and returns its visible text.
type Extractor interface {
	ExtractText(ctx context.Context, pageURL string) (string, error)
}

// Writer produces the three model outputs for a page's text.
type Writer interface {
	Summarize(ctx context.Context, text string, opts ...ai.CallOption) (string, error)
	SummarizeStructured(ctx context.Context, text string, opts ...ai.CallOption) (ai.TopicsJSON, error)
	GenerateFakeNews(ctx context.Context, text string, opts ...ai.CallOption) (string, error)
}

// Ledger records run outcomes. *database.DB satisfies it.
type Ledger interface {
	StartRun(run models.Run) error
	FinishRun(id string, runErr error) error
}

type Options struct {
	// Model is used for the summary and the fake news article. Empty means
	// the writer's default.
	Model string
	// StructuredModel is used for the structured summary.
	StructuredModel string
	// Concurrent issues the three model calls in parallel.
	Concurrent bool
	// Ledger is optional.
	Ledger Ledger
}

// Result holds everything one run produced.
type Result struct {
	RunID      string        `json:"run_id"`
	URL        string        `json:"url"`
	Text       string        `json:"text"`
	Summary    string        `json:"summary"`
	Structured ai.TopicsJSON `json:"structured"`
	FakeNews   string        `json:"fake_news"`
}

type Pipeline struct {
	extractor Extractor
	writer    Writer
	opts      Options
}

func New(extractor Extractor, writer Writer, opts Options) *Pipeline {
	return &Pipeline{extractor: extractor, writer: writer, opts: opts}
}

// Run extracts the page text and feeds it to the summary, structured summary
// and fake news stages. The first failing stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, pageURL string) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), URL: pageURL}
	ctx = ai.WithRunID(ctx, res.RunID)
	start := time.Now()

	p.startRun(res)
	slog.Info("Run started", "run_id", res.RunID, "url", pageURL, "concurrent", p.opts.Concurrent)

	err := p.run(ctx, res)
	p.finishRun(res.RunID, err)
	if err != nil {
		slog.Error("Run failed", "run_id", res.RunID, "elapsed", time.Since(start).Round(time.Millisecond), "error", err)
		return nil, err
	}

	slog.Info("Run complete", "run_id", res.RunID, "text_chars", len(res.Text), "elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, res *Result) error {
	text, err := p.extractor.ExtractText(ctx, res.URL)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	res.Text = text

	summary := func(ctx context.Context) error {
		out, err := p.writer.Summarize(ctx, text, ai.WithModel(p.opts.Model))
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		res.Summary = out
		return nil
	}
	structured := func(ctx context.Context) error {
		out, err := p.writer.SummarizeStructured(ctx, text, ai.WithModel(p.opts.StructuredModel))
		if err != nil {
			return fmt.Errorf("structured summary: %w", err)
		}
		res.Structured = out
		return nil
	}
	fakeNews := func(ctx context.Context) error {
		out, err := p.writer.GenerateFakeNews(ctx, text, ai.WithModel(p.opts.Model))
		if err != nil {
			return fmt.Errorf("fake news: %w", err)
		}
		res.FakeNews = out
		return nil
	}
	stages := []func(context.Context) error{summary, structured, fakeNews}

	if !p.opts.Concurrent {
		for _, stage := range stages {
			if err := stage(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	// Each stage writes a distinct Result field.
	g, gctx := errgroup.WithContext(ctx)
	for _, stage := range stages {
		g.Go(func() error { return stage(gctx) })
	}
	return g.Wait()
}

func (p *Pipeline) startRun(res *Result) {
	if p.opts.Ledger == nil {
		return
	}
	if err := p.opts.Ledger.StartRun(models.Run{ID: res.RunID, URL: res.URL, StartedAt: time.Now()}); err != nil {
		slog.Warn("Failed to record run start", "run_id", res.RunID, "error", err)
	}
}

func (p *Pipeline) finishRun(id string, runErr error) {
	if p.opts.Ledger == nil {
		return
	}
	if err := p.opts.Ledger.FinishRun(id, runErr); err != nil {
		slog.Warn("Failed to record run result", "run_id", id, "error", err)
	}
}
