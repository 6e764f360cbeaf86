package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/thinkscotty/fakenews/internal/ai"
	"github.com/thinkscotty/fakenews/internal/models"
	"github.com/thinkscotty/fakenews/internal/scraper"
)

type fakeExtractor struct {
	text string
	err  error
	urls []string
}

func (f *fakeExtractor) ExtractText(ctx context.Context, pageURL string) (string, error) {
	f.urls = append(f.urls, pageURL)
	return f.text, f.err
}

// fakeWriter records which model each operation was asked to use.
type fakeWriter struct {
	mu     sync.Mutex
	models map[string]string
	texts  []string
	failOn string
	err    error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{models: map[string]string{}}
}

func (f *fakeWriter) note(ctx context.Context, op, text string, opts []ai.CallOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	model := "default"
	// Resolve WithModel the same way the client does.
	c := ai.NewClient(modelSpy{&model}, "default")
	_, _ = c.Complete(ctx, "x", opts...)
	f.models[op] = model
	f.texts = append(f.texts, text)
	if op == f.failOn {
		return f.err
	}
	return nil
}

func (f *fakeWriter) Summarize(ctx context.Context, text string, opts ...ai.CallOption) (string, error) {
	if err := f.note(ctx, "summary", text, opts); err != nil {
		return "", err
	}
	return "A. B. C.", nil
}

func (f *fakeWriter) SummarizeStructured(ctx context.Context, text string, opts ...ai.CallOption) (ai.TopicsJSON, error) {
	if err := f.note(ctx, "structured", text, opts); err != nil {
		return "", err
	}
	return `[{"main_entity":"A","news_sentence":"A did it."}]`, nil
}

func (f *fakeWriter) GenerateFakeNews(ctx context.Context, text string, opts ...ai.CallOption) (string, error) {
	if err := f.note(ctx, "fake", text, opts); err != nil {
		return "", err
	}
	return "Nothing happened.", nil
}

// modelSpy is a provider that captures the resolved model name.
type modelSpy struct{ model *string }

func (m modelSpy) Name() string { return "spy" }

func (m modelSpy) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	*m.model = req.Model
	return &ai.ChatResponse{}, nil
}

type memLedger struct {
	mu       sync.Mutex
	started  []models.Run
	finished map[string]error
}

func (l *memLedger) StartRun(run models.Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, run)
	return nil
}

func (l *memLedger) FinishRun(id string, runErr error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finished == nil {
		l.finished = map[string]error{}
	}
	l.finished[id] = runErr
	return nil
}

func TestRunProducesAllOutputs(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		name := "sequential"
		if concurrent {
			name = "concurrent"
		}
		t.Run(name, func(t *testing.T) {
			ex := &fakeExtractor{text: "page text"}
			w := newFakeWriter()
			p := New(ex, w, Options{Model: "big", StructuredModel: "small", Concurrent: concurrent})

			res, err := p.Run(context.Background(), "https://example.com/news")
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if res.RunID == "" || res.URL != "https://example.com/news" || res.Text != "page text" {
				t.Errorf("result header = %+v", res)
			}
			if res.Summary != "A. B. C." || res.FakeNews != "Nothing happened." || res.Structured == "" {
				t.Errorf("result outputs = %+v", res)
			}
			if w.models["summary"] != "big" || w.models["fake"] != "big" || w.models["structured"] != "small" {
				t.Errorf("models used = %v", w.models)
			}
			for _, txt := range w.texts {
				if txt != "page text" {
					t.Errorf("stage received %q, want the extracted text", txt)
				}
			}
		})
	}
}

func TestRunEmptyModelsUseWriterDefault(t *testing.T) {
	w := newFakeWriter()
	p := New(&fakeExtractor{text: "t"}, w, Options{})
	if _, err := p.Run(context.Background(), "https://example.com"); err != nil {
		t.Fatal(err)
	}
	for op, m := range w.models {
		if m != "default" {
			t.Errorf("%s used %q, want the default model", op, m)
		}
	}
}

func TestRunExtractionFailure(t *testing.T) {
	extErr := &scraper.ExtractionError{URL: "https://example.com", StatusCode: 404, Err: errors.New("Not Found")}
	w := newFakeWriter()
	ledger := &memLedger{}
	p := New(&fakeExtractor{err: extErr}, w, Options{Ledger: ledger})

	res, err := p.Run(context.Background(), "https://example.com")
	if res != nil {
		t.Errorf("expected no result, got %+v", res)
	}
	var ee *scraper.ExtractionError
	if !errors.As(err, &ee) || ee.StatusCode != 404 {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "extract: ") {
		t.Errorf("error not labelled with the stage: %v", err)
	}
	if len(w.texts) != 0 {
		t.Error("no model call should happen after a failed extraction")
	}

	if len(ledger.started) != 1 {
		t.Fatalf("ledger runs = %d", len(ledger.started))
	}
	if got := ledger.finished[ledger.started[0].ID]; !errors.Is(got, extErr) {
		t.Errorf("ledger recorded %v", got)
	}
}

func TestRunStageFailureAborts(t *testing.T) {
	modelErr := &ai.ModelRequestError{Provider: "openrouter", Model: "small", StatusCode: 400, Err: errors.New("schema rejected")}

	t.Run("sequential", func(t *testing.T) {
		w := newFakeWriter()
		w.failOn, w.err = "structured", modelErr
		p := New(&fakeExtractor{text: "t"}, w, Options{})

		_, err := p.Run(context.Background(), "https://example.com")
		var mre *ai.ModelRequestError
		if !errors.As(err, &mre) {
			t.Fatalf("expected ModelRequestError, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "structured summary: ") {
			t.Errorf("error not labelled with the stage: %v", err)
		}
		if _, ok := w.models["fake"]; ok {
			t.Error("fake news should not run after the structured summary failed")
		}
	})

	t.Run("concurrent", func(t *testing.T) {
		w := newFakeWriter()
		w.failOn, w.err = "fake", modelErr
		p := New(&fakeExtractor{text: "t"}, w, Options{Concurrent: true})

		_, err := p.Run(context.Background(), "https://example.com")
		if !errors.Is(err, modelErr) {
			t.Fatalf("expected the model error, got %v", err)
		}
	})
}

func TestRunRecordsLedger(t *testing.T) {
	ledger := &memLedger{}
	p := New(&fakeExtractor{text: "t"}, newFakeWriter(), Options{Ledger: ledger})

	res, err := p.Run(context.Background(), "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(ledger.started) != 1 || ledger.started[0].ID != res.RunID || ledger.started[0].URL != "https://example.com" {
		t.Errorf("started = %+v", ledger.started)
	}
	got, ok := ledger.finished[res.RunID]
	if !ok || got != nil {
		t.Errorf("finished = %v (present %v)", got, ok)
	}
}

func TestRunIDsAreUnique(t *testing.T) {
	p := New(&fakeExtractor{text: "t"}, newFakeWriter(), Options{})
	a, _ := p.Run(context.Background(), "https://example.com")
	b, _ := p.Run(context.Background(), "https://example.com")
	if a.RunID == b.RunID {
		t.Errorf("run IDs collide: %s", a.RunID)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	err := Print(&buf, &Result{
		Summary:    "A. B. C.",
		Structured: `[{"main_entity":"A","news_sentence":"A did it."}]`,
		FakeNews:   "Nothing happened.",
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "=== SUMMARY ===\nA. B. C.\n\n" +
		"=== STRUCTURED SUMMARY ===\n[{\"main_entity\":\"A\",\"news_sentence\":\"A did it.\"}]\n\n" +
		"=== FAKE NEWS ===\nNothing happened.\n\n"
	if buf.String() != want {
		t.Errorf("Print output:\n%q\nwant:\n%q", buf.String(), want)
	}
}
