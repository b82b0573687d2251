package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"

	"github.com/roach88/pagewin/internal/collection"
	"github.com/roach88/pagewin/internal/cursor"
	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/pager"
	"github.com/roach88/pagewin/internal/store"
	"github.com/roach88/pagewin/internal/window"
)

// Option configures Run.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger routes backend and pager debug logs. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes a scenario on each of its backends and returns the result.
//
// Execution flow:
//  1. Load the collection spec and the fixture rows
//  2. For each backend, load the rows into a fresh store and run every step
//  3. Check each outcome against its expect clause
//  4. Check every backend against the first
//
// A returned error means the scenario could not run at all; failed checks
// are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	spec, rows, err := loadInputs(scenario)
	if err != nil {
		return nil, err
	}

	backends := scenario.Backends
	if len(backends) == 0 {
		backends = AllBackends
	}

	result := NewResult()
	result.Backends = backends
	for i, name := range backends {
		outcomes, err := runBackend(ctx, scenario, spec, rows, name, cfg.logger)
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", name, err)
		}

		for j, step := range scenario.Steps {
			for _, msg := range checkExpect(step.Expect, outcomes[j]) {
				result.AddError(fmt.Sprintf("[%s] step %s: %s", name, step.Name, msg))
			}
		}

		if i == 0 {
			result.Outcomes = outcomes
			continue
		}
		for j := range outcomes {
			if !reflect.DeepEqual(outcomes[j], result.Outcomes[j]) {
				result.AddError(fmt.Sprintf("[%s] step %s: disagrees with %s:\n  %s: %+v\n  %s: %+v",
					name, outcomes[j].Step, backends[0],
					backends[0], result.Outcomes[j], name, outcomes[j]))
			}
		}
	}
	return result, nil
}

func loadInputs(scenario *Scenario) (*collection.Spec, []ir.Object, error) {
	specs, err := collection.LoadDir(scenario.Specs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load specs: %w", err)
	}
	spec, ok := specs.Lookup(scenario.Collection)
	if !ok {
		return nil, nil, fmt.Errorf("collection %q not found in %s", scenario.Collection, scenario.Specs)
	}

	f, err := os.Open(scenario.Fixture)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	table, rows, err := store.ReadFixture(f)
	if err != nil {
		return nil, nil, err
	}
	if table != spec.Table {
		return nil, nil, fmt.Errorf("fixture is for table %q, collection %s uses %q", table, spec.Name, spec.Table)
	}
	return spec, rows, nil
}

func runBackend(ctx context.Context, scenario *Scenario, spec *collection.Spec, rows []ir.Object, name string, logger *slog.Logger) ([]Outcome, error) {
	b, err := openBackend(ctx, name, spec, rows, logger)
	if err != nil {
		return nil, err
	}
	defer b.close()

	p := pager.New(b.exec,
		pager.WithCodec(cursor.Codec{Secret: scenario.Name}),
		pager.WithScope(spec.Name),
		pager.WithRewriter(b.rewriter),
		pager.WithLogger(logger),
	)

	outcomes := make([]Outcome, 0, len(scenario.Steps))
	var (
		lastReq  window.Request
		lastPage pager.Page
		lastErr  error
	)
	for _, step := range scenario.Steps {
		out := Outcome{Step: step.Name}

		var page pager.Page
		req, err := requestFor(spec, step, lastReq, lastPage, lastErr)
		if err == nil {
			switch step.Follow {
			case FollowNext:
				page, err = p.FindAfter(ctx, req, lastPage.NextToken)
			case FollowPrev:
				page, err = p.FindAfter(ctx, req, lastPage.PrevToken)
			default:
				page, err = p.Find(ctx, req)
			}
		}

		if err != nil {
			out.Error = errorCode(err)
		} else {
			fillOutcome(&out, page, spec.Key)
		}
		outcomes = append(outcomes, out)
		lastReq, lastPage, lastErr = req, page, err
	}
	return outcomes, nil
}

func requestFor(spec *collection.Spec, step Step, lastReq window.Request, lastPage pager.Page, lastErr error) (window.Request, error) {
	if step.Follow == "" {
		return spec.Request(step.Request)
	}
	if lastErr != nil {
		return window.Request{}, fmt.Errorf("previous step failed: %w", lastErr)
	}
	token := lastPage.NextToken
	if step.Follow == FollowPrev {
		token = lastPage.PrevToken
	}
	if token == "" {
		return window.Request{}, errNoToken
	}
	// Drop the previous position: the token carries the new one.
	return lastReq.At(window.Unpaged()), nil
}

var errNoToken = errors.New("previous step has no token in that direction")

func fillOutcome(out *Outcome, page pager.Page, key string) {
	out.Keys = make([]any, len(page.Items))
	for i, item := range page.Items {
		out.Keys[i] = ir.ToAny(item.Get(key))
	}
	out.HasNext = page.HasNext
	out.HasPrevious = page.HasPrevious
	out.Total = page.Total
	out.Number = page.Number
	out.NextToken = page.NextToken != ""
	out.PrevToken = page.PrevToken != ""
}

// errorCode maps an error to a stable code for expect clauses and golden
// files.
func errorCode(err error) string {
	var werr *window.Error
	switch {
	case errors.As(err, &werr):
		return string(werr.Code)
	case errors.Is(err, cursor.ErrInvalidCursor):
		return "INVALID_CURSOR"
	case errors.Is(err, collection.ErrUnknownProperty):
		return "UNKNOWN_PROPERTY"
	case errors.Is(err, errNoToken):
		return "NO_TOKEN"
	}
	return "ERROR"
}
