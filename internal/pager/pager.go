// Package pager runs windowed reads end to end: it resolves a request into
// a plan, fetches rows (and the total, for pages) from an Executor,
// assembles the envelope and turns keyset links into opaque tokens.
package pager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/pagewin/internal/cursor"
	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
	"github.com/roach88/pagewin/internal/window"
)

// ErrNoCodec is returned by FindAfter when the pager has no cursor codec.
var ErrNoCodec = errors.New("pager has no cursor codec")

// Executor runs query IR against a backend.
// memory.Store and store.Store both satisfy it.
type Executor interface {
	Fetch(ctx context.Context, q queryir.Select) ([]ir.Object, error)
	Count(ctx context.Context, q queryir.Count) (int64, error)
}

// Page is a result envelope plus the tokens for its keyset neighbours.
// Tokens are empty when there is no neighbour, when the position is not a
// keyset position, or when the pager has no codec.
type Page struct {
	window.Result[ir.Object]
	NextToken string
	PrevToken string
}

// Pager executes windowed requests. Safe for concurrent use when the
// Executor is.
type Pager struct {
	exec      Executor
	codec     *cursor.Codec
	scope     string
	resolving []window.ResolveOption
	logger    *slog.Logger
}

// Option configures a Pager.
type Option func(*Pager)

// WithCodec enables cursor tokens.
func WithCodec(c cursor.Codec) Option {
	return func(p *Pager) {
		p.codec = &c
	}
}

// WithScope sets the name tokens are bound to. The default is the base
// query's table. Either way the base filter is folded into the scope.
func WithScope(scope string) Option {
	return func(p *Pager) {
		p.scope = scope
	}
}

// WithRewriter selects the keyset predicate rewriter passed to Resolve.
func WithRewriter(r window.KeysetRewriter) Option {
	return func(p *Pager) {
		p.resolving = append(p.resolving, window.WithRewriter(r))
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pager) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Pager over exec.
func New(exec Executor, opts ...Option) *Pager {
	p := &Pager{exec: exec, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan resolves req without running it.
func (p *Pager) Plan(req window.Request) (window.Plan, error) {
	return window.Resolve(req, p.resolving...)
}

// Find resolves req, runs the plan and assembles the page.
func (p *Pager) Find(ctx context.Context, req window.Request) (Page, error) {
	start := time.Now()

	plan, err := p.Plan(req)
	if err != nil {
		return Page{}, err
	}
	p.logger.DebugContext(ctx, "resolved plan",
		"table", plan.Query.From,
		"shape", plan.Shape.String(),
		"size", plan.Size,
		"probe", plan.Probe,
		"count", plan.Count != nil,
	)

	rows, err := p.exec.Fetch(ctx, plan.Query)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", plan.Query.From, err)
	}

	var total int64
	if plan.Count != nil {
		total, err = p.exec.Count(ctx, *plan.Count)
		if err != nil {
			return Page{}, fmt.Errorf("count %s: %w", plan.Count.From, err)
		}
	}

	res, err := window.Assemble(plan, rows, total, window.ObjectKeys(plan))
	if err != nil {
		return Page{}, err
	}

	page := Page{Result: res}
	if err := p.link(&page, req.Base); err != nil {
		return Page{}, err
	}

	p.logger.DebugContext(ctx, "window fetched",
		"table", plan.Query.From,
		"rows", len(rows),
		"items", len(res.Items),
		"has_next", res.HasNext,
		"has_previous", res.HasPrevious,
		"duration", time.Since(start),
	)
	return page, nil
}

// FindAfter decodes token into a keyset position and runs req at it.
// req must leave sort and limit at their sentinels: the token carries
// both.
func (p *Pager) FindAfter(ctx context.Context, req window.Request, token string) (Page, error) {
	pos, err := p.Decode(req, token)
	if err != nil {
		return Page{}, err
	}
	return p.Find(ctx, req.At(pos))
}

// Decode parses a token issued for req's scope.
func (p *Pager) Decode(req window.Request, token string) (window.KeysetPosition, error) {
	if p.codec == nil {
		return window.KeysetPosition{}, ErrNoCodec
	}
	scope, err := p.scopeOf(req.Base)
	if err != nil {
		return window.KeysetPosition{}, err
	}
	return p.codec.Decode(token, scope)
}

// Token encodes pos for req's scope.
func (p *Pager) Token(req window.Request, pos window.KeysetPosition) (string, error) {
	if p.codec == nil {
		return "", ErrNoCodec
	}
	scope, err := p.scopeOf(req.Base)
	if err != nil {
		return "", err
	}
	return p.codec.Encode(pos, scope)
}

func (p *Pager) link(page *Page, base queryir.Select) error {
	if p.codec == nil {
		return nil
	}
	scope, err := p.scopeOf(base)
	if err != nil {
		return err
	}
	if next, ok := page.Next.(window.KeysetPosition); ok {
		tok, err := p.codec.Encode(next, scope)
		if err != nil {
			return fmt.Errorf("next token: %w", err)
		}
		page.NextToken = tok
	}
	if prev, ok := page.Prev.(window.KeysetPosition); ok {
		tok, err := p.codec.Encode(prev, scope)
		if err != nil {
			return fmt.Errorf("previous token: %w", err)
		}
		page.PrevToken = tok
	}
	return nil
}

func (p *Pager) scopeOf(base queryir.Select) (string, error) {
	name := p.scope
	if name == "" {
		name = base.From
	}
	return cursor.Scope(name, base.Filter)
}
