package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pagewin/internal/collection"
	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/memory"
	"github.com/roach88/pagewin/internal/pager"
	"github.com/roach88/pagewin/internal/querygoqu"
	"github.com/roach88/pagewin/internal/querysql"
	"github.com/roach88/pagewin/internal/store"
	"github.com/roach88/pagewin/internal/window"
)

// Backend names.
const (
	// BackendMemory evaluates the query IR in memory with the expanded
	// keyset predicate.
	BackendMemory = "memory"
	// BackendSQLite runs querysql SQL on SQLite with row-value keyset
	// predicates.
	BackendSQLite = "sqlite"
	// BackendGoqu runs goqu-built SQL on SQLite with the expanded keyset
	// predicate.
	BackendGoqu = "goqu"
)

// AllBackends lists every backend in run order.
var AllBackends = []string{BackendMemory, BackendSQLite, BackendGoqu}

// backend is a loaded executor plus the rewriter it pages with.
type backend struct {
	exec     pager.Executor
	rewriter window.KeysetRewriter
	close    func() error
}

func openBackend(ctx context.Context, name string, spec *collection.Spec, rows []ir.Object, logger *slog.Logger) (*backend, error) {
	switch name {
	case BackendMemory:
		m := memory.New()
		m.CreateTable(spec.Table)
		if err := m.Insert(ctx, spec.Table, rows...); err != nil {
			return nil, err
		}
		return &backend{exec: m, rewriter: window.ExpansionRewriter{}, close: func() error { return nil }}, nil

	case BackendSQLite:
		return openSQLite(ctx, spec, rows, querysql.RowValueRewriter{},
			store.WithLogger(logger))

	case BackendGoqu:
		c, err := querygoqu.New(querygoqu.SQLite3)
		if err != nil {
			return nil, err
		}
		return openSQLite(ctx, spec, rows, window.ExpansionRewriter{},
			store.WithCompiler(c), store.WithLogger(logger))
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

func openSQLite(ctx context.Context, spec *collection.Spec, rows []ir.Object, rw window.KeysetRewriter, opts ...store.Option) (*backend, error) {
	st, err := store.Open(":memory:", opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}

	def, err := spec.Definition()
	if err == nil {
		err = st.CreateCollection(ctx, def)
	}
	if err == nil {
		err = st.Insert(ctx, spec.Table, rows...)
	}
	if err != nil {
		st.Close()
		return nil, err
	}
	return &backend{exec: st, rewriter: rw, close: st.Close}, nil
}
