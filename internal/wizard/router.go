package wizard

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/roach88/avwizard/internal/store"
)

// View is a rendered page.
type View struct {
	Fragment Fragment
	Title    string
	Body     string

	// Banner is a user-visible failure line shown above Body. It is set when
	// a store operation failed while building the page.
	Banner string

	// Err is the failure behind Banner, or a *RenderError for a diagnostic view.
	Err error
}

// Failed reports whether the view carries a failure.
func (v View) Failed() bool {
	return v.Err != nil
}

// PageFunc builds the view for one page. It may return a partial view along
// with a store error; the router keeps the view and adds a banner.
type PageFunc func(ctx context.Context) (View, error)

// RenderError reports a page that could not be built.
type RenderError struct {
	Fragment Fragment
	Err      error
	Stack    []byte // set when the page panicked
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Fragment, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// IsRenderError reports whether err is a page render failure.
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}

// Router maps fragments to pages.
type Router struct {
	pages  map[Fragment]PageFunc
	logger *zap.Logger
}

// NewRouter creates a router over a fixed page table.
func NewRouter(pages map[Fragment]PageFunc, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := make(map[Fragment]PageFunc, len(pages))
	for f, fn := range pages {
		table[f] = fn
	}
	return &Router{pages: table, logger: logger}
}

// Route renders the page named by raw. It never panics and never returns an
// empty view: unknown fragments render Welcome, broken pages render a
// diagnostic.
func (r *Router) Route(ctx context.Context, raw string) View {
	return r.Render(ctx, ParseFragment(raw))
}

// Render renders f.
func (r *Router) Render(ctx context.Context, f Fragment) (v View) {
	fn, ok := r.pages[f]
	if !ok {
		return r.diagnostic(&RenderError{Fragment: f, Err: errors.New("no page registered")})
	}

	defer func() {
		if p := recover(); p != nil {
			v = r.diagnostic(&RenderError{
				Fragment: f,
				Err:      fmt.Errorf("panic: %v", p),
				Stack:    debug.Stack(),
			})
		}
	}()

	view, err := fn(ctx)
	view.Fragment = f
	if view.Title == "" {
		view.Title = f.Title()
	}
	if err == nil {
		return view
	}

	var se *store.Error
	if errors.As(err, &se) {
		r.logger.Warn("page storage failure", zap.String("page", string(f)), zap.Error(err))
		view.Banner = "Storage error: " + err.Error()
		view.Err = err
		return view
	}
	return r.diagnostic(&RenderError{Fragment: f, Err: err})
}

func (r *Router) diagnostic(re *RenderError) View {
	r.logger.Error("page render failed",
		zap.String("page", string(re.Fragment)),
		zap.Error(re.Err),
		zap.ByteString("stack", re.Stack),
	)
	return View{
		Fragment: re.Fragment,
		Title:    "Something went wrong",
		Body:     fmt.Sprintf("The %s page could not be displayed.\n\n%v\n", re.Fragment.Title(), re.Err),
		Banner:   re.Error(),
		Err:      re,
	}
}
