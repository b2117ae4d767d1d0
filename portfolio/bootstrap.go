package portfolio

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/briancabello/briancabello.github.io/content"
	"github.com/briancabello/briancabello.github.io/log"
	"github.com/briancabello/briancabello.github.io/templates"
	"github.com/briancabello/briancabello.github.io/ui"
	"github.com/karlseguin/typed"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher fetches the documents and template sources of a page.
type Fetcher interface {
	templates.SourceFetcher
	FetchDocument(ctx context.Context, name string) (any, error)
}

type Options struct {
	Features       Features
	QueryParameter string
	Requirements   Requirements
	UI             ui.Options

	// HomeURL is the address of the main page, linked from the error views.
	HomeURL string
}

func DefaultOptions() Options {
	return Options{
		Features:       DefaultFeatures(),
		QueryParameter: DefaultQueryParameter,
		Requirements:   DefaultRequirements(),
		UI: ui.Options{
			HeaderOffset:      ui.DefaultHeaderOffset,
			CollapseMobileNav: true,
		},
		HomeURL: "/",
	}
}

// Controller loads pages. It holds no per-page state and can run any number
// of loads concurrently.
type Controller struct {
	opts     Options
	fetcher  Fetcher
	engine   templates.Engine
	widgets  ui.Widgets
	clock    func() time.Time
	builder  *Builder
	composer Composer
	log      *zap.SugaredLogger
	tracer   trace.Tracer
}

type ControllerOption func(*Controller)

// WithClock sets the clock used for the current year and analytics.
func WithClock(clock func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.clock = clock
	}
}

func WithWidgets(widgets ui.Widgets) ControllerOption {
	return func(c *Controller) {
		c.widgets = widgets
	}
}

func NewController(opts Options, fetcher Fetcher, engine templates.Engine, options ...ControllerOption) *Controller {
	if opts.QueryParameter == "" {
		opts.QueryParameter = DefaultQueryParameter
	}
	if opts.HomeURL == "" {
		opts.HomeURL = "/"
	}

	c := &Controller{
		opts:    opts,
		fetcher: fetcher,
		engine:  engine,
		clock:   time.Now,
		log:     log.S().Named("portfolio"),
		tracer:  otel.Tracer("folio/portfolio"),
	}

	for _, option := range options {
		option(c)
	}

	c.opts.UI.CollapseMobileNav = c.opts.UI.CollapseMobileNav && c.opts.Features.MobileNavCollapse
	c.builder = NewBuilder(opts.Requirements, c.clock)
	return c
}

func (c *Controller) Clock() func() time.Time {
	return c.clock
}

// State is the state of a page load.
type State int

const (
	Idle State = iota
	Loading
	Rendered
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Load is a single page load: Idle, then Loading, then either Rendered or
// Failed. Both final states are terminal.
type Load struct {
	c    *Controller
	page *Page

	mu       sync.Mutex
	state    State
	scenario Scenario
	context  RenderContext
	err      error
}

func (c *Controller) NewLoad(page *Page) *Load {
	return &Load{c: c, page: page}
}

// Load runs a new load of page for the given query. The outcome is reported
// by the returned Load.
func (c *Controller) Load(ctx context.Context, page *Page, query url.Values) *Load {
	l := c.NewLoad(page)
	_ = l.Run(ctx, query)
	return l
}

func (l *Load) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Load) Scenario() Scenario {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scenario
}

// Err returns the error that failed the load.
func (l *Load) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Context returns the render context of a rendered load.
func (l *Load) Context() RenderContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.context
}

// Run selects the scenario from query, fetches and compiles everything the
// scenario needs and renders the page. Any failure replaces the page content
// with the error view instead, and is returned.
func (l *Load) Run(ctx context.Context, query url.Values) error {
	scenario := SelectScenario(query, l.c.opts.QueryParameter, l.c.opts.Features)

	l.mu.Lock()
	if l.state != Idle {
		l.mu.Unlock()
		return ErrLoadStarted
	}
	l.state = Loading
	l.scenario = scenario
	l.mu.Unlock()

	ctx, span := l.c.tracer.Start(ctx, "portfolio.Load", trace.WithAttributes(
		attribute.String("portfolio.scenario", scenario.String()),
	))
	defer span.End()

	start := time.Now()
	rc, err := l.run(ctx, scenario)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.fail(scenario, query, err)
		return err
	}

	l.mu.Lock()
	l.state = Rendered
	l.context = rc
	l.mu.Unlock()

	l.c.log.Debugw("page rendered", "scenario", scenario.String(), "took", time.Since(start))
	return nil
}

func (l *Load) run(ctx context.Context, scenario Scenario) (RenderContext, error) {
	c := l.c
	registry := templates.NewRegistry(c.fetcher, c.engine)

	// Siblings keep the parent context: the first error fails the load at
	// once, the others run to completion and are ignored.
	g, gctx := errgroup.WithContext(ctx)

	var (
		mu   sync.Mutex
		docs = Documents{}
	)

	g.Go(func() error {
		return registry.RegisterAll(ctx, Templates(scenario))
	})

	for _, req := range c.opts.Requirements.For(scenario) {
		g.Go(func() error {
			doc, err := c.fetcher.FetchDocument(ctx, req.Document)
			if err != nil {
				var rerr *content.ResourceUnavailableError
				if req.Optional && errors.As(err, &rerr) && rerr.NotFound() {
					c.log.Debugw("optional document missing", "document", req.Document)
					return nil
				}
				return err
			}

			mu.Lock()
			docs[req.Field] = doc
			mu.Unlock()
			return nil
		})
	}

	settled := make(chan error, 1)
	go func() {
		settled <- g.Wait()
	}()

	var err error
	select {
	case err = <-settled:
	case <-gctx.Done():
		err = firstError(ctx, gctx, settled)
	}
	if err != nil {
		return nil, err
	}

	rc, err := c.builder.Build(scenario, docs)
	if err != nil {
		return nil, err
	}

	err = c.composer.Render(scenario, registry, rc, l.page)
	if err != nil {
		return nil, err
	}

	if _, ok := scenario.(Main); ok {
		c.applySiteConfig(l.page, rc)

		// UI failures are logged by the initializer and never fail the load.
		_ = ui.NewInitializer(c.opts.UI, c.widgets).Init(l.page.Document, l.page.Window)
	}

	return rc, nil
}

// firstError returns the error that cancelled gctx. The group cancels gctx
// on its first error and again once every member returned, in which case the
// result of Wait is the answer.
func firstError(ctx, gctx context.Context, settled <-chan error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cause := context.Cause(gctx)
	if errors.Is(cause, context.Canceled) {
		return <-settled
	}
	return cause
}

// applySiteConfig sets the page title from the site name and injects
// analytics when the site enables it.
func (c *Controller) applySiteConfig(page *Page, rc RenderContext) {
	m, ok := rc["site"].(map[string]any)
	if !ok {
		return
	}
	site := typed.New(m)

	if name := site.String("siteName"); name != "" {
		page.Document.SetTitle(name)
	}

	if !c.opts.Features.Analytics || page.Analytics == nil {
		return
	}

	tracking := site.Object("analytics")
	if !tracking.Bool("enabled") || tracking.String("trackingId") == "" {
		return
	}

	err := page.Analytics.Inject(page.Document, tracking.String("trackingId"))
	if err != nil {
		c.log.Warnw("could not inject analytics", "err", err)
	}
}

func (l *Load) fail(scenario Scenario, query url.Values, err error) {
	l.c.log.Errorw("page load failed", "scenario", scenario.String(), "err", err)

	mountErr := l.page.Document.Mount(renderErrorView(err, scenario, l.c.opts.HomeURL, query))
	if mountErr != nil {
		l.c.log.Errorw("could not show error view", "err", mountErr)
	}

	l.mu.Lock()
	l.state = Failed
	l.err = err
	l.mu.Unlock()
}
