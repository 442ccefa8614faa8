package browser

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/experiments"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/monitoring"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/host"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/shared/id"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:embed assets/experiments.html
var pageTemplate []byte

// Row attributes. The HTML parser lowercases attribute names.
const (
	attrName    = "name"
	attrEnabled = "isenabled"
)

// ErrUnknownExperiment is returned by Click for a name not in the list.
var ErrUnknownExperiment = errors.New("experiment not in list")

// PageOptions configures pages created by NewFactory.
type PageOptions struct {
	// URL of the configuration document.
	URL     string
	Metrics *monitoring.Metrics
	Logger  *logging.Logger
}

// Page is one about:experiments document.
type Page struct {
	fetcher *experiments.Fetcher
	sync    *experiments.OverrideSync
	url     string
	metrics *monitoring.Metrics
	logger  *logging.Logger

	mu  sync.Mutex
	doc *goquery.Document
}

var _ host.Page = (*Page)(nil)

// NewPage parses the static document. Its list is empty until Load.
func NewPage(fetcher *experiments.Fetcher, sync *experiments.OverrideSync, opts PageOptions) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageTemplate))
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Page{
		fetcher: fetcher,
		sync:    sync,
		url:     opts.URL,
		metrics: opts.Metrics,
		logger:  logging.OrNop(opts.Logger),
		doc:     doc,
	}, nil
}

// NewFactory returns a host.PageFactory creating a fresh Page per call.
func NewFactory(fetcher *experiments.Fetcher, sync *experiments.OverrideSync, opts PageOptions) host.PageFactory {
	return func() host.Page {
		p, err := NewPage(fetcher, sync, opts)
		if err != nil {
			// The template is embedded, so this is a build defect.
			panic(err)
		}
		return p
	}
}

// Load is the DOM-ready flow. A successful load replaces the whole list;
// on any failure the list is left as it was.
func (p *Page) Load(ctx context.Context) error {
	log := p.logger.With(zap.Stringer("cycle", id.NewCycleID(id.PagePrefix)))
	log.Debug("DOMContentLoaded", zap.Stringer("phase", experiments.PhaseFetching))

	var (
		descriptors []experiments.Descriptor
		enabled     experiments.EnabledSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		descriptors, err = p.fetcher.Fetch(gctx, p.url)
		return err
	})
	g.Go(func() error {
		var err error
		enabled, err = p.sync.EnabledExperiments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		outcome := experiments.Outcome(err)
		p.metrics.RecordRefresh("page", outcome)
		log.Error("Error loading experiments", zap.Stringer("phase", experiments.PhaseFailed), zap.String("outcome", outcome), zap.Error(err))
		return err
	}

	rows := experiments.Merge(descriptors, enabled)

	p.mu.Lock()
	list := p.doc.Find("#list")
	list.Empty()
	for _, r := range rows {
		list.AppendHtml("<li></li>")
		li := list.Children().Last()
		li.SetText(r.Name)
		li.SetAttr(attrName, r.Name)
		li.SetAttr(attrEnabled, formatEnabled(r.IsEnabled))
	}
	p.mu.Unlock()

	p.metrics.RecordRefresh("page", monitoring.OutcomeDone)
	log.Debug("list rendered", zap.Stringer("phase", experiments.PhaseDone), zap.Int("rows", len(rows)))
	return nil
}

// Click toggles the named row. The row flips immediately, whatever the
// host does with the override.
func (p *Page) Click(ctx context.Context, name string) (bool, error) {
	p.mu.Lock()
	li := p.row(name)
	if li.Length() == 0 {
		p.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownExperiment, name)
	}
	state, _ := li.Attr(attrEnabled)
	next := state != "true"
	li.SetAttr(attrEnabled, formatEnabled(next))
	p.mu.Unlock()

	p.sync.ToggleOverride(ctx, name, next)
	return next, nil
}

// HTML serializes the current document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Html()
}

// Rows reads the list back out of the document.
func (p *Page) Rows() []experiments.DisplayRow {
	p.mu.Lock()
	defer p.mu.Unlock()

	var rows []experiments.DisplayRow
	p.doc.Find("#list > li").Each(func(_ int, li *goquery.Selection) {
		name, _ := li.Attr(attrName)
		state, _ := li.Attr(attrEnabled)
		rows = append(rows, experiments.DisplayRow{Name: name, IsEnabled: state == "true"})
	})
	return rows
}

func (p *Page) row(name string) *goquery.Selection {
	return p.doc.Find("#list > li").FilterFunction(func(_ int, li *goquery.Selection) bool {
		v, ok := li.Attr(attrName)
		return ok && v == name
	}).First()
}

func formatEnabled(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
