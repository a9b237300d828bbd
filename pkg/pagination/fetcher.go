package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/fpds-client/pkg/gate"
	"github.com/Sternrassler/fpds-client/pkg/normalize"
	"github.com/Sternrassler/fpds-client/pkg/records"
	"github.com/Sternrassler/fpds-client/pkg/search"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Prometheus metrics for fetch orchestration.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fpds_pages_fetched_total",
		Help: "Total number of feed pages fetched by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fpds_fetch_duration_seconds",
		Help:    "Duration of a complete single-query fetch",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	queryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fpds_query_failures_total",
		Help: "Total number of queries dropped by SearchContracts after a failure",
	})
)

// PageSource fetches one raw feed page. *client.Client satisfies it.
type PageSource interface {
	FetchWithRetry(ctx context.Context, url string) ([]byte, error)
}

// Config holds fetcher configuration.
type Config struct {
	// BaseURL of the ATOM feed
	BaseURL string

	// MaxConcurrency caps in-flight page requests across all queries
	// run by this fetcher.
	MaxConcurrency int

	// RecordsPerPage used by the default paginator
	RecordsPerPage int
}

// DefaultConfig returns safe default configuration for the public feed.
func DefaultConfig() Config {
	return Config{
		BaseURL:        search.DefaultBaseURL,
		MaxConcurrency: 5,
		RecordsPerPage: DefaultRecordsPerPage,
	}
}

// FetchMetadata describes a completed fetch. Informational only.
type FetchMetadata struct {
	FetchID string        `json:"fetch_id"`
	URL     string        `json:"url"`
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Elapsed time.Duration `json:"elapsed"`
}

// Result is the outcome of a single-query fetch.
type Result struct {
	Records  []records.ContractRecord
	State    State
	Metadata FetchMetadata
}

// PageBatch is one page of records delivered by Stream.
type PageBatch struct {
	Page    int
	State   State
	Records []records.ContractRecord
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClock replaces time.Now for FetchMetadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// WithPaginator replaces the RecordCountPaginator.
func WithPaginator(p Paginator) Option {
	return func(f *Fetcher) { f.paginator = p }
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithGate shares an existing gate instead of creating one from
// Config.MaxConcurrency.
func WithGate(g *gate.Gate) Option {
	return func(f *Fetcher) { f.gate = g }
}

// Fetcher runs paginated queries against the feed. Safe for concurrent use.
type Fetcher struct {
	source    PageSource
	config    Config
	gate      *gate.Gate
	paginator Paginator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewFetcher creates a fetcher reading pages from source.
func NewFetcher(source PageSource, config Config, opts ...Option) *Fetcher {
	if config.BaseURL == "" {
		config.BaseURL = search.DefaultBaseURL
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 5
	}
	if config.RecordsPerPage <= 0 {
		config.RecordsPerPage = DefaultRecordsPerPage
	}

	f := &Fetcher{
		source:    source,
		config:    config,
		paginator: RecordCountPaginator{RecordsPerPage: config.RecordsPerPage},
		now:       time.Now,
		logger:    log.With().Str("component", "fpds-fetcher").Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.gate == nil {
		f.gate = gate.New(config.MaxConcurrency)
	}
	return f
}

// Config returns the fetcher configuration.
func (f *Fetcher) Config() Config {
	return f.config
}

// Fetch runs one query to completion and returns its records in page order.
// Invalid params fail before any request is made. If any page fails after
// its retries, the whole fetch fails with that page's error and all other
// page results are discarded.
func (f *Fetcher) Fetch(ctx context.Context, params search.Params) (*Result, error) {
	start := f.now()
	fetchID := uuid.NewString()
	logger := f.logger.With().Str("fetch_id", fetchID).Logger()

	firstURL, first, state, err := f.fetchFirst(ctx, params, logger)
	if err != nil {
		return nil, err
	}

	pages := make([][]records.ContractRecord, state.TotalPages)
	pages[0] = first

	if state.TotalPages > 1 {
		var g errgroup.Group
		for page := 2; page <= state.TotalPages; page++ {
			g.Go(func() error {
				recs, err := f.fetchPage(ctx, params, page, logger)
				if err != nil {
					return err
				}
				pages[page-1] = recs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			logger.Warn().
				Err(err).
				Int("total_pages", state.TotalPages).
				Msg("Fetch failed, discarding pages")
			return nil, err
		}
	}

	total := 0
	for _, p := range pages {
		total += len(p)
	}
	out := make([]records.ContractRecord, 0, total)
	for _, p := range pages {
		out = append(out, p...)
	}

	end := f.now()
	fetchDuration.Observe(end.Sub(start).Seconds())
	logger.Info().
		Int("pages", state.TotalPages).
		Int("records", len(out)).
		Dur("duration", end.Sub(start)).
		Msg("Fetch complete")

	return &Result{
		Records: out,
		State:   state,
		Metadata: FetchMetadata{
			FetchID: fetchID,
			URL:     firstURL,
			Start:   start,
			End:     end,
			Elapsed: end.Sub(start),
		},
	}, nil
}

// Stream runs one query and hands each page to yield in page order, as soon
// as that page and every earlier one are done. Page 1 is fetched before
// anything else is scheduled. A yield error stops delivery and is returned;
// pages already in flight still complete and release their permits before
// Stream returns.
func (f *Fetcher) Stream(ctx context.Context, params search.Params, yield func(PageBatch) error) error {
	logger := f.logger.With().Str("fetch_id", uuid.NewString()).Logger()

	_, first, state, err := f.fetchFirst(ctx, params, logger)
	if err != nil {
		return err
	}

	type pageResult struct {
		recs []records.ContractRecord
		err  error
	}

	// One buffered slot per page so senders never block on a stopped reader.
	slots := make([]chan pageResult, state.TotalPages+1)
	var wg sync.WaitGroup
	for page := 2; page <= state.TotalPages; page++ {
		slots[page] = make(chan pageResult, 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, err := f.fetchPage(ctx, params, page, logger)
			slots[page] <- pageResult{recs: recs, err: err}
		}()
	}
	defer wg.Wait()

	if err := yield(PageBatch{Page: 1, State: state, Records: first}); err != nil {
		return err
	}
	for page := 2; page <= state.TotalPages; page++ {
		res := <-slots[page]
		if res.err != nil {
			return res.err
		}
		if err := yield(PageBatch{Page: page, State: state, Records: res.recs}); err != nil {
			return err
		}
	}
	return nil
}

// fetchFirst validates params, fetches page 1 and derives the State.
func (f *Fetcher) fetchFirst(ctx context.Context, params search.Params, logger zerolog.Logger) (string, []records.ContractRecord, State, error) {
	if err := search.Validate(params); err != nil {
		return "", nil, State{}, err
	}
	url, err := search.BuildURL(f.config.BaseURL, params, 1)
	if err != nil {
		return "", nil, State{}, err
	}

	first, err := f.fetchURL(ctx, url, 1, logger)
	if err != nil {
		return "", nil, State{}, err
	}

	state := f.paginator.Paginate(first)
	if state.TotalPages < 1 {
		state.TotalPages = 1
	}
	logger.Debug().
		Str("url", url).
		Int("total_pages", state.TotalPages).
		Int("total_records", state.TotalRecords).
		Msg("Pagination derived from first page")
	return url, first, state, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, params search.Params, page int, logger zerolog.Logger) ([]records.ContractRecord, error) {
	url, err := search.BuildURL(f.config.BaseURL, params, page)
	if err != nil {
		return nil, err
	}
	return f.fetchURL(ctx, url, page, logger)
}

// fetchURL fetches, normalizes and maps one page while holding a permit.
func (f *Fetcher) fetchURL(ctx context.Context, url string, page int, logger zerolog.Logger) ([]records.ContractRecord, error) {
	var recs []records.ContractRecord
	err := f.gate.Do(ctx, func() error {
		body, err := f.source.FetchWithRetry(ctx, url)
		if err != nil {
			return err
		}
		entries, err := normalize.Process(string(body))
		if err != nil {
			return err
		}
		recs = records.MapRecords(entries, nil)
		return nil
	})
	if err != nil {
		pagesFetchedTotal.WithLabelValues("error").Inc()
		logger.Debug().Err(err).Int("page", page).Msg("Page fetch failed")
		return nil, err
	}

	pagesFetchedTotal.WithLabelValues("ok").Inc()
	logger.Debug().
		Int("page", page).
		Int("records", len(recs)).
		Msg("Page fetched")
	return recs, nil
}
