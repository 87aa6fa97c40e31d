package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/webresearch/internal/extract"
	"github.com/nao1215/webresearch/internal/fetch"
	"github.com/nao1215/webresearch/internal/model"
)

// Fetcher retrieves a single page. *fetch.Client satisfies this
// interface; tests and callers may substitute their own transport.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// Spider crawls web pages breadth-first from a set of seed URLs,
// respecting depth, page, and rate limits. The crawl never leaves the
// host of the seed that discovered a link.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	// fetcher retrieves pages. Transport policy such as timeouts,
	// redirects, and body limits lives behind this interface.
	fetcher Fetcher

	// maxDepth limits how deep to crawl from a seed.
	// 0 means only the seeds themselves, 1 adds their links, etc.
	maxDepth int

	// maxPages caps the total number of pages recorded across all
	// seeds. This is a hard global limit, not a per-seed one.
	maxPages int

	// delay is the minimum spacing between requests.
	// This is a politeness setting to avoid overwhelming servers.
	delay time.Duration

	// concurrency is the number of fetches that may run at once.
	// 1 keeps the crawl strictly sequential.
	concurrency int

	// logger receives crawl progress and fetch failures.
	logger *slog.Logger

	// Per-crawl state, reset at the start of each Crawl call.
	visited *visitedSet
	budget  *pageBudget
	limiter *rate.Limiter
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed pages, 1 = seeds plus their links, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to record.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the minimum delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithConcurrency sets how many fetches may run at once.
// Values below 2 keep the crawl sequential.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		s.concurrency = n
	}
}

// WithLogger sets the logger used for crawl progress.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a new Spider using the given fetcher.
//
// Design decision: We require an external fetcher because:
//  1. Transport policy belongs to the fetch package, not the crawl loop
//  2. Consistent with how the scoring and summary packages take clients
//  3. Allows for different configurations in tests
func NewSpider(fetcher Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		maxDepth:    2,
		maxPages:    30,
		delay:       1 * time.Second,
		concurrency: 1,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl visits pages breadth-first from the given seeds and returns the
// collected records. Per-page fetch failures are recorded in the result
// rather than returned as errors; the only error Crawl reports is the
// context's, and the partial result collected up to that point is still
// returned alongside it.
//
// Design decision: We return partial results on cancellation because:
//  1. A research run interrupted halfway still has value
//  2. Downstream stages can render whatever was collected
//  3. The caller decides whether a partial crawl is acceptable
func (s *Spider) Crawl(ctx context.Context, seeds []string, keywords []model.KeywordSpec) (*model.CrawlResult, error) {
	s.visited = newVisitedSet()
	s.budget = newPageBudget(s.maxPages)
	s.limiter = nil
	if s.delay > 0 {
		s.limiter = rate.NewLimiter(rate.Every(s.delay), 1)
	}

	result := model.NewCrawlResult()
	queue := s.seedQueue(seeds, result)

	if s.concurrency > 1 {
		s.crawlConcurrent(ctx, queue, keywords, result)
	} else {
		s.crawlSequential(ctx, queue, keywords, result)
	}

	s.logger.Debug("crawl finished",
		"pages", result.PagesVisited,
		"skipped", result.PagesSkipped,
		"errors", len(result.Errors),
		"unique_urls", s.visited.uniqueURLs(),
	)

	return result, ctx.Err()
}

// seedQueue builds the initial frontier. Duplicate seeds collapse to a
// single task; a seed that is not an absolute http(s) URL is recorded
// as an error rather than aborting the whole run.
func (s *Spider) seedQueue(seeds []string, result *model.CrawlResult) []queueItem {
	queue := make([]queueItem, 0, len(seeds))
	for _, seed := range seeds {
		u, err := url.Parse(strings.TrimSpace(seed))
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			result.AddError(seed, "invalid seed url")
			s.logger.Warn("skipping invalid seed", "url", seed)
			continue
		}

		canonical := canonicalURL(u.String())
		if !s.visited.markEnqueued(canonical) {
			continue
		}
		queue = append(queue, queueItem{url: canonical, depth: 0, seedHost: strings.ToLower(u.Host)})
		result.TotalSeeds++
	}
	return queue
}

// queueItem is one pending fetch in the frontier. seedHost is the host
// of the seed whose subtree discovered the URL; links are only followed
// within that host.
type queueItem struct {
	url      string
	depth    int
	seedHost string
}

// crawlSequential processes the frontier one task at a time. This is
// the default mode and the one whose ordering defines the reference
// behavior: the concurrent mode must produce the same records in the
// same order.
func (s *Spider) crawlSequential(ctx context.Context, queue []queueItem, keywords []model.KeywordSpec, result *model.CrawlResult) {
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			s.logger.Debug("crawl canceled, abandoning frontier", "remaining", len(queue))
			return
		default:
		}

		// Page budget is a hard global cap checked before anything else.
		if !s.budget.tryReserve() {
			s.logger.Debug("page budget exhausted, discarding frontier", "discarded", len(queue))
			return
		}

		item := queue[0]
		queue = queue[1:]

		if item.depth > s.maxDepth {
			s.budget.release()
			result.PagesSkipped++
			continue
		}
		if s.visited.isSettled(item.url) {
			s.budget.release()
			result.PagesSkipped++
			continue
		}

		queue = append(queue, s.settleTask(s.fetchTask(ctx, item), keywords, result)...)
	}
}

// crawlConcurrent processes the frontier in batches of up to
// concurrency tasks. Fetches within a batch run in parallel; all
// bookkeeping stays on this goroutine and settles results in task
// order, so the records and their discovery order match the sequential
// mode exactly.
func (s *Spider) crawlConcurrent(ctx context.Context, queue []queueItem, keywords []model.KeywordSpec, result *model.CrawlResult) {
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			s.logger.Debug("crawl canceled, abandoning frontier", "remaining", len(queue))
			return
		default:
		}

		batch := make([]queueItem, 0, s.concurrency)
		for len(batch) < s.concurrency && len(queue) > 0 {
			if !s.budget.tryReserve() {
				s.logger.Debug("page budget exhausted, discarding frontier", "discarded", len(queue))
				queue = nil
				break
			}

			item := queue[0]
			queue = queue[1:]

			if item.depth > s.maxDepth {
				s.budget.release()
				result.PagesSkipped++
				continue
			}
			if s.visited.isSettled(item.url) {
				s.budget.release()
				result.PagesSkipped++
				continue
			}
			batch = append(batch, item)
		}
		if len(batch) == 0 {
			continue
		}

		results := make([]taskResult, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for i, item := range batch {
			g.Go(func() error {
				results[i] = s.fetchTask(gctx, item)
				return nil
			})
		}
		// Workers never return errors; failures travel in results.
		_ = g.Wait()

		for _, res := range results {
			queue = append(queue, s.settleTask(res, keywords, result)...)
		}
	}
}

// taskResult carries one fetched task back to the coordinating
// goroutine for sequential bookkeeping.
type taskResult struct {
	item    queueItem
	fetched *fetch.Result
	doc     *extract.Result
	err     error
}

// fetchTask waits for a rate limiter slot, fetches the page, and parses
// it when the response is HTML. Safe to call from worker goroutines: it
// touches no crawl state beyond the limiter.
func (s *Spider) fetchTask(ctx context.Context, item queueItem) taskResult {
	out := taskResult{item: item}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			out.err = err
			return out
		}
	}

	s.logger.Debug("fetching page", "url", item.url, "depth", item.depth)

	res, err := s.fetcher.Fetch(ctx, item.url)
	if err != nil {
		out.err = err
		return out
	}
	out.fetched = res

	if res.OK() && strings.Contains(res.ContentType, "text/html") {
		extractor, err := extract.NewExtractor(res.FinalURL)
		if err != nil {
			return out
		}
		doc, err := extractor.Extract(res.Body)
		if err != nil {
			return out
		}
		out.doc = doc
	}

	return out
}

// settleTask records the outcome of one fetched task and returns the
// child tasks to enqueue. Must only be called from the coordinating
// goroutine; it mutates the crawl result and releases budget slots for
// tasks that produced no page record.
func (s *Spider) settleTask(out taskResult, keywords []model.KeywordSpec, result *model.CrawlResult) []queueItem {
	item := out.item

	if out.err != nil {
		s.budget.release()
		if errors.Is(out.err, context.Canceled) || errors.Is(out.err, context.DeadlineExceeded) {
			return nil
		}
		result.AddError(item.url, out.err.Error())
		s.logger.Warn("fetch failed", "url", item.url, "reason", out.err.Error())
		return nil
	}

	fetched := out.fetched
	if !fetched.OK() {
		s.budget.release()
		result.AddError(item.url, fetched.Reason())
		s.logger.Warn("fetch failed", "url", item.url, "reason", fetched.Reason())
		return nil
	}

	canonical := canonicalURL(fetched.FinalURL)
	if !s.visited.markSettled(canonical) {
		// A redirect landed on a page already fetched under its own
		// address. Treat it as a duplicate, not a new page.
		s.budget.release()
		result.PagesSkipped++
		s.logger.Debug("skipping duplicate page", "url", item.url, "canonical", canonical)
		return nil
	}

	if out.doc == nil {
		s.budget.release()
		result.PagesSkipped++
		s.logger.Debug("skipping non-html response", "url", canonical, "content_type", fetched.ContentType)
		return nil
	}

	page := &model.PageRecord{
		URL:           canonical,
		Depth:         item.depth,
		Title:         out.doc.Title,
		BodyText:      out.doc.VisibleText,
		OutgoingLinks: out.doc.Links,
		FetchedAt:     time.Now(),
	}
	page.TruncateBodyText()
	page.ComputeHash()
	page.Relevance = keywordRelevance(page.Title, page.BodyText, keywords)
	result.AddPage(page)

	s.logger.Debug("page crawled", "url", canonical, "depth", item.depth, "relevance", page.Relevance)

	// Links are only expanded from pages that matched at least one
	// keyword. The page itself is still recorded either way.
	if page.Relevance == 0 {
		return nil
	}

	children := make([]queueItem, 0, len(out.doc.Links))
	for _, link := range out.doc.Links {
		if !sameHost(item.seedHost, link) {
			continue
		}
		canonicalLink := canonicalURL(link)
		if !s.visited.markEnqueued(canonicalLink) {
			continue
		}
		children = append(children, queueItem{url: canonicalLink, depth: item.depth + 1, seedHost: item.seedHost})
	}
	return children
}

// keywordRelevance computes the cheap crawl-time relevance score that
// gates link expansion. Term occurrences in the title weigh double. The
// total is normalized against a saturation point of ten occurrences per
// keyword and capped at 1. An empty keyword set treats every page as
// relevant.
func keywordRelevance(title, body string, keywords []model.KeywordSpec) float64 {
	if len(keywords) == 0 {
		return 1.0
	}

	lowerTitle := strings.ToLower(title)
	combined := lowerTitle + " " + strings.ToLower(body)

	total := 0
	for _, kw := range keywords {
		term := strings.ToLower(kw.Term)
		if term == "" {
			continue
		}
		total += strings.Count(lowerTitle, term)*2 + strings.Count(combined, term)
	}

	score := float64(total) / float64(len(keywords)*10)
	if score > 1 {
		score = 1
	}
	return score
}

// canonicalURL normalizes a URL into the deduplication key.
//
// Design decision: We normalize URLs because:
//  1. The same page can be reached through different URL spellings
//  2. Fragment (#anchor) doesn't change content
//  3. Trailing slashes may or may not be significant
func canonicalURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	u.Path = strings.TrimSuffix(u.Path, "/")
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// sameHost reports whether the link stays on the given seed host.
//
// Design decision: We only crawl the discovering seed's host because:
//  1. Following external links explodes the frontier on real sites
//  2. Keeps the crawl focused on the sources the user chose
//  3. Off-host references still appear in the page text itself
func sameHost(seedHost, link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, seedHost)
}
