// Package linkcheck probes bookmark URLs and turns dead ones into folder
// actions for the reconciler.
package linkcheck

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
)

// DefaultFolder is where dead bookmarks are collected.
const DefaultFolder = "Dead Links"

// Status is the health of one URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx
	Dead                      // 404 or 410
	Unreachable               // transport failure or other status
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result is the outcome for one bookmark.
type Result struct {
	BookmarkID string
	URL        string
	Status     Status
	// StatusCode is 0 when no response arrived.
	StatusCode int
	Reason     string
}

// ProgressFunc is called after each URL, with the number checked so far.
type ProgressFunc func(completed, total int)

// Options tunes a Checker. Zero values take defaults.
type Options struct {
	Concurrency       int
	Timeout           time.Duration
	RequestsPerSecond float64
	// ExcludeDomains report 404 as unreachable instead of dead, for hosts
	// that hide private pages behind a 404. Subdomains match too.
	ExcludeDomains []string
	HTTPClient     *http.Client
	Logger         logger.Logger
}

// Checker probes URLs with a bounded worker pool.
type Checker struct {
	client      *http.Client
	limiter     *rate.Limiter
	concurrency int
	exclude     map[string]bool
	log         logger.Logger
}

// New builds a Checker.
func New(opts Options) *Checker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 20
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	exclude := make(map[string]bool, len(opts.ExcludeDomains))
	for _, d := range opts.ExcludeDomains {
		exclude[strings.ToLower(d)] = true
	}

	return &Checker{
		client:      client,
		limiter:     rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Concurrency),
		concurrency: opts.Concurrency,
		exclude:     exclude,
		log:         opts.Logger,
	}
}

// Check probes every bookmark URL. Results keep the order of bookmarks.
// A cancelled context stops outstanding probes; their results are
// Unreachable with the context error as reason.
func (c *Checker) Check(ctx context.Context, bookmarks []model.Bookmark, onProgress ProgressFunc) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	results := make([]Result, len(bookmarks))
	jobs := make(chan int)
	var wg sync.WaitGroup

	var mu sync.Mutex
	completed := 0

	for w := 0; w < min(c.concurrency, len(bookmarks)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.checkOne(ctx, &bookmarks[idx])

				if onProgress != nil {
					mu.Lock()
					completed++
					onProgress(completed, len(bookmarks))
					mu.Unlock()
				}
			}
		}()
	}

	for i := range bookmarks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	c.log.Debug("links checked", logger.Int("count", len(results)))
	return results
}

func (c *Checker) checkOne(ctx context.Context, b *model.Bookmark) Result {
	result := Result{BookmarkID: b.ID, URL: b.URL}

	if err := c.limiter.Wait(ctx); err != nil {
		result.Status = Unreachable
		result.Reason = normalizeError(err)
		return result
	}

	// HEAD first, GET for servers that reject it.
	resp, err := c.do(ctx, http.MethodHead, b.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			_ = resp.Body.Close()
		}
		resp, err = c.do(ctx, http.MethodGet, b.URL)
	}
	if err != nil {
		result.Status = Unreachable
		result.Reason = normalizeError(err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if c.excluded(b.URL) {
			result.Status = Unreachable
			result.Reason = "possibly private"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Reason = http.StatusText(resp.StatusCode)
	}
	return result
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func (c *Checker) excluded(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for domain := range c.exclude {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func normalizeError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(lower, "timeout"):
		return "timeout"
	case strings.Contains(lower, "connection refused"):
		return "connection refused"
	case strings.Contains(lower, "certificate"), strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "unsupported protocol scheme"):
		return "unsupported scheme"
	default:
		return err.Error()
	}
}

// Actions turns dead results into a batch that gathers them in folder. The
// folder is created only when lib has no folder by that name; the move
// targets it by name either way.
func Actions(lib *model.Library, results []Result, folder string) []model.Action {
	var dead []string
	for _, r := range results {
		if r.Status == Dead {
			dead = append(dead, r.BookmarkID)
		}
	}
	if len(dead) == 0 {
		return nil
	}

	var actions []model.Action
	if !hasFolderNamed(lib, folder) {
		actions = append(actions, model.CreateFolder{Name: folder})
	}
	return append(actions, model.MoveBookmarks{BookmarkIDs: dead, TargetFolderID: folder})
}

func hasFolderNamed(lib *model.Library, name string) bool {
	for _, f := range lib.Folders {
		if f.Name == name {
			return true
		}
	}
	return false
}
