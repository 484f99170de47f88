// Package quotes supplies the quote of the day for daily notes. Quotes are
// fetched page by page from a stoic quotes API once and cached as JSON.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/rs/zerolog"

	"github.com/amirbrooks/carryover/internal/config"
	"github.com/amirbrooks/carryover/internal/store"
)

var ErrNoQuotes = errors.New("no quotes available")

type Quote struct {
	Body   string `json:"body"`
	Author string `json:"author"`
}

// Cache maps an API page number to the quotes on that page.
type Cache map[string][]Quote

func (c Cache) size() int {
	n := 0
	for _, qs := range c {
		n += len(qs)
	}
	return n
}

type pageResponse struct {
	Data []Quote `json:"data"`
}

// Source returns quotes from a cache file, filling the cache from the API on
// a miss.
type Source struct {
	url       string
	pages     int
	timeout   time.Duration
	cachePath string
	client    *http.Client
	retry     retry.Config
	log       zerolog.Logger
	pick      func(n int) int
}

func New(cfg config.QuotesConfig, cachePath string, log zerolog.Logger) *Source {
	return &Source{
		url:       cfg.URL,
		pages:     cfg.Pages,
		timeout:   time.Duration(cfg.Timeout) * time.Second,
		cachePath: cachePath,
		client:    &http.Client{},
		retry: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  500 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		log:  log.With().Str("cmp", "quotes").Logger(),
		pick: rand.IntN,
	}
}

// Random returns one quote, chosen uniformly by page and then within the page.
func (s *Source) Random(ctx context.Context) (Quote, error) {
	cache, err := s.Load(ctx)
	if err != nil {
		return Quote{}, err
	}

	pages := make([]string, 0, len(cache))
	for page, qs := range cache {
		if len(qs) > 0 {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return Quote{}, ErrNoQuotes
	}
	sort.Strings(pages)

	qs := cache[pages[s.pick(len(pages))]]
	return qs[s.pick(len(qs))], nil
}

// Load returns the cached quotes, refetching them when the cache file is
// missing, corrupt or empty.
func (s *Source) Load(ctx context.Context) (Cache, error) {
	cache, err := s.readCache()
	if err == nil && cache.size() > 0 {
		return cache, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", s.cachePath).Msg("discarding unreadable quotes cache")
	}

	cache, err = s.fetchAll(ctx)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(cache)
	if err != nil {
		return nil, fmt.Errorf("encode quotes cache: %w", err)
	}
	if err := store.WriteFileAtomic(s.cachePath, b, 0o644); err != nil {
		s.log.Warn().Err(err).Str("path", s.cachePath).Msg("could not write quotes cache")
	}
	return cache, nil
}

func (s *Source) readCache() (Cache, error) {
	b, err := os.ReadFile(s.cachePath)
	if err != nil {
		return nil, err
	}
	var cache Cache
	if err := json.Unmarshal(b, &cache); err != nil {
		return nil, fmt.Errorf("decode quotes cache: %w", err)
	}
	return cache, nil
}

func (s *Source) fetchAll(ctx context.Context) (Cache, error) {
	cache := Cache{}
	for page := 0; page < s.pages; page++ {
		qs, err := s.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch quotes page %d: %w", page, err)
		}
		cache[strconv.Itoa(page)] = qs
	}
	s.log.Debug().Int("pages", s.pages).Int("quotes", cache.size()).Msg("fetched quotes")
	return cache, nil
}

func (s *Source) fetchPage(ctx context.Context, page int) ([]Quote, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	r := retry.New[[]Quote](s.retry)
	t := timeout.New[[]Quote](timeout.Config{
		DefaultTimeout: s.timeout,
	})

	return t.Execute(ctx, s.timeout, func(ctx context.Context) ([]Quote, error) {
		return r.Do(ctx, func(ctx context.Context) ([]Quote, error) {
			return s.get(ctx, u.String())
		})
	})
}

func (s *Source) get(ctx context.Context, endpoint string) ([]Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", endpoint, resp.StatusCode)
	}

	var pr pageResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return pr.Data, nil
}
