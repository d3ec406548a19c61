package learn

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/womenwealthwave/wealthwave/internal/config"
	"github.com/womenwealthwave/wealthwave/internal/infra"
)

// Article is one reading-list entry.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}

const allArticlesKey = "articles:all"

// Feed reads articles from the configured RSS/Atom sources. Sources are
// fetched concurrently; a failing source is logged and skipped. Results are
// cached for the configured TTL.
type Feed struct {
	sources []config.FeedSource
	timeout time.Duration
	cache   *infra.Cache[[]Article]
	limiter *infra.RateLimiter
	log     logrus.FieldLogger
}

// NewFeed creates a reader for cfg's sources.
func NewFeed(cfg config.LearnConfig, log logrus.FieldLogger) *Feed {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	ttl := cfg.CacheTTL()
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Feed{
		sources: cfg.Feeds,
		timeout: cfg.Timeout(),
		cache:   infra.NewCache[[]Article](ttl),
		limiter: infra.NewRateLimiter(2, 500*time.Millisecond),
		log:     log.WithField("component", "learn"),
	}
}

// Sources returns the configured feeds.
func (f *Feed) Sources() []config.FeedSource { return f.sources }

// Articles returns up to limit articles from all sources, newest first.
// limit <= 0 returns everything.
func (f *Feed) Articles(ctx context.Context, limit int) ([]Article, error) {
	all, ok := f.cache.Get(allArticlesKey)
	if !ok {
		var err error
		all, err = f.fetchAll(ctx)
		if err != nil {
			return nil, err
		}
		f.cache.Set(allArticlesKey, all)
	}

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]Article, len(all))
	copy(out, all)
	return out, nil
}

// Refresh drops cached articles so the next call refetches.
func (f *Feed) Refresh() { f.cache.Invalidate(allArticlesKey) }

func (f *Feed) fetchAll(ctx context.Context) ([]Article, error) {
	var (
		mu  sync.Mutex
		all []Article
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range f.sources {
		src := src
		g.Go(func() error {
			articles, err := f.fetchSource(gctx, src)
			if err != nil {
				// Non-critical: skip failed sources.
				f.log.WithError(err).WithField("source", src.Name).Warn("feed fetch failed")
				return nil
			}
			mu.Lock()
			all = append(all, articles...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortArticlesByDate(all)
	return all, nil
}

func (f *Feed) fetchSource(ctx context.Context, src config.FeedSource) ([]Article, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	// gofeed parsers keep per-parse state, so each fetch gets its own.
	feed, err := gofeed.NewParser().ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := Article{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		switch {
		case item.PublishedParsed != nil:
			a.PublishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			a.PublishedAt = *item.UpdatedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sortArticlesByDate sorts articles newest first, keeping feed order for ties.
func sortArticlesByDate(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
