package sentiment

import (
	"context"
	"fmt"
	"time"

	"IndexPulse/internal/domain/models"
	domservice "IndexPulse/internal/domain/service"
	pkgcache "IndexPulse/pkg/cache"
	applogger "IndexPulse/pkg/logger"
)

// Analyzer turns a news query into a sentiment snapshot: fetch articles,
// classify each headline, aggregate. Raw article lists are kept in the
// transient cache so repeated analyses within the window skip the news
// upstream.
type Analyzer struct {
	news       domservice.NewsSource
	classifier domservice.SentimentClassifier
	cache      pkgcache.Service
	newsTTL    time.Duration
	l          *applogger.Logger
	now        func() time.Time
}

func NewAnalyzer(news domservice.NewsSource, classifier domservice.SentimentClassifier, cache pkgcache.Service, newsTTL time.Duration, l *applogger.Logger) *Analyzer {
	if newsTTL <= 0 {
		newsTTL = 15 * time.Minute
	}
	return &Analyzer{
		news:       news,
		classifier: classifier,
		cache:      cache,
		newsTTL:    newsTTL,
		l:          l,
		now:        time.Now,
	}
}

// SetClock overrides the snapshot clock.
func (a *Analyzer) SetClock(now func() time.Time) { a.now = now }

// Query builds the news query for an index.
func Query(idx models.Index) string {
	return fmt.Sprintf("%s stock market index", idx.Name)
}

// Analyze produces a fresh sentiment snapshot for the index. A headline
// the classifier cannot score counts as neutral instead of failing the
// whole run.
func (a *Analyzer) Analyze(ctx context.Context, idx models.Index) (*models.SentimentSnapshot, error) {
	query := Query(idx)

	articles, err := a.fetchArticles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch news for %q: %w", query, err)
	}

	classified := make([]models.ArticleSentiment, 0, len(articles))
	for _, art := range articles {
		label, confidence, err := a.classifier.Classify(ctx, art.Title)
		if err != nil {
			if a.l != nil {
				a.l.Warn("classify headline failed, counting as neutral",
					applogger.String("index_id", idx.ID),
					applogger.String("headline", art.Title),
					applogger.Error(err),
				)
			}
			label, confidence = models.SentimentNeutral, 0
		}
		classified = append(classified, models.ArticleSentiment{
			Headline:    art.Title,
			Source:      art.Source,
			PublishedAt: art.PublishedAt,
			URL:         art.URL,
			Sentiment:   label,
			Confidence:  confidence,
			Score:       SignedScore(label, confidence),
		})
	}

	snap := &models.SentimentSnapshot{
		IndexID:          idx.ID,
		Query:            query,
		AnalyzedAt:       a.now(),
		SentimentSummary: Aggregate(classified),
	}
	if a.l != nil {
		a.l.Info("sentiment analyzed",
			applogger.String("index_id", idx.ID),
			applogger.Int("articles", len(classified)),
			applogger.String("label", string(snap.Label)),
			applogger.Float64("score", snap.Score),
		)
	}
	return snap, nil
}

func (a *Analyzer) fetchArticles(ctx context.Context, query string) ([]models.Article, error) {
	key := pkgcache.Key("news", query)
	if a.cache != nil {
		if cached, ok, err := pkgcache.GetTyped[[]models.Article](ctx, a.cache, key); err == nil && ok {
			return cached, nil
		}
	}
	articles, err := a.news.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	if a.cache != nil && len(articles) > 0 {
		if err := a.cache.Set(ctx, key, articles, a.newsTTL); err != nil && a.l != nil {
			a.l.Warn("news cache set failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return articles, nil
}
