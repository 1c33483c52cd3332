package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/catalog"
)

// Store is the Artifact Store (AS). It is process-wide, read-mostly, and
// shared across every Session. Its only mutable structure is the summary
// cache, populated with single-flight semantics per product id.
type Store struct {
	dir         string
	previewRows int
	budgetChars int

	catalog *catalog.Catalog
	log     logger.ILogger

	summaries *gocache.Cache
	artifacts *gocache.Cache
	group     singleflight.Group

	redis *redis.Client // optional cross-instance mirror; nil if unconfigured
}

type Config struct {
	Dir                 string
	SummaryPreviewRows  int
	LLMInputBudgetChars int
	RedisURL            string
}

// NewStore wires the Store to its catalog and, if RedisURL is reachable,
// a Redis-backed secondary cache tier. A Redis connection failure is
// logged and otherwise ignored — the same warn-and-continue idiom the
// teacher's container uses for its own optional dependencies.
func NewStore(cfg Config, cat *catalog.Catalog, log logger.ILogger) *Store {
	s := &Store{
		dir:         cfg.Dir,
		previewRows: cfg.SummaryPreviewRows,
		budgetChars: cfg.LLMInputBudgetChars,
		catalog:     cat,
		log:         log,
		summaries:   gocache.New(gocache.NoExpiration, 0),
		artifacts:   gocache.New(gocache.NoExpiration, 0),
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Warn("artifact_store", "invalid REDIS_URL, disabling shared cache tier", map[string]interface{}{"error": err.Error()})
		} else {
			client := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("artifact_store", "redis unreachable, continuing with in-process cache only", map[string]interface{}{"error": err.Error()})
			} else {
				s.redis = client
			}
		}
	}

	return s
}

// LoadSummary attempts, in order: (1) the process-lifetime cache; (2) the
// Redis mirror; (3) a precomputed summary file; (4) loading and
// summarizing the Artifact. Concurrent first-readers for the same product
// collapse into a single load via singleflight.
func (s *Store) LoadSummary(ctx context.Context, productID string) (*Summary, error) {
	if cached, ok := s.summaries.Get(productID); ok {
		return cached.(*Summary), nil
	}

	result, err, _ := s.group.Do(productID, func() (interface{}, error) {
		return s.loadSummaryUncached(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Summary), nil
}

func (s *Store) loadSummaryUncached(ctx context.Context, productID string) (*Summary, error) {
	if cached, ok := s.summaries.Get(productID); ok {
		return cached.(*Summary), nil
	}

	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, redisSummaryKey(productID)).Result(); err == nil {
			var sum Summary
			if jsonErr := json.Unmarshal([]byte(raw), &sum); jsonErr == nil {
				s.summaries.Set(productID, &sum, gocache.NoExpiration)
				return &sum, nil
			}
		}
	}

	product, err := s.catalog.Get(productID)
	if err != nil {
		return nil, err
	}

	if sum, err := s.readPrecomputedSummary(productID); err == nil {
		s.cache(productID, sum)
		return sum, nil
	}

	artifact, err := s.loadArtifactUncached(product.SourceFile, productID, product.Filter)
	if err != nil {
		return nil, err
	}

	sum := s.summarize(artifact)
	s.cache(productID, sum)
	return sum, nil
}

func (s *Store) readPrecomputedSummary(productID string) (*Summary, error) {
	path := filepath.Join(s.dir, "summaries", productID+".txt")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Summary{
		ProductID:   productID,
		GeneratedAt: time.Now(),
		Raw:         TruncateToBudget(string(raw), s.budgetChars),
	}, nil
}

func (s *Store) summarize(a *Artifact) *Summary {
	previewRows := a.Rows
	truncated := false
	if len(previewRows) > s.previewRows {
		previewRows = previewRows[:s.previewRows]
		truncated = true
	}
	return &Summary{
		ProductID:   a.ProductID,
		GeneratedAt: time.Now(),
		Shape:       [2]int{len(a.Rows), len(a.Columns)},
		Columns:     a.Columns,
		PreviewRows: previewRows,
		TotalRows:   len(a.Rows),
		Truncated:   truncated,
	}
}

func (s *Store) cache(productID string, sum *Summary) {
	s.summaries.Set(productID, sum, gocache.NoExpiration)
	if s.redis != nil {
		if raw, err := json.Marshal(sum); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = s.redis.Set(ctx, redisSummaryKey(productID), raw, 0).Err()
		}
	}
}

// LoadArtifact returns the full rows backing a product, used by the Report
// Builder and by AS itself when generating a Summary on the fly.
func (s *Store) LoadArtifact(ctx context.Context, productID string) (*Artifact, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return nil, err
	}
	return s.loadArtifactUncached(product.SourceFile, productID, product.Filter)
}

func (s *Store) loadArtifactUncached(sourceFile, productID, filter string) (*Artifact, error) {
	if cached, ok := s.artifacts.Get(cacheKey(productID, filter)); ok {
		return cached.(*Artifact), nil
	}

	result, err, _ := s.group.Do("artifact:"+cacheKey(productID, filter), func() (interface{}, error) {
		path := filepath.Join(s.dir, sourceFile)
		columns, rows, err := loadCSV(path)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ArtifactUnavailable, fmt.Sprintf("loading artifact for %q", productID), err)
		}

		filteredRows, filterValue, err := applyFilter(columns, rows, filter)
		if err != nil {
			return nil, err
		}

		a := &Artifact{
			ProductID:      productID,
			Columns:        columns,
			Rows:           filteredRows,
			RowFilterValue: filterValue,
		}
		s.artifacts.Set(cacheKey(productID, filter), a, gocache.NoExpiration)
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Artifact), nil
}

func cacheKey(productID, filter string) string {
	return productID + "|" + filter
}

func redisSummaryKey(productID string) string {
	return "analytics-assistant:summary:" + productID
}
