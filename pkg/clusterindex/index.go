// Package clusterindex implements the Embedding Index (EI): nearest-
// neighbor lookup over precomputed cluster centroids in a fixed-dimensional
// vector space, with parent -> child hierarchical queries.
package clusterindex

import (
	"context"
	"math"
	"sort"

	"gorm.io/gorm"

	"analytics-assistant-be/internal/apperrors"
)

type entry struct {
	id           uint
	parentID     uint
	label        string
	vector       []float32
	exampleCount int
}

// Index is loaded once at startup and memoized; it is process-wide,
// read-mostly, and shared across every Session.
type Index struct {
	dim    int
	level1 []entry
	level2 []entry // only entries with a valid, present parent
}

// Load reads every centroid row from the database and filters out level-2
// orphans (a row whose parent_id does not resolve to a known level-1
// cluster), per spec.md §4.3's invariant.
func Load(ctx context.Context, db *gorm.DB, dim int) (*Index, error) {
	var l1rows []Level1Cluster
	if err := db.WithContext(ctx).Find(&l1rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ConfigError, "loading level-1 cluster centroids", err)
	}

	var l2rows []Level2Cluster
	if err := db.WithContext(ctx).Find(&l2rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ConfigError, "loading level-2 cluster centroids", err)
	}

	idx := &Index{dim: dim}

	knownParents := make(map[uint]bool, len(l1rows))
	for _, r := range l1rows {
		knownParents[r.ID] = true
		idx.level1 = append(idx.level1, entry{id: r.ID, label: r.Label, vector: r.Centroid.Slice()})
	}

	for _, r := range l2rows {
		if r.ParentID == 0 || !knownParents[r.ParentID] {
			continue // orphan, filtered at load
		}
		idx.level2 = append(idx.level2, entry{
			id:           r.ID,
			parentID:     r.ParentID,
			label:        r.Label,
			vector:       r.Centroid.Slice(),
			exampleCount: r.ExampleCount,
		})
	}

	return idx, nil
}

// NewInMemory builds an Index directly from entries, for tests and for any
// deployment that seeds centroids from a static file instead of Postgres.
func NewInMemory(dim int, level1, level2 []Centroid) *Index {
	idx := &Index{dim: dim}
	for _, c := range level1 {
		idx.level1 = append(idx.level1, entry{id: c.ID, label: c.Label, vector: c.Vector})
	}
	for _, c := range level2 {
		idx.level2 = append(idx.level2, entry{id: c.ID, parentID: c.ParentID, label: c.Label, vector: c.Vector, exampleCount: c.ExampleCount})
	}
	return idx
}

// Centroid is the plain-data seed shape accepted by NewInMemory.
type Centroid struct {
	ID           uint
	ParentID     uint // ignored for level-1
	Label        string
	Vector       []float32
	ExampleCount int // ignored for level-1
}

// Prediction is the EI's raw output before CP wraps it into a
// ClusterPrediction.
type Prediction struct {
	ParentID   uint
	ChildID    uint
	Confidence float64
}

// Predict finds the nearest level-1 centroid, then the nearest level-2
// centroid whose parent equals that parent. Ties are broken by smaller id.
func (idx *Index) Predict(embedding []float32) (Prediction, error) {
	if len(embedding) != idx.dim {
		return Prediction{}, apperrors.Newf(apperrors.DimensionError, "embedding has dimension %d, index expects %d", len(embedding), idx.dim)
	}

	parent, parentScore, ok := nearest(idx.level1, embedding)
	if !ok {
		return Prediction{}, apperrors.New(apperrors.DimensionError, "embedding index has no level-1 centroids loaded")
	}

	children := childrenOf(idx.level2, parent.id)
	child, _, ok := nearest(children, embedding)
	if !ok {
		return Prediction{}, apperrors.Newf(apperrors.DimensionError, "no level-2 centroids under parent %d", parent.id)
	}

	return Prediction{ParentID: parent.id, ChildID: child.id, Confidence: parentScore}, nil
}

// ParentLabel returns the human-readable label for a level-1 cluster id,
// or "" if the id isn't loaded. Used by the analytics-visit flow and the
// Report Builder to render a title instead of a bare numeric id.
func (idx *Index) ParentLabel(id uint) string {
	for _, c := range idx.level1 {
		if c.id == id {
			return c.label
		}
	}
	return ""
}

// ChildLabel returns the human-readable label for a level-2 cluster id,
// or "" if the id isn't loaded.
func (idx *Index) ChildLabel(id uint) string {
	for _, c := range idx.level2 {
		if c.id == id {
			return c.label
		}
	}
	return ""
}

// ExamplesExist reports whether the given child cluster has any historical
// requests backing it (SPEC_FULL.md §3's supplemented fallback).
func (idx *Index) ExamplesExist(childID uint) bool {
	for _, c := range idx.level2 {
		if c.id == childID {
			return c.exampleCount > 0
		}
	}
	return false
}

// PredictWithFallback implements the empty-cluster fallback chain from
// original_source/backend/app/ai/cluster_predictor.py: if the naive
// nearest parent+child pair has zero backing examples, retry with the
// next-closest child under the same parent, then with the best child of
// the next-closest parent, walking parents in similarity order.
func (idx *Index) PredictWithFallback(embedding []float32) (Prediction, error) {
	if len(embedding) != idx.dim {
		return Prediction{}, apperrors.Newf(apperrors.DimensionError, "embedding has dimension %d, index expects %d", len(embedding), idx.dim)
	}

	parentsBySim := sortedBySimilarity(idx.level1, embedding)
	if len(parentsBySim) == 0 {
		return Prediction{}, apperrors.New(apperrors.DimensionError, "embedding index has no level-1 centroids loaded")
	}

	for _, parent := range parentsBySim {
		children := childrenOf(idx.level2, parent.id)
		childrenBySim := sortedBySimilarity(children, embedding)
		for _, child := range childrenBySim {
			if child.exampleCount > 0 {
				return Prediction{ParentID: parent.id, ChildID: child.id, Confidence: cosineSimilarity(parent.vector, embedding)}, nil
			}
		}
	}

	// Nothing anywhere has examples; fall back to the naive nearest pair so
	// the caller still gets a deterministic answer rather than an error —
	// an empty cluster is a data-quality condition, not a dimension fault.
	return idx.Predict(embedding)
}

func childrenOf(level2 []entry, parentID uint) []entry {
	var out []entry
	for _, c := range level2 {
		if c.parentID == parentID {
			out = append(out, c)
		}
	}
	return out
}

func nearest(candidates []entry, embedding []float32) (entry, float64, bool) {
	if len(candidates) == 0 {
		return entry{}, 0, false
	}
	best := candidates[0]
	bestScore := cosineSimilarity(best.vector, embedding)
	for _, c := range candidates[1:] {
		score := cosineSimilarity(c.vector, embedding)
		if score > bestScore || (score == bestScore && c.id < best.id) {
			best = c
			bestScore = score
		}
	}
	return best, bestScore, true
}

func sortedBySimilarity(candidates []entry, embedding []float32) []entry {
	out := make([]entry, len(candidates))
	copy(out, candidates)
	scores := make(map[uint]float64, len(out))
	for _, c := range out {
		scores[c.id] = cosineSimilarity(c.vector, embedding)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if scores[out[i].id] != scores[out[j].id] {
			return scores[out[i].id] > scores[out[j].id]
		}
		return out[i].id < out[j].id
	})
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, magA, magB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
