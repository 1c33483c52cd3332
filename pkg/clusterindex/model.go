package clusterindex

import "github.com/pgvector/pgvector-go"

// Level1Cluster is a top-level cluster centroid. Table layout mirrors
// spec.md §6's persisted-state note: "two tables — level-1 and level-2 with
// a parent link — plus a vector column of fixed dimension."
type Level1Cluster struct {
	ID       uint            `gorm:"primaryKey"`
	Label    string          `gorm:"size:255"`
	Centroid pgvector.Vector `gorm:"type:vector(384)"`
}

func (Level1Cluster) TableName() string { return "cluster_level1" }

// Level2Cluster is a sub-cluster belonging to exactly one Level1Cluster.
// ExampleCount is a denormalized count of historical requests backing this
// cluster, populated by the same offline job that computes the centroid
// itself (out of scope to produce, per spec.md §1); it lets CP's fallback
// chain (SPEC_FULL.md §3) test "does this cluster have examples" without a
// second table scan per prediction.
type Level2Cluster struct {
	ID           uint            `gorm:"primaryKey"`
	ParentID     uint            `gorm:"not null;index"`
	Label        string          `gorm:"size:255"`
	Centroid     pgvector.Vector `gorm:"type:vector(384)"`
	ExampleCount int             `gorm:"default:0"`
}

func (Level2Cluster) TableName() string { return "cluster_level2" }
