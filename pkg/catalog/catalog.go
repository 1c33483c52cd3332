// Package catalog implements the Catalog (C) component: an in-memory,
// immutable-after-startup registry mapping product id to Product metadata.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"analytics-assistant-be/internal/apperrors"
)

// Product is a uniquely-identified artifact descriptor, per spec.md §3.
type Product struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	UseCases    []string `yaml:"use_cases"`
	KeyMetrics  []string `yaml:"key_metrics"`
	SourceFile  string   `yaml:"source_file"`
	Filter      string   `yaml:"filter,omitempty"`
	RouteHint   string   `yaml:"route_hint,omitempty"`
	// ClusterChildID ties a product to the cluster-index child centroid
	// it best represents, so the Report Builder can resolve which
	// artifact CSVs are "related data" for a given (parent_id, child_id)
	// pair. Products with no natural cluster affinity leave this unset.
	ClusterChildID *uint `yaml:"cluster_child_id,omitempty"`
}

type seedFile struct {
	Products []Product `yaml:"products"`
}

// Catalog is process-wide, read-mostly, and shared across every Session.
type Catalog struct {
	byID  map[string]Product
	order []string
}

// Load reads product definitions from a YAML file and registers them in
// file order. Duplicate ids are a startup ConfigError, per spec.md §4.1.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConfigError, "reading catalog definition", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, apperrors.Wrap(apperrors.ConfigError, "parsing catalog definition", err)
	}

	return New(seed.Products)
}

// New builds a Catalog from an in-memory product list, preserving order.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Product, len(products))}
	for _, p := range products {
		if _, exists := c.byID[p.ID]; exists {
			return nil, apperrors.Newf(apperrors.ConfigError, "duplicate product id %q in catalog", p.ID)
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Get resolves a product id. Ids are case-sensitive.
func (c *Catalog) Get(id string) (Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return Product{}, apperrors.Newf(apperrors.UnknownProduct, "unknown product %q", id)
	}
	return p, nil
}

// DescribeForPlanner renders a deterministic, stable serialization listing
// each product's id, description, use cases, and metrics in registration
// order, for embedding into the Planner's prompt.
func (c *Catalog) DescribeForPlanner() string {
	var b strings.Builder
	b.WriteString("## Available Data Products\n\n")
	for _, id := range c.order {
		p := c.byID[id]
		fmt.Fprintf(&b, "**%s**\n", p.ID)
		fmt.Fprintf(&b, "- Description: %s\n", p.Description)
		fmt.Fprintf(&b, "- Use Cases: %s\n", strings.Join(p.UseCases, ", "))
		fmt.Fprintf(&b, "- Key Metrics: %s\n\n", strings.Join(p.KeyMetrics, ", "))
	}
	return b.String()
}

// IDs returns every registered product id in registration order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// ForClusterChild returns every product tagged with the given cluster
// child id, in registration order. Used by the Report Builder to find
// which artifact CSVs support a given (parent_id, child_id) report.
func (c *Catalog) ForClusterChild(childID uint) []Product {
	var out []Product
	for _, id := range c.order {
		p := c.byID[id]
		if p.ClusterChildID != nil && *p.ClusterChildID == childID {
			out = append(out, p)
		}
	}
	return out
}
