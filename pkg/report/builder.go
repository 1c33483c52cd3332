// Package report implements the Report Builder (RB): assembles a PDF
// from an analysis result plus chart images rendered from the artifact
// CSVs related to a cluster, per spec.md section 4.9.
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/artifact"
	"analytics-assistant-be/pkg/catalog"
)

// maxChartsPerReport bounds how many artifact charts a single report
// embeds, per spec.md's "up to N chart images".
const maxChartsPerReport = 4

// CatalogLookup is the narrow slice of Catalog the Report Builder needs:
// which products are related to a given cluster child.
type CatalogLookup interface {
	ForClusterChild(childID uint) []catalog.Product
}

// ArtifactSource is the narrow slice of the Artifact Store RB needs: the
// full row set behind a product, for chart rendering.
type ArtifactSource interface {
	LoadArtifact(ctx context.Context, productID string) (*artifact.Artifact, error)
}

// Request carries everything RB needs to build one report. ParentLabel
// and ChildLabel are resolved by the caller (the analytics-visit flow
// already has them) and rendered verbatim in the header.
type Request struct {
	ParentID    uint
	ChildID     uint
	ParentLabel string
	ChildLabel  string
	Discussion  string
	Answer      string
	Rationale   []string
	KeyMetrics  []string
}

type Builder struct {
	catalog   CatalogLookup
	artifacts ArtifactSource
	log       logger.ILogger
}

func New(cat CatalogLookup, artifacts ArtifactSource, log logger.ILogger) *Builder {
	return &Builder{catalog: cat, artifacts: artifacts, log: log}
}

// Build renders req to a PDF byte stream: header (cluster labels and
// timestamp), body (answer, rationale, key-metrics table), then up to
// maxChartsPerReport chart images from artifacts tied to req.ChildID.
// A chart that fails to render or load is skipped and logged, never
// fatal to the report as a whole — the report degrades gracefully to
// fewer charts rather than failing outright.
func (b *Builder) Build(ctx context.Context, req Request) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Analysis Report: %s / %s", req.ParentLabel, req.ChildLabel), false)
	pdf.AddPage()

	b.writeHeader(pdf, req)
	b.writeBody(pdf, req)
	b.writeCharts(ctx, pdf, req)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.Wrap(apperrors.ConfigError, "rendering report PDF", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) writeHeader(pdf *gofpdf.Fpdf, req Request) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Analytics Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Cluster: %s / %s", req.ParentLabel, req.ChildLabel), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Generated: %s", time.Now().Format(time.RFC1123)), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (b *Builder) writeBody(pdf *gofpdf.Fpdf, req Request) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Answer", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, req.Answer, "", "L", false)
	pdf.Ln(2)

	if len(req.Rationale) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Rationale", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, bullet := range req.Rationale {
			pdf.CellFormat(0, 6, fmt.Sprintf("- %s", bullet), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	if req.Discussion != "" {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Discussion", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, req.Discussion, "", "L", false)
		pdf.Ln(2)
	}

	if len(req.KeyMetrics) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Key Metrics", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, metric := range req.KeyMetrics {
			pdf.CellFormat(0, 6, fmt.Sprintf("- %s", metric), "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}
}

func (b *Builder) writeCharts(ctx context.Context, pdf *gofpdf.Fpdf, req Request) {
	products := b.catalog.ForClusterChild(req.ChildID)
	if len(products) == 0 {
		return
	}
	if len(products) > maxChartsPerReport {
		products = products[:maxChartsPerReport]
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Supporting Data", "", 1, "L", false, 0, "")

	for i, product := range products {
		a, err := b.artifacts.LoadArtifact(ctx, product.ID)
		if err != nil {
			b.log.Warn("report", "skipping chart, artifact unavailable", map[string]interface{}{"product_id": product.ID, "error": err.Error()})
			continue
		}

		png, err := renderChart(a, product.Description)
		if err != nil {
			b.log.Warn("report", "skipping chart, render failed", map[string]interface{}{"product_id": product.ID, "error": err.Error()})
			continue
		}

		name := fmt.Sprintf("chart-%d", i)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, product.Description, "", 1, "L", false, 0, "")
		pdf.ImageOptions(name, 10, pdf.GetY(), 190, 0, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
}
