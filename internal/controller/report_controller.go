package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"analytics-assistant-be/internal/dto"
	"analytics-assistant-be/internal/pkg/serverutils"
	"analytics-assistant-be/pkg/report"
)

// reportBuilder is the narrow interface ReportController depends on,
// satisfied by *report.Builder.
type reportBuilder interface {
	Build(ctx context.Context, req report.Request) ([]byte, error)
}

// clusterLabels is the narrow interface used to render human-readable
// cluster names in the PDF header, satisfied by *clusterindex.Index.
type clusterLabels interface {
	ParentLabel(id uint) string
	ChildLabel(id uint) string
}

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
}

type reportController struct {
	builder reportBuilder
	labels  clusterLabels
}

func NewReportController(builder reportBuilder, labels clusterLabels) IReportController {
	return &reportController{builder: builder, labels: labels}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/report")
	h.Post("generate", c.Generate)
}

func (c *reportController) Generate(ctx *fiber.Ctx) error {
	var req dto.ReportGenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	pdf, err := c.builder.Build(ctx.Context(), report.Request{
		ParentID:    req.ParentClusterID,
		ChildID:     req.ChildClusterID,
		ParentLabel: c.labels.ParentLabel(req.ParentClusterID),
		ChildLabel:  c.labels.ChildLabel(req.ChildClusterID),
		Discussion:  req.Discussion,
		Answer:      req.Answer,
		Rationale:   req.Rationale,
		KeyMetrics:  req.KeyMetrics,
	})
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	return ctx.Send(pdf)
}
