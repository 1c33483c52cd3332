package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"analytics-assistant-be/internal/dto"
	"analytics-assistant-be/internal/pkg/serverutils"
	"analytics-assistant-be/pkg/clusterindex"
)

// clusterPredictor is the narrow interface ClusterController depends on,
// satisfied by *clusterpredictor.Predictor.
type clusterPredictor interface {
	Predict(ctx context.Context, question string) (clusterindex.Prediction, error)
}

type IClusterController interface {
	RegisterRoutes(r fiber.Router)
	Predict(ctx *fiber.Ctx) error
}

type clusterController struct {
	predictor clusterPredictor
}

func NewClusterController(predictor clusterPredictor) IClusterController {
	return &clusterController{predictor: predictor}
}

func (c *clusterController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cluster")
	h.Post("predict", c.Predict)
}

func (c *clusterController) Predict(ctx *fiber.Ctx) error {
	var req dto.ClusterPredictRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	pred, err := c.predictor.Predict(ctx.Context(), req.Message)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.ClusterPredictResponse{
		ParentClusterID: pred.ParentID,
		ChildClusterID:  pred.ChildID,
		Confidence:      pred.Confidence,
	})
}
