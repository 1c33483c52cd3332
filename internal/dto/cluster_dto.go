package dto

// ClusterPredictRequest is the body of POST /api/cluster/predict.
type ClusterPredictRequest struct {
	Message string `json:"message" validate:"required"`
}

// ClusterPredictResponse mirrors clusterindex.Prediction on the wire.
type ClusterPredictResponse struct {
	ParentClusterID uint    `json:"parent_cluster_id"`
	ChildClusterID  uint    `json:"child_cluster_id"`
	Confidence      float64 `json:"confidence"`
}

// AnalyticsVisitRequest is the body of POST /api/chat/analytics-visit.
type AnalyticsVisitRequest struct {
	ParentClusterID uint `json:"parent_cluster_id" validate:"required"`
	ChildClusterID  uint `json:"child_cluster_id" validate:"required"`
}

// AnalyticsVisitResponse carries the dashboard route and LC-generated
// subtitle discussion for the requested cluster.
type AnalyticsVisitResponse struct {
	URL        string `json:"url"`
	Discussion string `json:"discussion"`
}
