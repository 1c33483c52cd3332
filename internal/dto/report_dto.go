package dto

// ReportGenerateRequest is the body of POST /api/report/generate. The
// endpoint table in spec.md section 6 lists only parent/child/discussion,
// but section 4.9 names answer/rationale/key_metrics as required Builder
// inputs; the client already holds all of these from the chat SSE answer
// event, so they ride along here too (see DESIGN.md Open Question 9).
type ReportGenerateRequest struct {
	ParentClusterID uint     `json:"parent_cluster_id" validate:"required"`
	ChildClusterID  uint     `json:"child_cluster_id" validate:"required"`
	Discussion      string   `json:"discussion"`
	Answer          string   `json:"answer"`
	Rationale       []string `json:"rationale"`
	KeyMetrics      []string `json:"key_metrics"`
}
