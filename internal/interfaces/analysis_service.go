package interfaces

import (
	"context"

	"github.com/InonELGABSI/housescanner/internal/models"
)

// RoomPayload describes one room's photos in an analysis request.
type RoomPayload struct {
	RoomID   string   `json:"room_id"`
	RoomType string   `json:"room_type"`
	Photos   []string `json:"photos"`
}

// AnalyzeRequest is the outbound payload to the AI analysis service. The
// merged checklist documents are embedded verbatim.
type AnalyzeRequest struct {
	ScanID            string                   `json:"scan_id"`
	HouseType         string                   `json:"house_type"`
	Rooms             []RoomPayload            `json:"rooms"`
	HouseChecklist    models.ChecklistDocument `json:"house_checklist"`
	RoomsChecklist    models.ChecklistDocument `json:"rooms_checklist"`
	ProductsChecklist models.ChecklistDocument `json:"products_checklist"`
}

// RoomAnalysis is the per-room portion of an analysis response.
type RoomAnalysis struct {
	RoomID   string           `json:"room_id"`
	Findings []models.Finding `json:"findings"`
	Summary  string           `json:"summary,omitempty"`
}

// AnalyzeResponse is the AI analysis result for one scan.
type AnalyzeResponse struct {
	ScanID  string         `json:"scan_id"`
	Summary string         `json:"summary"`
	Rooms   []RoomAnalysis `json:"rooms"`
}

// AnalysisService submits scans to the external AI analysis backend.
type AnalysisService interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error)
}
