package types

import (
	"time"

	"github.com/google/uuid"
)

type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type Checklist struct {
	ID        uuid.UUID       `json:"id"`
	PlanID    uuid.UUID       `json:"plan_id"`
	Items     []ChecklistItem `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type UpdateChecklistParams struct {
	Items []ChecklistItem `json:"items"`
}
