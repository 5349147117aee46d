package types

import "github.com/google/uuid"

type LlmInteraction struct {
	MemberID     *uuid.UUID `json:"member_id,omitempty"`
	Agent        string     `json:"agent"`
	Prompt       string     `json:"prompt"`
	ResponseText string     `json:"response_text"`
	ModelUsed    string     `json:"model_used"`
	LatencyMs    int        `json:"latency_ms"`
}
