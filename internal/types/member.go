package types

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	ID                   uuid.UUID `json:"id"`
	Email                *string   `json:"email,omitempty"`
	Nickname             string    `json:"nickname"`
	Provider             Provider  `json:"provider"`
	ProviderUserID       string    `json:"-"`
	ProfileImageURL      *string   `json:"profile_image_url,omitempty"`
	ProviderRefreshToken *string   `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type UpdateMemberParams struct {
	Nickname        *string `json:"nickname,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}
