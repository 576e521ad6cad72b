package model

import "github.com/google/uuid"

// CachedUser is the locally cached identity snapshot served by the user
// service. Posts and comments copy Username at write time; later renames
// only affect newly authored content.
type CachedUser struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}
