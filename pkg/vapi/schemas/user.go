package schemas

import (
	"time"

	"github.com/vaulth/vaulth/pkg/db/models"
)

// User is the public profile shape. The password column is never part of
// it, and unset optional fields are omitted rather than rendered null.
type User struct {
	ID string `json:"id"`

	InsertedAt time.Time  `json:"inserted_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LoginAt    *time.Time `json:"login_at,omitempty"`

	Name  *string `json:"name,omitempty"`
	About *string `json:"about,omitempty"`

	GoogleID    *string `json:"google_id,omitempty"`
	MicrosoftID *string `json:"microsoft_id,omitempty"`
	FacebookID  *string `json:"facebook_id,omitempty"`
	TwitterID   *string `json:"twitter_id,omitempty"`
	GithubID    *string `json:"github_id,omitempty"`
	DiscordID   *string `json:"discord_id,omitempty"`
}

func UserFromModel(u *models.User) *User {
	return &User{
		ID:          u.ID,
		InsertedAt:  u.InsertedAt,
		UpdatedAt:   u.UpdatedAt,
		LoginAt:     u.LoginAt,
		Name:        u.Name,
		About:       u.About,
		GoogleID:    u.GoogleID,
		MicrosoftID: u.MicrosoftID,
		FacebookID:  u.FacebookID,
		TwitterID:   u.TwitterID,
		GithubID:    u.GithubID,
		DiscordID:   u.DiscordID,
	}
}
