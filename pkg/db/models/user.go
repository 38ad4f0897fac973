package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a local Vaulth identity. The id is chosen by the client on first
// registration. Each provider column holds the provider's opaque user ID
// and is unique across all rows, so a given provider identity maps to at
// most one local user.
type User struct {
	bun.BaseModel `bun:"table:vaulth,alias:v"`

	ID string `bun:"id,pk"`

	InsertedAt time.Time  `bun:"inserted_at,notnull"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull"`
	LoginAt    *time.Time `bun:"login_at"`

	Name  *string `bun:"name"`
	About *string `bun:"about"`

	// Password is managed by the password subsystem, never by the
	// delegated-auth flow, and never serialized to clients.
	Password *string `bun:"password"`

	GoogleID    *string `bun:"google_id,unique"`
	MicrosoftID *string `bun:"microsoft_id,unique"`
	FacebookID  *string `bun:"facebook_id,unique"`
	TwitterID   *string `bun:"twitter_id,unique"`
	GithubID    *string `bun:"github_id,unique"`
	DiscordID   *string `bun:"discord_id,unique"`
}
