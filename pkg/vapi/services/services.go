package services

import (
	"context"
	"net/http"

	"github.com/vaulth/vaulth/pkg/config"
	"github.com/vaulth/vaulth/pkg/db/models"
	"github.com/vaulth/vaulth/pkg/hash"
	"github.com/vaulth/vaulth/pkg/vapi/services/oauthflow"
	"github.com/vaulth/vaulth/pkg/vjwt"
	"github.com/vaulth/vaulth/pkg/vlog"
)

// UserStore is the persistence contract the handlers depend on, satisfied
// by store.Store. Absent rows surface as store.ErrNotFound; registration
// conflicts as store.ErrIDTaken / store.ErrProviderTaken.
type UserStore interface {
	Select(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
	SelectByProvider(ctx context.Context, name, providerID string) (string, error)
	Login(ctx context.Context, id string) error
	RegisterByProvider(ctx context.Context, id, name, providerID string) (*models.User, error)
}

type Services struct {
	Cfg    *config.Config
	JWT    *vjwt.Service
	Users  UserStore
	Flow   *oauthflow.Service
	Hasher *hash.Hasher
	Log    *vlog.Logger
}

func New(cfg *config.Config, jwtSvc *vjwt.Service, users UserStore, client *http.Client, log *vlog.Logger) *Services {
	return &Services{
		Cfg:    cfg,
		JWT:    jwtSvc,
		Users:  users,
		Flow:   oauthflow.New(cfg, jwtSvc, users, client, log),
		Hasher: hash.New(cfg.Hash),
		Log:    log,
	}
}
