package routes

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/vaulth/vaulth/pkg/config"
	"github.com/vaulth/vaulth/pkg/db/models"
	"github.com/vaulth/vaulth/pkg/providers"
	"github.com/vaulth/vaulth/pkg/store"
	"github.com/vaulth/vaulth/pkg/vapi"
	"github.com/vaulth/vaulth/pkg/vapi/services"
	"github.com/vaulth/vaulth/pkg/vapi/services/oauthflow"
	"github.com/vaulth/vaulth/pkg/vjwt"
	"github.com/vaulth/vaulth/pkg/vlog"
)

// testEnv wires the full HTTP surface against a fake store and a fake
// provider served by httptest.
type testEnv struct {
	t     *testing.T
	api   *vapi.Api
	svcs  *services.Services
	jwt   *vjwt.Service
	store *fakeStore

	provider *providers.Provider

	// identityID is what the fake provider's identity endpoint reports.
	identityID string
	// tokenForm captures the last form posted to the fake token endpoint.
	tokenForm url.Values
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{t: t, identityID: "12345"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		env.tokenForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"granted-tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("GET /users/@me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer granted-tok" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": env.identityID})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	env.provider = &providers.Provider{
		Name:       "discord",
		AuthURL:    "https://discord.com/api/oauth2/authorize",
		TokenURL:   srv.URL + "/oauth2/token",
		Scopes:     []string{"identify"},
		AuthParams: []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "none")},
		ExtractID: func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
			var user struct {
				ID string `json:"id"`
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/users/@me", nil)
			if err != nil {
				return "", err
			}
			req.Header.Set("Authorization", "Bearer "+accessToken)
			resp, err := client.Do(req)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return "", io.ErrUnexpectedEOF
			}
			if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
				return "", err
			}
			return user.ID, nil
		},
	}

	cfg := &config.Config{
		Port:        8080,
		DatabaseURL: "postgres://unused",
		RootURI:     "https://vaulth.test",
		Token:       writeTestKeys(t, 5),
		Clients: map[string]config.ClientConfig{
			"app1": {
				ClientSecret: "s3cret",
				RedirectURLs: []string{"https://app.test/"},
			},
		},
		Discord: &config.OAuth2Config{ClientID: "cid", ClientSecret: "csec"},
	}

	jwtSvc, err := vjwt.New(cfg.Token)
	if err != nil {
		t.Fatalf("vjwt.New failed: %v", err)
	}
	env.jwt = jwtSvc

	env.store = newFakeStore()
	logger := vlog.NewLogger(slog.LevelError, io.Discard)
	svcs := services.New(cfg, jwtSvc, env.store, oauthflow.NewHTTPClient("vaulth-test"), logger)
	env.svcs = svcs

	env.api = vapi.NewApi()
	RegisterToken(env.api.Api, svcs)
	RegisterUsers(env.api.Api, svcs)
	RegisterKey(env.api.Router, jwtSvc)
	RegisterOAuthProviders(env.api.Router, svcs, []*providers.Provider{env.provider})

	return env
}

func writeTestKeys(t *testing.T, duration int64) config.TokenConfig {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	privDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal private key: %v", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")
	if err := os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privDER}), 0600); err != nil {
		t.Fatalf("failed to write private key: %v", err)
	}
	if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0600); err != nil {
		t.Fatalf("failed to write public key: %v", err)
	}

	return config.TokenConfig{PublicKey: pubPath, PrivateKey: privPath, Duration: duration}
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	env.t.Helper()
	rec := httptest.NewRecorder()
	env.api.Router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(target string) *httptest.ResponseRecorder {
	return env.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (env *testEnv) postJSON(target string, body any) *httptest.ResponseRecorder {
	env.t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		env.t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return env.do(req)
}

// errorBody extracts the message from a {"error": "..."} response.
func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func (env *testEnv) mintState(clientID, redirectURI string, state, user *string) string {
	env.t.Helper()
	token, err := env.jwt.Encode(&vjwt.StateClaims{
		ClientID:    clientID,
		RedirectURI: redirectURI,
		State:       state,
		User:        user,
	})
	if err != nil {
		env.t.Fatalf("failed to encode state: %v", err)
	}
	return token
}

func (env *testEnv) mintCode(providerName, providerID, clientID string) string {
	env.t.Helper()
	token, err := env.jwt.Encode(&vjwt.CodeClaims{
		ProviderName: providerName,
		ProviderID:   providerID,
		ClientID:     clientID,
	})
	if err != nil {
		env.t.Fatalf("failed to encode code: %v", err)
	}
	return token
}

func (env *testEnv) mintAccess(sub string) string {
	env.t.Helper()
	token, err := env.jwt.Encode(&vjwt.AccessClaims{Sub: sub})
	if err != nil {
		env.t.Fatalf("failed to encode access token: %v", err)
	}
	return token
}

func str(s string) *string { return &s }

// fakeStore is an in-memory services.UserStore. Conflict detection mirrors
// Postgres: the primary key is checked before the provider uniques, so a
// duplicate id surfaces as ErrIDTaken even when the provider identity also
// collides.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	links map[string]string // "name\x00providerID" -> user id

	// forcedMisses makes SelectByProvider report ErrNotFound that many
	// times regardless of contents, to simulate registration races.
	forcedMisses int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*models.User),
		links: make(map[string]string),
	}
}

func linkKey(name, providerID string) string { return name + "\x00" + providerID }

// seed inserts a user linked to a provider identity, bypassing conflict
// checks.
func (f *fakeStore) seed(id, name, providerID string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	user := &models.User{ID: id, InsertedAt: now, UpdatedAt: now}
	setFakeProviderID(user, name, providerID)
	f.users[id] = user
	if providerID != "" {
		f.links[linkKey(name, providerID)] = id
	}
	return user
}

func (f *fakeStore) Select(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(f.users, id)
	for k, v := range f.links {
		if v == id {
			delete(f.links, k)
		}
	}
	return user, nil
}

func (f *fakeStore) SelectByProvider(ctx context.Context, name, providerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forcedMisses > 0 {
		f.forcedMisses--
		return "", store.ErrNotFound
	}
	id, ok := f.links[linkKey(name, providerID)]
	if !ok {
		return "", store.ErrNotFound
	}
	return id, nil
}

func (f *fakeStore) Login(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		now := time.Now()
		user.LoginAt = &now
	}
	return nil
}

func (f *fakeStore) RegisterByProvider(ctx context.Context, id, name, providerID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; ok {
		return nil, store.ErrIDTaken
	}
	if _, ok := f.links[linkKey(name, providerID)]; ok {
		return nil, store.ErrProviderTaken
	}

	now := time.Now()
	user := &models.User{ID: id, InsertedAt: now, UpdatedAt: now, LoginAt: &now}
	setFakeProviderID(user, name, providerID)
	f.users[id] = user
	f.links[linkKey(name, providerID)] = id
	return user, nil
}

func setFakeProviderID(user *models.User, name, providerID string) {
	switch name {
	case "google":
		user.GoogleID = &providerID
	case "microsoft":
		user.MicrosoftID = &providerID
	case "facebook":
		user.FacebookID = &providerID
	case "twitter":
		user.TwitterID = &providerID
	case "github":
		user.GithubID = &providerID
	case "discord":
		user.DiscordID = &providerID
	}
}
