// Package session keeps the signed-in user's token in local storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v4"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	"golang.org/x/oauth2"
)

// Key is the storage key holding the session record.
const Key = "user"

// ErrSignedOut reports that no usable session is stored.
var ErrSignedOut = fmt.Errorf("signed out: %w", app.ErrUnauthorized)

// ErrNoToken reports a sign-in that returned no token.
var ErrNoToken = errors.New("sign in returned no token")

// AuthAPI is the remote account surface.
type AuthAPI interface {
	SignUp(ctx context.Context, name, login, password string) (domain.User, error)
	SignIn(ctx context.Context, login, password string) (string, error)
	GetUser(ctx context.Context, userID string) (domain.User, error)
	UpdateUser(ctx context.Context, userID, name, login, password string) (domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// record is the persisted session payload.
type record struct {
	Token string `json:"token"`
}

// User is the identity decoded from the stored token.
type User struct {
	ID       string
	Login    string
	SignedIn bool
}

// claims are the token fields the client reads.
type claims struct {
	UserID string `json:"userId"`
	Login  string `json:"login"`
	jwt.RegisteredClaims
}

// Manager runs account flows against the service and the local store.
type Manager struct {
	api AuthAPI
	kv  app.KVStore
}

// NewManager constructs a session manager.
func NewManager(api AuthAPI, kv app.KVStore) *Manager {
	return &Manager{api: api, kv: kv}
}

// SignUp registers a new account. It does not sign in.
func (m *Manager) SignUp(ctx context.Context, name, login, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	login = strings.TrimSpace(login)
	if login == "" {
		return domain.User{}, domain.ErrInvalidLogin
	}
	user, err := m.api.SignUp(ctx, name, login, password)
	if err != nil {
		return domain.User{}, fmt.Errorf("sign up: %w", err)
	}
	return user, nil
}

// SignIn exchanges credentials for a token and stores it.
func (m *Manager) SignIn(ctx context.Context, login, password string) (User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return User{}, domain.ErrInvalidLogin
	}
	token, err := m.api.SignIn(ctx, login, password)
	if err != nil {
		return User{}, fmt.Errorf("sign in: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return User{}, ErrNoToken
	}
	user, err := decode(token)
	if err != nil {
		return User{}, err
	}
	encoded, err := sonic.ConfigStd.MarshalToString(record{Token: token})
	if err != nil {
		return User{}, fmt.Errorf("encode session: %w", err)
	}
	if err := m.kv.Set(ctx, Key, encoded); err != nil {
		return User{}, fmt.Errorf("store session: %w", err)
	}
	return user, nil
}

// SignOut forgets the stored session.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Current decodes the stored session. A missing or unreadable session yields
// a signed-out user and no error.
func (m *Manager) Current(ctx context.Context) (User, error) {
	token, err := loadToken(ctx, m.kv)
	if errors.Is(err, ErrSignedOut) {
		return User{}, nil
	}
	if err != nil {
		return User{}, err
	}
	user, err := decode(token)
	if err != nil {
		return User{}, nil
	}
	return user, nil
}

// GetUser fetches the signed-in user's profile.
func (m *Manager) GetUser(ctx context.Context) (domain.User, error) {
	current, err := m.requireUser(ctx)
	if err != nil {
		return domain.User{}, err
	}
	user, err := m.api.GetUser(ctx, current.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// EditProfile rewrites the signed-in user's profile.
func (m *Manager) EditProfile(ctx context.Context, name, login, password string) (domain.User, error) {
	current, err := m.requireUser(ctx)
	if err != nil {
		return domain.User{}, err
	}
	login = strings.TrimSpace(login)
	if login == "" {
		return domain.User{}, domain.ErrInvalidLogin
	}
	user, err := m.api.UpdateUser(ctx, current.ID, strings.TrimSpace(name), login, password)
	if err != nil {
		return domain.User{}, fmt.Errorf("edit profile: %w", err)
	}
	return user, nil
}

// DeleteUser removes the signed-in account and signs out.
func (m *Manager) DeleteUser(ctx context.Context) error {
	current, err := m.requireUser(ctx)
	if err != nil {
		return err
	}
	if err := m.api.DeleteUser(ctx, current.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return m.SignOut(ctx)
}

// requireUser returns the current user or ErrSignedOut.
func (m *Manager) requireUser(ctx context.Context) (User, error) {
	current, err := m.Current(ctx)
	if err != nil {
		return User{}, err
	}
	if !current.SignedIn {
		return User{}, ErrSignedOut
	}
	return current, nil
}

// TokenSource returns bearer tokens read from kv on every request, so a
// sign-in takes effect without rebuilding clients.
func TokenSource(kv app.KVStore) oauth2.TokenSource {
	return tokenSource{kv: kv}
}

type tokenSource struct {
	kv app.KVStore
}

// Token implements oauth2.TokenSource.
func (t tokenSource) Token() (*oauth2.Token, error) {
	token, err := loadToken(context.Background(), t.kv)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// loadToken reads the raw token, or ErrSignedOut.
func loadToken(ctx context.Context, kv app.KVStore) (string, error) {
	if kv == nil {
		return "", ErrSignedOut
	}
	raw, ok, err := kv.Get(ctx, Key)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return "", ErrSignedOut
	}
	var rec record
	if err := sonic.ConfigStd.UnmarshalFromString(raw, &rec); err != nil {
		return "", ErrSignedOut
	}
	token := strings.TrimSpace(rec.Token)
	if token == "" {
		return "", ErrSignedOut
	}
	return token, nil
}

// decode reads identity claims without verifying the signature; the service
// verifies tokens, the client only displays them.
func decode(token string) (User, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return User{}, fmt.Errorf("decode session token: %w", err)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return User{}, fmt.Errorf("decode session token: missing userId")
	}
	return User{ID: c.UserID, Login: c.Login, SignedIn: true}, nil
}
