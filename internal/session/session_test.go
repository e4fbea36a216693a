package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
)

type fakeKV struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

type fakeAuth struct {
	token     string
	signInErr error
	users     map[string]domain.User
	deleted   []string
}

func (f *fakeAuth) SignUp(_ context.Context, name, login, _ string) (domain.User, error) {
	return domain.User{ID: "u-new", Name: name, Login: login}, nil
}

func (f *fakeAuth) SignIn(context.Context, string, string) (string, error) {
	return f.token, f.signInErr
}

func (f *fakeAuth) GetUser(_ context.Context, id string) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, &app.APIError{Kind: app.KindNotFound, Status: 404}
	}
	return u, nil
}

func (f *fakeAuth) UpdateUser(_ context.Context, id, name, login, _ string) (domain.User, error) {
	u := domain.User{ID: id, Name: name, Login: login}
	f.users[id] = u
	return u, nil
}

func (f *fakeAuth) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func signedToken(t *testing.T, userID, login string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"login":  login,
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func TestSignInStoresSessionAndDecodesClaims(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	api := &fakeAuth{token: signedToken(t, "u-1", "ada")}
	m := NewManager(api, kv)

	user, err := m.SignIn(ctx, " ada ", "pw")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if !user.SignedIn || user.ID != "u-1" || user.Login != "ada" {
		t.Fatalf("unexpected user %#v", user)
	}
	current, err := m.Current(ctx)
	if err != nil || current != user {
		t.Fatalf("Current() = %#v, %v", current, err)
	}

	tok, err := TokenSource(kv).Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != api.token || tok.Type() != "Bearer" {
		t.Fatalf("unexpected token %#v", tok)
	}

	if err := m.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	current, err = m.Current(ctx)
	if err != nil || current.SignedIn {
		t.Fatalf("Current() after sign out = %#v, %v", current, err)
	}
	if _, err := TokenSource(kv).Token(); !errors.Is(err, app.ErrUnauthorized) {
		t.Fatalf("expected unauthorized token error, got %v", err)
	}
}

func TestSignInFailures(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()

	m := NewManager(&fakeAuth{}, kv)
	if _, err := m.SignIn(ctx, "ada", "pw"); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if _, err := m.SignIn(ctx, " ", "pw"); !errors.Is(err, domain.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}

	denied := &fakeAuth{signInErr: &app.APIError{Kind: app.KindUnauthorized, Status: 403, Message: "bad credentials"}}
	m = NewManager(denied, kv)
	_, err := m.SignIn(ctx, "ada", "pw")
	if !errors.Is(err, app.ErrUnauthorized) || app.Message(err) != "bad credentials" {
		t.Fatalf("unexpected sign in error %v", err)
	}
	if _, ok, _ := kv.Get(ctx, Key); ok {
		t.Fatal("failed sign in stored a session")
	}

	m = NewManager(&fakeAuth{token: "not-a-jwt"}, kv)
	if _, err := m.SignIn(ctx, "ada", "pw"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCurrentWithCorruptSession(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	_ = kv.Set(ctx, Key, `{"token":"garbage"}`)

	user, err := NewManager(&fakeAuth{}, kv).Current(ctx)
	if err != nil || user.SignedIn {
		t.Fatalf("Current() = %#v, %v", user, err)
	}
}

func TestProfileFlows(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	api := &fakeAuth{
		token: signedToken(t, "u-1", "ada"),
		users: map[string]domain.User{"u-1": {ID: "u-1", Name: "Ada", Login: "ada"}},
	}
	m := NewManager(api, kv)

	if _, err := m.GetUser(ctx); !errors.Is(err, ErrSignedOut) {
		t.Fatalf("expected ErrSignedOut, got %v", err)
	}
	if _, err := m.SignIn(ctx, "ada", "pw"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	user, err := m.GetUser(ctx)
	if err != nil || user.Name != "Ada" {
		t.Fatalf("GetUser() = %#v, %v", user, err)
	}
	user, err = m.EditProfile(ctx, "Ada L", "ada2", "pw2")
	if err != nil || user.Login != "ada2" {
		t.Fatalf("EditProfile() = %#v, %v", user, err)
	}
	if err := m.DeleteUser(ctx); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "u-1" {
		t.Fatalf("unexpected deletes %#v", api.deleted)
	}
	if current, _ := m.Current(ctx); current.SignedIn {
		t.Fatal("expected sign out after delete")
	}
}

func TestSignUpDoesNotSignIn(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	m := NewManager(&fakeAuth{}, kv)

	user, err := m.SignUp(ctx, "Ada", "ada", "pw")
	if err != nil || user.Login != "ada" {
		t.Fatalf("SignUp() = %#v, %v", user, err)
	}
	if current, _ := m.Current(ctx); current.SignedIn {
		t.Fatal("sign up must not sign in")
	}
}
