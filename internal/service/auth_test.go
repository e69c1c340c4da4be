package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/anonymous123-code/chatApp/internal/apperror"
	"github.com/anonymous123-code/chatApp/internal/auth"
	"github.com/anonymous123-code/chatApp/internal/model"
)

// fakeUserRepo is an in-memory UserRepository. A hand-written fake keeps the
// tests readable — what it does is exactly what you see.
type fakeUserRepo struct {
	users map[string]*model.User
	// set to a non-nil error to simulate a store failure
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.users[user.Username]; exists {
		return apperror.Conflict("user", user.Username)
	}
	user.ID = "fake-id-" + user.Username
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.Username] = &copied
	return nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	return u, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	// Cost 4 is bcrypt's minimum — keeps the suite fast.
	ps := auth.NewPasswordServiceForTest(4)

	return NewAuthService(repo, ts, ps, testLogger())
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	user, err := svc.Register(context.Background(), "alice", "s3cret", "Alice A.", "alice@example.com")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want %q", user.Username, "alice")
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret" {
		t.Error("Register() must store a hash, never the plaintext password")
	}
	if _, ok := repo.users["alice"]; !ok {
		t.Error("Register() did not persist the user")
	}
}

func TestRegister_Validation(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
		email    string
	}{
		{"empty username", "", "pw", "a@b.com"},
		{"username too long", strings.Repeat("x", MaxUsernameLength+1), "pw", "a@b.com"},
		{"empty password", "alice", "", "a@b.com"},
		{"email without at", "alice", "pw", "not-an-email"},
		{"email without domain dot", "alice", "pw", "a@b"},
		{"empty email", "alice", "pw", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := newTestAuthService(t, repo)

			_, err := svc.Register(context.Background(), tc.username, tc.password, "Full Name", tc.email)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() = %v, want ErrValidation", err)
			}
			// Nothing may be written when validation fails.
			if len(repo.users) != 0 {
				t.Error("Register() persisted a user despite failing validation")
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw", "", "alice@example.com"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// A duplicate surfaces as a validation failure, not a conflict.
	_, err := svc.Register(ctx, "alice", "other", "", "alice2@example.com")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Register() duplicate = %v, want ErrValidation", err)
	}
	if err.Error() != "username already registered" {
		t.Errorf("message = %q, want %q", err.Error(), "username already registered")
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret", "", "alice@example.com"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	res, err := svc.Authenticate(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if res.Token == "" {
		t.Error("Authenticate() returned an empty token")
	}
	if res.User.Username != "alice" {
		t.Errorf("User.Username = %q, want %q", res.User.Username, "alice")
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret", "", "alice@example.com"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Authenticate(ctx, "alice", "wrong")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Authenticate() = %v, want ErrUnauthorized", err)
	}
}

// Unknown usernames produce the exact same error as wrong passwords, so a
// caller can't probe which usernames exist.
func TestAuthenticate_UnknownUserMatchesWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret", "", "alice@example.com"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, errUnknown := svc.Authenticate(ctx, "ghost", "whatever")
	_, errWrongPw := svc.Authenticate(ctx, "alice", "wrong")

	if !errors.Is(errUnknown, apperror.ErrUnauthorized) {
		t.Fatalf("Authenticate() unknown user = %v, want ErrUnauthorized", errUnknown)
	}
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("unknown-user error %q differs from wrong-password error %q",
			errUnknown.Error(), errWrongPw.Error())
	}
}

func TestAuthenticate_DisabledUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret", "", "alice@example.com"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	repo.users["alice"].Disabled = true

	_, err := svc.Authenticate(ctx, "alice", "s3cret")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Authenticate() disabled user = %v, want ErrUnauthorized", err)
	}
}

func TestGetUser_SelfGetsFullProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw", "Alice A.", "alice@example.com"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, full, err := svc.GetUser(ctx, "alice", "alice")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if !full {
		t.Error("GetUser() full = false for the profile owner")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "alice@example.com")
	}
}

func TestGetUser_OthersGetPublicView(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "pw", "Alice A.", "alice@example.com"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, full, err := svc.GetUser(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if full {
		t.Error("GetUser() full = true for a different requester")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, _, err := svc.GetUser(context.Background(), "ghost", "alice")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUser() = %v, want ErrNotFound", err)
	}
}
