package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

type stubAuthRepo struct {
	users map[string]*domain.User // by email
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "id-" + user.Email
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) Update(_ context.Context, user *domain.User) error {
	for email, u := range r.users {
		if u.ID != user.ID {
			continue
		}
		if other, taken := r.users[user.Email]; taken && other.ID != user.ID {
			return domain.ErrUserExists
		}
		delete(r.users, email)
		r.users[user.Email] = cloneUser(user)
		return nil
	}
	return domain.ErrUserNotFound
}

type stubAllowList struct {
	emails map[string]bool
	err    error
}

func (a *stubAllowList) IsAuthorized(_ context.Context, email string) (bool, error) {
	return a.emails[email], a.err
}

func (a *stubAllowList) Add(_ context.Context, email string) (*domain.AuthorizedEmail, error) {
	if a.emails == nil {
		a.emails = map[string]bool{}
	}
	if a.emails[email] {
		return nil, domain.ErrAlreadyAuthorized
	}
	a.emails[email] = true
	return &domain.AuthorizedEmail{ID: "auth-" + email, Email: email}, nil
}

type stubTokens struct {
	owners  map[string]string
	ttls    map[string]time.Duration
	revoked []string
}

func newStubTokens() *stubTokens {
	return &stubTokens{owners: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubTokens) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.owners[token] = userID
	s.ttls[token] = ttl
	return nil
}

func (s *stubTokens) Consume(_ context.Context, token string) (string, error) {
	owner, ok := s.owners[token]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	delete(s.owners, token)
	return owner, nil
}

func (s *stubTokens) Revoke(_ context.Context, token string) error {
	delete(s.owners, token)
	s.revoked = append(s.revoked, token)
	return nil
}

func newAuthSvc(allowed ...string) (*AuthService, *stubAuthRepo, *stubTokens) {
	repo := newStubAuthRepo()
	allow := &stubAllowList{emails: map[string]bool{}}
	for _, e := range allowed {
		allow.emails[e] = true
	}
	tokens := newStubTokens()
	return NewAuthService(repo, allow, tokens, "secret", time.Hour, 24*time.Hour), repo, tokens
}

func signUp(t *testing.T, svc *AuthService, email, password string) *domain.User {
	t.Helper()
	user, err := svc.SignUp(context.Background(), ports.SignUpInput{
		Email: email, Password: password, FirstName: "Ana", LastName: "Silva",
	})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	return user
}

func TestAuthService_SignUp_Success(t *testing.T) {
	svc, _, _ := newAuthSvc("ana@example.com")

	user := signUp(t, svc, "  Ana@Example.com ", "pass123")
	if user.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Metadata.FirstName != "Ana" || user.Metadata.LastName != "Silva" {
		t.Fatalf("metadata not stored: %+v", user.Metadata)
	}
}

func TestAuthService_SignUp_NotAllowListed(t *testing.T) {
	svc, _, _ := newAuthSvc()

	_, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "eve@example.com", Password: "x"})
	if !errors.Is(err, domain.ErrSignupNotAllowed) {
		t.Fatalf("expected ErrSignupNotAllowed, got %v", err)
	}
}

func TestAuthService_SignUp_AllowListError(t *testing.T) {
	repo := newStubAuthRepo()
	boom := errors.New("mongo down")
	svc := NewAuthService(repo, &stubAllowList{err: boom}, newStubTokens(), "secret", time.Hour, time.Hour)

	_, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "a@example.com", Password: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped allow-list error, got %v", err)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	svc, _, _ := newAuthSvc("a@example.com")

	if _, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "", Password: "x"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "a@example.com"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	svc, _, _ := newAuthSvc("bob@example.com")

	signUp(t, svc, "bob@example.com", "pass")
	_, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "bob@example.com", Password: "pass2"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	svc, _, tokens := newAuthSvc("carol@example.com")
	user := signUp(t, svc, "carol@example.com", "s3cret")

	sess, err := svc.SignIn(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", sess)
	}
	if sess.User.ID != user.ID || sess.User.Metadata.FirstName != "Ana" {
		t.Fatalf("unexpected identity: %+v", sess.User)
	}
	if tokens.owners[sess.RefreshToken] != user.ID || tokens.ttls[sess.RefreshToken] != 24*time.Hour {
		t.Fatalf("refresh token not stored for user")
	}
	if time.Until(sess.ExpiresAt) > time.Hour || time.Until(sess.ExpiresAt) < 58*time.Minute {
		t.Fatalf("unexpected expiry %v", sess.ExpiresAt)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(sess.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != user.ID || claims["email"] != "carol@example.com" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Fatalf("expected jti claim")
	}
}

func TestAuthService_SignIn_InvalidPassword(t *testing.T) {
	svc, _, _ := newAuthSvc("dave@example.com")
	signUp(t, svc, "dave@example.com", "goodpass")

	if _, err := svc.SignIn(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_UnknownUser(t *testing.T) {
	svc, _, _ := newAuthSvc()

	if _, err := svc.SignIn(context.Background(), "ghost@example.com", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	svc, _, tokens := newAuthSvc("erin@example.com")
	signUp(t, svc, "erin@example.com", "pw")
	first, err := svc.SignIn(context.Background(), "erin@example.com", "pw")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("expected a rotated refresh token")
	}
	if _, ok := tokens.owners[first.RefreshToken]; ok {
		t.Fatalf("old refresh token still valid")
	}
	if second.User.Email != "erin@example.com" {
		t.Fatalf("unexpected identity: %+v", second.User)
	}

	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
	}
}

func TestAuthService_Refresh_Empty(t *testing.T) {
	svc, _, _ := newAuthSvc()
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_SignOut_RevokesToken(t *testing.T) {
	svc, _, tokens := newAuthSvc("fay@example.com")
	signUp(t, svc, "fay@example.com", "pw")
	sess, _ := svc.SignIn(context.Background(), "fay@example.com", "pw")

	if err := svc.SignOut(context.Background(), sess.RefreshToken); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	if len(tokens.revoked) != 1 || tokens.revoked[0] != sess.RefreshToken {
		t.Fatalf("expected token revoked, got %v", tokens.revoked)
	}
	if err := svc.SignOut(context.Background(), ""); err != nil {
		t.Fatalf("empty token should be a no-op, got %v", err)
	}
}

func strPtr(s string) *string { return &s }

func TestAuthService_UpdateUser_Password(t *testing.T) {
	svc, _, _ := newAuthSvc("gil@example.com")
	user := signUp(t, svc, "gil@example.com", "oldpass")

	updated, err := svc.UpdateUser(context.Background(), user.ID, ports.UserUpdate{Password: strPtr("newpass")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Metadata.FirstName != "Ana" {
		t.Fatalf("metadata lost on update: %+v", updated.Metadata)
	}
	if _, err := svc.SignIn(context.Background(), "gil@example.com", "oldpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := svc.SignIn(context.Background(), "gil@example.com", "newpass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestAuthService_UpdateUser_Email(t *testing.T) {
	svc, repo, _ := newAuthSvc("hal@example.com")
	user := signUp(t, svc, "hal@example.com", "pw1234")

	updated, err := svc.UpdateUser(context.Background(), user.ID, ports.UserUpdate{Email: strPtr(" Hal.New@Example.com ")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Email != "hal.new@example.com" {
		t.Fatalf("expected normalized email, got %q", updated.Email)
	}
	if _, err := repo.FindByEmail(context.Background(), "hal@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("old email still resolves: %v", err)
	}
	if _, err := svc.SignIn(context.Background(), "hal.new@example.com", "pw1234"); err != nil {
		t.Fatalf("sign in with new email failed: %v", err)
	}
}

func TestAuthService_UpdateUser_Rejects(t *testing.T) {
	svc, _, _ := newAuthSvc("ivy@example.com", "jon@example.com")
	ivy := signUp(t, svc, "ivy@example.com", "pw1234")
	signUp(t, svc, "jon@example.com", "pw1234")
	ctx := context.Background()

	if _, err := svc.UpdateUser(ctx, ivy.ID, ports.UserUpdate{}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty update, got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, ivy.ID, ports.UserUpdate{Password: strPtr("123")}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for short password, got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, ivy.ID, ports.UserUpdate{Email: strPtr("  ")}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for blank email, got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, ivy.ID, ports.UserUpdate{Email: strPtr("jon@example.com")}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for taken email, got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, "ghost", ports.UserUpdate{Password: strPtr("pw1234")}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
