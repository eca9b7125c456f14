package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palavraviva/study-platform/internal/client/auth"
	"github.com/palavraviva/study-platform/internal/client/config"
	"github.com/palavraviva/study-platform/internal/core/domain"
)

// fakeServer plays the study server for one signed-in reader.
type fakeServer struct {
	mu        sync.Mutex
	admin     bool
	firstName string
	acquired  []string
	answers   map[string]json.RawMessage
	email     string
	passwords []string
}

func (f *fakeServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		reply := func(status int, v any) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(v)
		}
		authed := r.Header.Get("Authorization") == "Bearer access"

		switch {
		case r.URL.Path == "/auth/login":
			reply(http.StatusOK, domain.Session{
				AccessToken:  "access",
				RefreshToken: "refresh",
				ExpiresAt:    time.Now().Add(time.Hour),
				User: domain.Identity{
					ID:       "u1",
					Email:    "ana@example.com",
					Metadata: domain.IdentityMetadata{FirstName: "Meta"},
				},
			})
		case r.URL.Path == "/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		case !authed:
			reply(http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
		case r.URL.Path == "/auth/user" && r.Method == http.MethodPut:
			var body struct {
				Email    *string `json:"email"`
				Password *string `json:"password"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Email != nil {
				f.email = *body.Email
			}
			if body.Password != nil {
				f.passwords = append(f.passwords, *body.Password)
			}
			email := f.email
			if email == "" {
				email = "ana@example.com"
			}
			reply(http.StatusOK, map[string]any{"user": domain.User{ID: "u1", Email: email}})
		case r.URL.Path == "/v1/profile" && r.Method == http.MethodPut:
			var body struct {
				FirstName string `json:"first_name"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.firstName = body.FirstName
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/v1/profile" && r.Method == http.MethodGet:
			if f.firstName == "" {
				reply(http.StatusNotFound, map[string]string{"error": "profile not found"})
				return
			}
			done := f.answers != nil
			reply(http.StatusOK, domain.ProfileRecord{ID: "u1", FirstName: &f.firstName, OnboardingCompleted: &done})
		case r.URL.Path == "/v1/admin-membership":
			if !f.admin {
				reply(http.StatusNotFound, map[string]string{"error": "admin membership not found"})
				return
			}
			reply(http.StatusOK, domain.AdminMembership{ID: "m1", UserID: "u1"})
		case r.URL.Path == "/v1/onboarding":
			var body struct {
				Answers map[string]json.RawMessage `json:"answers"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.answers = body.Answers
			f.firstName = "Ana"
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/acquire"):
			f.acquired = append(f.acquired, strings.Split(r.URL.Path, "/")[3])
			reply(http.StatusCreated, domain.Progress{ID: "p1"})
		case r.URL.Path == "/v1/library":
			reply(http.StatusOK, []domain.StudyProgress{{Study: domain.Study{ID: "genesis", Title: "Gênesis"}, TotalChapters: 4, CompletedChapters: 1, ProgressPercentage: 25}})
		default:
			reply(http.StatusNotFound, map[string]string{"error": "Not Found"})
		}
	}
}

func startApp(t *testing.T, srv *fakeServer, input string) *App {
	t.Helper()
	ts := httptest.NewServer(srv.handler(t))
	t.Cleanup(ts.Close)

	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	t.Cleanup(func() { readPassword = old })

	cfg := &config.Config{APIURL: ts.URL, RefreshMargin: time.Minute, RequestTimeout: 2 * time.Second}
	a := newApp(cfg, zerolog.Nop(), strings.NewReader(input), &bytes.Buffer{})
	require.NoError(t, a.store.Start(context.Background()))
	t.Cleanup(a.store.Close)
	return a
}

func TestApp_LoginDerivesProfileFromMetadata(t *testing.T) {
	out := captureOutput(t)
	a := startApp(t, &fakeServer{}, "ana@example.com\n")

	assert.Equal(t, "(anônimo)", a.status())
	require.NoError(t, a.Login(context.Background()))

	snap := a.store.Snapshot()
	require.True(t, snap.Authenticated())
	assert.False(t, snap.Loading)
	assert.Equal(t, "Meta", snap.Profile.FullName)
	assert.False(t, snap.IsAdmin)
	assert.Equal(t, "(Meta)", a.status())
	assert.Contains(t, *out, "Olá, Meta")
}

func TestApp_AdminGuard(t *testing.T) {
	captureOutput(t)
	a := startApp(t, &fakeServer{admin: false, firstName: "Ana"}, "ana@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	assert.ErrorIs(t, a.Admin(context.Background(), []string{"studies"}), errAdminOnly)
}

func TestApp_AdminStatus(t *testing.T) {
	captureOutput(t)
	a := startApp(t, &fakeServer{admin: true, firstName: "Ana"}, "ana@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	assert.True(t, a.isAdmin())
	assert.Equal(t, "(Ana admin)", a.status())
}

func TestApp_AcquireSetsNotificationUntilLibraryViewed(t *testing.T) {
	captureOutput(t)
	srv := &fakeServer{firstName: "Ana"}
	a := startApp(t, srv, "ana@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	require.NoError(t, a.Acquire(context.Background(), "genesis"))
	assert.Equal(t, []string{"genesis"}, srv.acquired)
	assert.True(t, a.store.Snapshot().HasNewStudyNotification)

	require.NoError(t, a.Library(context.Background()))
	assert.False(t, a.store.Snapshot().HasNewStudyNotification)
}

func TestApp_OnboardingRefetchesProfile(t *testing.T) {
	captureOutput(t)
	srv := &fakeServer{}
	input := strings.Join([]string{
		"ana@example.com", // login
		"34",              // age
		"2",               // gender
		"",                // frequency skipped
		"1, 3",            // interests
	}, "\n") + "\n"
	a := startApp(t, srv, input)
	require.NoError(t, a.Login(context.Background()))
	require.False(t, a.store.Snapshot().Profile.OnboardingCompleted)

	require.NoError(t, a.Onboarding(context.Background()))

	assert.JSONEq(t, `"34"`, string(srv.answers["q1_age"]))
	assert.JSONEq(t, `"feminino"`, string(srv.answers["q1_gender"]))
	assert.JSONEq(t, `["oracao","ansiedade"]`, string(srv.answers["q7"]))
	_, hasFrequency := srv.answers["q2"]
	assert.False(t, hasFrequency)

	snap := a.store.Snapshot()
	assert.True(t, snap.Profile.OnboardingCompleted)
	assert.Equal(t, "Ana", snap.Profile.FullName)
}

func TestApp_LogoutBecomesAnonymous(t *testing.T) {
	captureOutput(t)
	a := startApp(t, &fakeServer{firstName: "Ana"}, "ana@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	require.NoError(t, a.Logout(context.Background()))
	snap := a.store.Snapshot()
	assert.False(t, snap.Authenticated())
	assert.False(t, snap.Loading)
	assert.ErrorIs(t, a.Library(context.Background()), auth.ErrSignedOut)
}

func TestApp_ChangePassword(t *testing.T) {
	out := captureOutput(t)
	srv := &fakeServer{firstName: "Ana"}
	a := startApp(t, srv, "ana@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	require.NoError(t, a.ChangePassword(context.Background()))
	assert.Equal(t, []string{"s3cret"}, srv.passwords)
	assert.Contains(t, *out, "Senha alterada.")
}

func TestApp_ChangePasswordMismatch(t *testing.T) {
	captureOutput(t)
	srv := &fakeServer{firstName: "Ana"}
	a := startApp(t, srv, "ana@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	typed := []string{"newpass", "typo"}
	readPassword = func(int) ([]byte, error) {
		next := typed[0]
		typed = typed[1:]
		return []byte(next), nil
	}

	assert.ErrorIs(t, a.ChangePassword(context.Background()), errPasswordMismatch)
	assert.Empty(t, srv.passwords)
}

func TestApp_ChangeEmailUpdatesSession(t *testing.T) {
	out := captureOutput(t)
	srv := &fakeServer{firstName: "Ana"}
	a := startApp(t, srv, "ana@example.com\nana.new@example.com\n")
	require.NoError(t, a.Login(context.Background()))

	require.NoError(t, a.ChangeEmail(context.Background()))
	assert.Equal(t, "ana.new@example.com", srv.email)
	snap := a.store.Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "ana.new@example.com", snap.Session.User.Email)
	assert.Equal(t, "Ana", snap.Profile.FullName)
	assert.Contains(t, *out, "E-mail alterado para ana.new@example.com")
}

func TestApp_EditNameUpdatesSessionMetadata(t *testing.T) {
	out := captureOutput(t)
	a := startApp(t, &fakeServer{firstName: "Ana"}, "ana@example.com\nJoana\nSouza\n")
	require.NoError(t, a.Login(context.Background()))

	require.NoError(t, a.EditName(context.Background()))
	sess := a.store.Session()
	require.NotNil(t, sess)
	assert.Equal(t, "Joana", sess.User.Metadata.FirstName)
	assert.Equal(t, "Souza", sess.User.Metadata.LastName)
	assert.Equal(t, "Joana", a.store.Snapshot().Profile.FullName)
	assert.Contains(t, *out, "Dados atualizados: Joana Souza")
}
