package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/core/domain"
)

func render(t *testing.T, err error, log zerolog.Logger) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/library", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(log)(err, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrStudyNotFound, http.StatusNotFound},
		{domain.ErrProfileNotFound, http.StatusNotFound},
		{domain.ErrMembershipNotFound, http.StatusNotFound},
		{domain.ErrSignupNotAllowed, http.StatusForbidden},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrAlreadyAcquired, http.StatusConflict},
		{domain.ErrAlreadyAuthorized, http.StatusConflict},
		{domain.ErrNoChapters, http.StatusUnprocessableEntity},
		{domain.ErrNotAcquired, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("acquire study: %w", tc.err)
		code, body := render(t, wrapped, zerolog.Nop())
		if code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, code)
		}
		if body.Error != tc.err.Error() {
			t.Errorf("%v: expected message %q, got %q", tc.err, tc.err.Error(), body.Error)
		}
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	code, body := render(t, echo.NewHTTPError(http.StatusUnprocessableEntity, "title is required"), zerolog.Nop())
	if code != http.StatusUnprocessableEntity || body.Error != "title is required" {
		t.Fatalf("unexpected response %d %+v", code, body)
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsHidden(t *testing.T) {
	var buf bytes.Buffer
	code, body := render(t, errors.New("mongo: connection reset"), zerolog.New(&buf))

	if code != http.StatusInternalServerError || body.Error != "internal server error" {
		t.Fatalf("unexpected response %d %+v", code, body)
	}
	if !strings.Contains(buf.String(), "connection reset") {
		t.Fatalf("cause not logged: %s", buf.String())
	}
}
