package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

type stubProfileService struct {
	record     *domain.ProfileRecord
	membership *domain.AdminMembership
	err        error

	names    [2]string
	answers  map[string]json.RawMessage
	identity domain.Identity
}

func (s *stubProfileService) GetProfile(context.Context, string) (*domain.ProfileRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubProfileService) GetMembership(context.Context, string) (*domain.AdminMembership, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.membership, nil
}

func (s *stubProfileService) PersonalData(_ context.Context, identity domain.Identity) (*ports.PersonalData, error) {
	s.identity = identity
	if s.err != nil {
		return nil, s.err
	}
	return &ports.PersonalData{FirstName: identity.Metadata.FirstName, Gender: "Feminino"}, nil
}

func (s *stubProfileService) UpdateName(_ context.Context, _ string, first, last string) error {
	s.names = [2]string{first, last}
	return s.err
}

func (s *stubProfileService) CompleteOnboarding(_ context.Context, _ string, answers map[string]json.RawMessage) error {
	s.answers = answers
	return s.err
}

type stubUserFinder struct{}

func (stubUserFinder) FindByID(_ context.Context, id string) (*domain.User, error) {
	if id != "u1" {
		return nil, domain.ErrUserNotFound
	}
	return &domain.User{ID: "u1", Email: "ana@example.com", Metadata: domain.IdentityMetadata{FirstName: "Ana"}}, nil
}

func TestProfileHandler_Get(t *testing.T) {
	first := "Ana"
	h := NewProfileHandler(&stubProfileService{record: &domain.ProfileRecord{ID: "u1", FirstName: &first}}, stubUserFinder{})

	c, rec := newContext(http.MethodGet, "/v1/profile", "", "u1")
	if err := h.Get(c); err != nil {
		t.Fatalf("Get: %v", err)
	}
	var body domain.ProfileRecord
	decode(t, rec, &body)
	if body.FirstName == nil || *body.FirstName != "Ana" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestProfileHandler_Get_NotFound(t *testing.T) {
	h := NewProfileHandler(&stubProfileService{err: domain.ErrProfileNotFound}, stubUserFinder{})

	c, _ := newContext(http.MethodGet, "/v1/profile", "", "u1")
	if err := h.Get(c); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileHandler_RequiresCaller(t *testing.T) {
	h := NewProfileHandler(&stubProfileService{}, stubUserFinder{})

	c, _ := newContext(http.MethodGet, "/v1/profile", "", "")
	if err := h.Get(c); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestProfileHandler_UpdateName(t *testing.T) {
	svc := &stubProfileService{}
	h := NewProfileHandler(svc, stubUserFinder{})

	c, rec := newContext(http.MethodPut, "/v1/profile", `{"first_name":"Ana","last_name":"Silva"}`, "u1")
	if err := h.UpdateName(c); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if rec.Code != http.StatusNoContent || svc.names != [2]string{"Ana", "Silva"} {
		t.Fatalf("unexpected result %d %v", rec.Code, svc.names)
	}

	c, _ = newContext(http.MethodPut, "/v1/profile", `{"last_name":"Silva"}`, "u1")
	if err := h.UpdateName(c); statusOf(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestProfileHandler_CompleteOnboarding(t *testing.T) {
	svc := &stubProfileService{}
	h := NewProfileHandler(svc, stubUserFinder{})

	c, rec := newContext(http.MethodPost, "/v1/onboarding", `{"answers":{"q1_age":30,"q7":["paz"]}}`, "u1")
	if err := h.CompleteOnboarding(c); err != nil {
		t.Fatalf("CompleteOnboarding: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if string(svc.answers["q7"]) != `["paz"]` {
		t.Fatalf("answers not forwarded: %v", svc.answers)
	}

	c, _ = newContext(http.MethodPost, "/v1/onboarding", `{}`, "u1")
	if err := h.CompleteOnboarding(c); statusOf(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing answers, got %v", err)
	}
}

func TestProfileHandler_PersonalData(t *testing.T) {
	svc := &stubProfileService{}
	h := NewProfileHandler(svc, stubUserFinder{})

	c, rec := newContext(http.MethodGet, "/v1/personal-data", "", "u1")
	if err := h.PersonalData(c); err != nil {
		t.Fatalf("PersonalData: %v", err)
	}
	if svc.identity.Email != "ana@example.com" {
		t.Fatalf("identity not resolved: %+v", svc.identity)
	}
	var body ports.PersonalData
	decode(t, rec, &body)
	if body.FirstName != "Ana" || body.Gender != "Feminino" {
		t.Fatalf("unexpected body: %+v", body)
	}

	c, _ = newContext(http.MethodGet, "/v1/personal-data", "", "ghost")
	if err := h.PersonalData(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProfileHandler_Membership(t *testing.T) {
	h := NewProfileHandler(&stubProfileService{membership: &domain.AdminMembership{ID: "m1", UserID: "u1"}}, stubUserFinder{})

	c, rec := newContext(http.MethodGet, "/v1/admin-membership", "", "u1")
	if err := h.Membership(c); err != nil {
		t.Fatalf("Membership: %v", err)
	}
	var body domain.AdminMembership
	decode(t, rec, &body)
	if body.UserID != "u1" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	h = NewProfileHandler(&stubProfileService{err: domain.ErrMembershipNotFound}, stubUserFinder{})
	c, _ = newContext(http.MethodGet, "/v1/admin-membership", "", "u1")
	if err := h.Membership(c); !errors.Is(err, domain.ErrMembershipNotFound) {
		t.Fatalf("expected ErrMembershipNotFound, got %v", err)
	}
}
