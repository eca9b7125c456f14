package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

// UserFinder resolves the caller's identity for the personal-data view.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// ProfileHandler serves the caller's profile row, admin membership and the
// profile save actions.
type ProfileHandler struct {
	service ports.ProfileService
	users   UserFinder
}

func NewProfileHandler(service ports.ProfileService, users UserFinder) *ProfileHandler {
	return &ProfileHandler{service: service, users: users}
}

// Get handles GET /v1/profile.
//
// @Summary      Get the caller's profile row
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ProfileRecord
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	rec, err := h.service.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// UpdateName handles PUT /v1/profile.
//
// @Summary      Update first and last name
// @Tags         profile
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  updateNameRequest  true  "Names"
// @Success      204
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/profile [put]
func (h *ProfileHandler) UpdateName(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req updateNameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.UpdateName(c.Request().Context(), userID, req.FirstName, req.LastName); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteOnboarding handles POST /v1/onboarding.
//
// @Summary      Store onboarding quiz answers
// @Tags         profile
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  onboardingRequest  true  "Quiz answers keyed by question id"
// @Success      204
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/onboarding [post]
func (h *ProfileHandler) CompleteOnboarding(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req onboardingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.CompleteOnboarding(c.Request().Context(), userID, req.Answers); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PersonalData handles GET /v1/personal-data.
//
// @Summary      Names, age and gender of the caller
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.PersonalData
// @Failure      401  {object}  errorResponse
// @Router       /v1/personal-data [get]
func (h *ProfileHandler) PersonalData(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	user, err := h.users.FindByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	data, err := h.service.PersonalData(c.Request().Context(), user.Identity())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

// Membership handles GET /v1/admin-membership.
//
// @Summary      Admin allow-list row of the caller
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AdminMembership
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin-membership [get]
func (h *ProfileHandler) Membership(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	m, err := h.service.GetMembership(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}
