package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palavraviva/study-platform/internal/api/metrics"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func countAuth(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.AuthEventsTotal.WithLabelValues(action, result).Inc()
}

// SignUp creates an account for an allow-listed email.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Sign-up details"
// @Success      201   {object}  signUpResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	countAuth("signup", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, signUpResponse{User: user})
}

// Login authenticates a user and returns a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.Session
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	countAuth("login", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

// Refresh exchanges a refresh token for a new session.
//
// @Summary      Refresh session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  domain.Session
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	countAuth("refresh", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

// Logout revokes a refresh token.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Param        body  body  refreshRequest  true  "Refresh token"
// @Success      204
// @Failure      422   {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.authService.SignOut(c.Request().Context(), req.RefreshToken)
	countAuth("logout", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateUser changes the caller's email and/or password.
//
// @Summary      Change email or password
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      updateUserRequest  true  "New email and/or password"
// @Success      200   {object}  signUpResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/user [put]
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Email == nil && req.Password == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "email or password is required")
	}

	user, err := h.authService.UpdateUser(c.Request().Context(), userID, ports.UserUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	countAuth("update_user", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signUpResponse{User: user})
}
