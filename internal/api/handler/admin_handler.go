package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palavraviva/study-platform/internal/core/ports"
)

// AdminHandler serves the admin console. Routes must be guarded by
// middleware.RequireAdmin.
type AdminHandler struct {
	service ports.ContentService
}

func NewAdminHandler(service ports.ContentService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListStudies handles GET /v1/admin/studies.
//
// @Summary      All studies, hidden ones included
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Study
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/studies [get]
func (h *AdminHandler) ListStudies(c echo.Context) error {
	studies, err := h.service.ListStudies(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, studies)
}

// GetStudy handles GET /v1/admin/studies/:id.
//
// @Summary      Get a study
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Study id"
// @Success      200  {object}  domain.Study
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/studies/{id} [get]
func (h *AdminHandler) GetStudy(c echo.Context) error {
	s, err := h.service.GetStudy(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// CreateStudy handles POST /v1/admin/studies.
//
// @Summary      Create a study
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      studyRequest  true  "Study"
// @Success      201   {object}  domain.Study
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/studies [post]
func (h *AdminHandler) CreateStudy(c echo.Context) error {
	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req studyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.service.CreateStudy(c.Request().Context(), actorID, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

// UpdateStudy handles PUT /v1/admin/studies/:id.
//
// @Summary      Update a study
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Study id"
// @Param        body  body      studyRequest  true  "Study"
// @Success      200   {object}  domain.Study
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/studies/{id} [put]
func (h *AdminHandler) UpdateStudy(c echo.Context) error {
	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req studyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	s, err := h.service.UpdateStudy(c.Request().Context(), actorID, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// ListChapters handles GET /v1/admin/studies/:id/chapters.
//
// @Summary      Chapters of a study by number
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Study id"
// @Success      200  {array}   domain.Chapter
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/studies/{id}/chapters [get]
func (h *AdminHandler) ListChapters(c echo.Context) error {
	chapters, err := h.service.ListChapters(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chapters)
}

// NextChapterNumber handles GET /v1/admin/studies/:id/chapters/next-number.
//
// @Summary      Suggested number for a new chapter
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Study id"
// @Success      200  {object}  nextChapterNumberResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/studies/{id}/chapters/next-number [get]
func (h *AdminHandler) NextChapterNumber(c echo.Context) error {
	n, err := h.service.NextChapterNumber(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nextChapterNumberResponse{NextChapterNumber: n})
}

// CreateChapter handles POST /v1/admin/studies/:id/chapters.
//
// @Summary      Create a chapter
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Study id"
// @Param        body  body      chapterRequest  true  "Chapter"
// @Success      201   {object}  domain.Chapter
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/studies/{id}/chapters [post]
func (h *AdminHandler) CreateChapter(c echo.Context) error {
	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req chapterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ch, err := h.service.CreateChapter(c.Request().Context(), actorID, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ch)
}

// UpdateChapter handles PUT /v1/admin/chapters/:id.
//
// @Summary      Update a chapter
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Chapter id"
// @Param        body  body      chapterRequest  true  "Chapter"
// @Success      200   {object}  domain.Chapter
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/chapters/{id} [put]
func (h *AdminHandler) UpdateChapter(c echo.Context) error {
	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req chapterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ch, err := h.service.UpdateChapter(c.Request().Context(), actorID, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ch)
}

// AuthorizeUser handles POST /v1/admin/authorized-users.
//
// @Summary      Allow an email to sign up
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      authorizeUserRequest  true  "Email"
// @Success      201   {object}  domain.AuthorizedEmail
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/authorized-users [post]
func (h *AdminHandler) AuthorizeUser(c echo.Context) error {
	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req authorizeUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	added, err := h.service.AuthorizeEmail(c.Request().Context(), actorID, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, added)
}
