package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/palavraviva/study-platform/internal/api/metrics"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

// LibraryHandler serves the reader-facing study screens.
type LibraryHandler struct {
	service ports.LibraryService
}

func NewLibraryHandler(service ports.LibraryService) *LibraryHandler {
	return &LibraryHandler{service: service}
}

// Discover handles GET /v1/studies.
//
// @Summary      Visible studies not yet in the caller's library
// @Tags         library
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Study
// @Router       /v1/studies [get]
func (h *LibraryHandler) Discover(c echo.Context) error {
	studies, err := h.service.Discover(c.Request().Context(), optionalUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, studies)
}

// Library handles GET /v1/library.
//
// @Summary      Acquired studies with reading progress
// @Tags         library
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.StudyProgress
// @Failure      401  {object}  errorResponse
// @Router       /v1/library [get]
func (h *LibraryHandler) Library(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	lib, err := h.service.Library(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lib)
}

// Acquire handles POST /v1/studies/:id/acquire.
//
// @Summary      Add a study to the caller's library
// @Tags         library
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Study id"
// @Success      201  {object}  domain.Progress
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/studies/{id}/acquire [post]
func (h *LibraryHandler) Acquire(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	p, err := h.service.Acquire(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	metrics.StudiesAcquiredTotal.Inc()
	return c.JSON(http.StatusCreated, p)
}

// CompleteChapter handles POST /v1/chapters/:id/complete.
//
// @Summary      Mark a chapter as completed
// @Tags         library
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Chapter id"
// @Param        body  body      completeChapterRequest  false "Journal notes"
// @Success      200   {object}  domain.Progress
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/chapters/{id}/complete [post]
func (h *LibraryHandler) CompleteChapter(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	var req completeChapterRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	p, err := h.service.CompleteChapter(c.Request().Context(), userID, c.Param("id"), req.Notes)
	if err != nil {
		return err
	}
	metrics.ChaptersCompletedTotal.WithLabelValues(strconv.FormatBool(p.Notes != "")).Inc()
	return c.JSON(http.StatusOK, p)
}
