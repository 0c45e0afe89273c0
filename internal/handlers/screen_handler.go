package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Harin-6044/Resume-Shortlister/internal/models"
	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

type ScreenHandler struct {
	screener    services.Screener
	maxFiles    int
	maxFileSize int64
}

func NewScreenHandler(screener services.Screener, maxFiles int, maxFileSize int64) *ScreenHandler {
	return &ScreenHandler{
		screener:    screener,
		maxFiles:    maxFiles,
		maxFileSize: maxFileSize,
	}
}

// HandleScreen handles POST /screen. Nothing uploaded here is stored.
func (h *ScreenHandler) HandleScreen(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorResponse(c, fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form"))
	}

	req := models.ScreenRequest{
		JobDescription: strings.TrimSpace(c.FormValue("job_description")),
	}
	if err := req.Validate(); err != nil {
		return errorResponse(c, err)
	}

	resumes, err := readResumes(resumeHeaders(form), h.maxFiles, h.maxFileSize)
	if err != nil {
		return errorResponse(c, err)
	}

	report, err := h.screener.Screen(c.UserContext(), services.ScreenRequest{
		JobDescription: req.JobDescription,
		Resumes:        resumes,
	}, nil)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(report)
}
