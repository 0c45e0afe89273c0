package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Harin-6044/Resume-Shortlister/internal/services"
)

// resumeFields are the multipart keys resumes may be sent under.
var resumeFields = []string{"resumes", "resumes[]"}

func resumeHeaders(form *multipart.Form) []*multipart.FileHeader {
	var headers []*multipart.FileHeader
	for _, field := range resumeFields {
		headers = append(headers, form.File[field]...)
	}
	return headers
}

// readResumes loads every uploaded resume into memory after checking count and size.
func readResumes(headers []*multipart.FileHeader, maxFiles int, maxFileSize int64) ([]services.ResumeFile, error) {
	if len(headers) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "at least one resume is required in the 'resumes' field")
	}
	if maxFiles > 0 && len(headers) > maxFiles {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("too many resumes. Max files: %d", maxFiles))
	}

	resumes := make([]services.ResumeFile, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxFileSize {
			return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
				fmt.Sprintf("%s is too large. Max size: %d bytes", header.Filename, maxFileSize))
		}

		data, err := readFile(header)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, services.ResumeFile{FileName: header.Filename, Data: data})
	}

	return resumes, nil
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

// errorResponse writes the {"error": ...} body used by every endpoint.
func errorResponse(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	var fiberErr *fiber.Error
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.As(err, &validationErrs):
		code = fiber.StatusBadRequest
		message = validationMessage(validationErrs)
	case errors.Is(err, services.ErrEmptyJobDescription),
		errors.Is(err, services.ErrNoResumes),
		errors.Is(err, services.ErrTooManyResumes),
		errors.Is(err, services.ErrUnsupportedFormat):
		code = fiber.StatusBadRequest
	case errors.Is(err, services.ErrSearchDisabled):
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

func validationMessage(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := toSnakeCase(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(messages, "; ")
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
