package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/compliance-readiness/internal/services"
)

// uploadField is the multipart field carrying applicant documents.
const uploadField = "files"

// formUploads returns the validated files of the multipart request.
func formUploads(c *fiber.Ctx, maxFileSize int64) ([]*multipart.FileHeader, *fiber.Error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "failed to parse multipart form")
	}

	files := form.File[uploadField]
	if len(files) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("no files uploaded. Please upload one or more documents as '%s'", uploadField))
	}

	for _, file := range files {
		if file.Size > maxFileSize {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is too large. Max size: %d bytes", file.Filename, maxFileSize))
		}
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !services.AllowedExtensions[ext] {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s has an unsupported type. Allowed: .pdf, .docx, .txt", file.Filename))
		}
	}

	return files, nil
}

func readUploads(files []*multipart.FileHeader) ([]services.SourceFile, error) {
	sources := make([]services.SourceFile, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file.Filename, err)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.Filename, err)
		}
		sources = append(sources, services.SourceFile{Name: file.Filename, Data: data})
	}
	return sources, nil
}

func sendError(c *fiber.Ctx, err *fiber.Error) error {
	return c.Status(err.Code).JSON(fiber.Map{
		"error": err.Message,
	})
}
