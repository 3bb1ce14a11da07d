package handlers

import (
	"errors"
	"io"
	"strconv"

	"qrmenu/internal/apperrors"
	"qrmenu/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// maxUploadBytes caps how much of a multipart file is read into memory.
// The asset service applies the per-kind limits.
const maxUploadBytes = 10<<20 + 1

// fileFrom reads the multipart file in field. A request without that file
// yields nil.
func fileFrom(c *fiber.Ctx, field string) (*services.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, badBody(err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, badBody(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, badBody(err)
	}
	return &services.File{Filename: header.Filename, Data: data}, nil
}

// requireFile is fileFrom for routes where the file is mandatory.
func requireFile(c *fiber.Ctx, field string) (*services.File, error) {
	file, err := fileFrom(c, field)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.Validation(field, "required")
	}
	return file, nil
}

func intParam(c *fiber.Ctx, name string) (int, error) {
	n, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, apperrors.Validation(name, "integer")
	}
	return n, nil
}
