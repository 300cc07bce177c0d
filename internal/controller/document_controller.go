package controller

import (
	"errors"
	"io"

	"ca-assistant-be/internal/dto"
	"ca-assistant-be/internal/pkg/serverutils"
	"ca-assistant-be/internal/service"
	"ca-assistant-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Post("/documents", c.Upload)
	r.Get("/documents", c.List)
	r.Delete("/documents/:id", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	// Parse Multipart Form
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing file"))
	}

	sessionID := ctx.FormValue("session_id")

	// Open file
	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to open file"))
	}
	defer file.Close()

	// Read content
	content, err := io.ReadAll(file)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to read file"))
	}

	res, err := c.documentService.Upload(ctx.Context(), sessionID, fileHeader.Filename, content)
	if err != nil {
		var unsupported *extract.UnsupportedTypeError
		if errors.As(err, &unsupported) {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		}
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Document processed", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	sessionID := ctx.Query("session_id")
	if sessionID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing session_id"))
	}

	res, err := c.documentService.List(sessionID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	documentID := ctx.Params("id")
	sessionID := ctx.Query("session_id")
	if sessionID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing session_id"))
	}

	err := c.documentService.Delete(sessionID, documentID)
	if err != nil {
		var missingSession *dto.SessionNotFoundError
		var missingDoc *dto.DocumentNotFoundError
		if errors.As(err, &missingSession) || errors.As(err, &missingDoc) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Document deleted", nil))
}
