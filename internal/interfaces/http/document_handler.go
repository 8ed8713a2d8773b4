package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/audit-portal-api/internal/application/documents"
	"github.com/jhoicas/audit-portal-api/internal/application/dto"
)

// DocumentService lo implementa *documents.UseCase.
type DocumentService interface {
	ListCategories(ctx context.Context, projectID string, availableOnly bool) ([]dto.CategoryResponse, error)
	ListFiles(ctx context.Context, projectID string) ([]dto.FileResponse, error)
	Upload(ctx context.Context, in documents.UploadInput) (*dto.UploadResponse, error)
	FileURL(ctx context.Context, projectID, blobPath string) (*dto.FileURLResponse, error)
}

// DocumentHandler solicitudes de documentos y archivos del proyecto seleccionado.
type DocumentHandler struct {
	uc DocumentService
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc DocumentService) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// Categories godoc
// @Summary      Documentos solicitados del proyecto
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        availableOnly  query  string  false  "1: solo los que aún admiten archivos"
// @Success      200  {array}   dto.CategoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/categories [get]
func (h *DocumentHandler) Categories(c *fiber.Ctx) error {
	availableOnly := c.QueryBool("availableOnly", false)
	out, err := h.uc.ListCategories(c.UserContext(), GetProjectID(c), availableOnly)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Files godoc
// @Summary      Archivos recibidos del proyecto
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.FileResponse
// @Router       /api/files [get]
func (h *DocumentHandler) Files(c *fiber.Ctx) error {
	out, err := h.uc.ListFiles(c.UserContext(), GetProjectID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Upload godoc
// @Summary      Subir un archivo para una o varias solicitudes
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file        formData  file    true  "archivo"
// @Param        categories  formData  string  true  "nombre de la solicitud (repetible)"
// @Param        filetypes   formData  string  true  "tipo de archivo (repetible)"
// @Success      201  {object}  dto.UploadResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/files/upload [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return abort(c, fiber.StatusBadRequest, "VALIDATION", "file es requerido", err)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return badBody(c, err)
	}
	f, err := fh.Open()
	if err != nil {
		return badBody(c, err)
	}
	defer f.Close()

	out, err := h.uc.Upload(c.UserContext(), documents.UploadInput{
		ProjectID:   GetProjectID(c),
		UserID:      GetUserID(c),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
		Categories:  form.Value["categories"],
		FileTypes:   form.Value["filetypes"],
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// FileURL godoc
// @Summary      URL firmada de descarga
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        blobPath  query  string  true  "ruta devuelta por /api/files"
// @Success      200  {object}  dto.FileURLResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/files/url [get]
func (h *DocumentHandler) FileURL(c *fiber.Ctx) error {
	out, err := h.uc.FileURL(c.UserContext(), GetProjectID(c), c.Query("blobPath"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
