package visit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dencare/dencare/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	v := api.Group("/visits")
	v.POST("/general", h.CreateGeneral)
	v.POST("/follow-up", h.CreateFollowUp)
	v.PUT("/general/:id", h.ReplaceGeneral)
	v.PUT("/follow-up/:id", h.ReplaceFollowUp)
	v.PATCH("/general/:id", h.PatchGeneral)
	v.PATCH("/follow-up/:id", h.PatchFollowUp)
	v.GET("/patient/:patientId", h.ListForPatient)
	v.GET("/:id", h.GetVisit)
	v.DELETE("/:id", h.DeleteVisit)
	v.POST("/:id/media", h.UploadMedia)
	v.DELETE("/:visitId/media/:mediaId", h.DeleteMedia)

	ortho := api.Group("/orthodontic")
	ortho.POST("/plan", h.CreateOrthodonticPlan)
	ortho.POST("/treatment", h.AddOrthodonticTreatment)

	rc := api.Group("/root-canal")
	rc.POST("/plan", h.CreateRootCanalPlan)
	rc.POST("/procedure", h.AddRootCanalProcedure)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func (h *Handler) CreateGeneral(c echo.Context) error {
	var input GeneralVisitInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	v, err := h.svc.CreateGeneral(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) CreateFollowUp(c echo.Context) error {
	var input FollowUpVisitInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	v, err := h.svc.CreateFollowUp(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) replace(c echo.Context, visitType string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var input ReplaceInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	v, err := h.svc.Replace(c.Request().Context(), id, visitType, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ReplaceGeneral(c echo.Context) error  { return h.replace(c, TypeGeneral) }
func (h *Handler) ReplaceFollowUp(c echo.Context) error { return h.replace(c, TypeFollowUp) }

func (h *Handler) patch(c echo.Context, visitType string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var input ScalarPatch
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	v, err := h.svc.Patch(c.Request().Context(), id, visitType, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) PatchGeneral(c echo.Context) error  { return h.patch(c, TypeGeneral) }
func (h *Handler) PatchFollowUp(c echo.Context) error { return h.patch(c, TypeFollowUp) }

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := pathID(c, "patientId")
	if err != nil {
		return err
	}
	visits, err := h.svc.ListForPatient(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, visits)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVisit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type uploadResponse struct {
	Count       int               `json:"count"`
	Attachments []MediaAttachment `json:"attachments"`
}

func (h *Handler) UploadMedia(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return apperr.Validation("invalid multipart form")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return apperr.Validation("no files uploaded")
	}

	files := make([]UploadFile, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return apperr.Internal("open upload", err)
		}
		defer src.Close()
		files = append(files, UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     src,
		})
	}

	count, attachments, err := h.svc.UploadMedia(c.Request().Context(), id, files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, uploadResponse{Count: count, Attachments: attachments})
}

func (h *Handler) DeleteMedia(c echo.Context) error {
	visitID, err := pathID(c, "visitId")
	if err != nil {
		return err
	}
	mediaID, err := pathID(c, "mediaId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMedia(c.Request().Context(), visitID, mediaID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateOrthodonticPlan(c echo.Context) error {
	var input OrthodonticPlanInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	v, err := h.svc.CreateOrthodonticPlan(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) AddOrthodonticTreatment(c echo.Context) error {
	var input OrthodonticTreatmentInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	t, err := h.svc.AddOrthodonticTreatment(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) CreateRootCanalPlan(c echo.Context) error {
	var input RootCanalPlanInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	v, err := h.svc.CreateRootCanalPlan(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) AddRootCanalProcedure(c echo.Context) error {
	var input RootCanalProcedureInput
	if err := c.Bind(&input); err != nil {
		return apperr.Validation("invalid request body")
	}
	p, err := h.svc.AddRootCanalProcedure(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}
