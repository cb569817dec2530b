package consultation

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oncoscribe/oncoscribe/internal/platform/schema"
)

type Handler struct {
	svc *Service
	dev bool
}

// NewHandler builds the HTTP surface for the pipeline. In dev mode failure
// responses carry the violation list and raw model output; in production they
// carry only the kind and a summary message.
func NewHandler(svc *Service, dev bool) *Handler {
	return &Handler{svc: svc, dev: dev}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/consultations/generate", h.Generate)
	api.POST("/consultations/validate", h.Validate)
	api.GET("/schema", h.Schema)
}

type errorBody struct {
	Kind       Kind               `json:"kind"`
	Message    string             `json:"message"`
	Violations []schema.Violation `json:"violations,omitempty"`
	RawText    string             `json:"raw_text,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (h *Handler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    KindInput,
			Message: "request body must be a JSON object with a prompt field",
		}})
	}

	html, err := h.svc.Generate(c.Request().Context(), req.Prompt)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.HTMLBlob(http.StatusOK, html)
}

type validateResponse struct {
	Valid      bool               `json:"valid"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

func (h *Handler) Validate(c echo.Context) error {
	var req ValidateRequest
	if err := c.Bind(&req); err != nil || req.Record == nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    KindInput,
			Message: "request body must be a JSON object with a record field",
		}})
	}

	violations := h.svc.Validate(req.Record)
	return c.JSON(http.StatusOK, validateResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}

func (h *Handler) Schema(c echo.Context) error {
	return c.JSONBlob(http.StatusOK, h.svc.Schema())
}

func (h *Handler) writeError(c echo.Context, err error) error {
	var perr *PipelineError
	if !errors.As(err, &perr) {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	body := errorBody{Kind: perr.Kind, Message: perr.Message}
	if h.dev {
		body.Violations = perr.Violations
		body.RawText = perr.RawText
	}
	return c.JSON(perr.HTTPStatus(), errorResponse{Error: body})
}
