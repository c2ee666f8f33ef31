package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/feedback/api/http/presenter"
	"github.com/artem13815/feedback/pkg/feedback"
)

type FeedbackHandler struct {
	uc feedback.UseCase
}

func NewFeedbackHandler(uc feedback.UseCase) *FeedbackHandler {
	return &FeedbackHandler{uc: uc}
}

// Pointers distinguish an absent field from an empty string.
type analyzeRequest struct {
	Content *string `json:"content"`
	Context *string `json:"context"`
}

func (r analyzeRequest) missing() []string {
	var out []string
	if r.Content == nil {
		out = append(out, "content")
	}
	if r.Context == nil {
		out = append(out, "context")
	}
	return out
}

// Analyze sends content and context to the LLM and returns its review.
// @Summary Review content with an LLM
// @Tags    feedback
// @Accept  json
// @Produce json
// @Param   input body analyzeRequest true "content to review and its context"
// @Success 200 {object} feedback.Response
// @Failure 422 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Failure 504 {object} presenter.ErrorResponse
// @Router  /analyze [post]
func (h *FeedbackHandler) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return presenter.Error(c, http.StatusUnprocessableEntity, fmt.Sprintf("field %s must be a string", typeErr.Field))
		}
		return presenter.Error(c, http.StatusUnprocessableEntity, "invalid JSON payload")
	}
	if missing := req.missing(); len(missing) > 0 {
		return presenter.Error(c, http.StatusUnprocessableEntity, "missing required fields: "+strings.Join(missing, ", "))
	}

	out, err := h.uc.Analyze(c.UserContext(), feedback.Request{
		Content: *req.Content,
		Context: *req.Context,
	})
	if err != nil {
		if errors.Is(err, feedback.ErrTimeout) {
			return presenter.Error(c, http.StatusGatewayTimeout, err.Error())
		}
		return presenter.Error(c, http.StatusInternalServerError, err.Error())
	}
	return presenter.JSON(c, http.StatusOK, out)
}
