package api

import (
	"context"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/knowledge-assistant/internal/answer"
	"github.com/povarna/knowledge-assistant/internal/middleware"
	"github.com/rs/zerolog/log"
)

// Answerer produces the composed answer for one question.
type Answerer interface {
	Compose(ctx context.Context, question string) (answer.Answer, error)
}

type Handler struct {
	answerer Answerer
	timeout  time.Duration
}

func NewHandler(answerer Answerer, timeout time.Duration) *Handler {
	return &Handler{
		answerer: answerer,
		timeout:  timeout,
	}
}

// Ask handles POST /api/v1/ask
func (h *Handler) Ask(req *restful.Request, resp *restful.Response) {
	var askRequest AskRequest

	if err := req.ReadEntity(&askRequest); err != nil {
		log.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := askRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	log.Info().
		Str("question", askRequest.Question).
		Msg("Process question")

	ctx, cancel := context.WithTimeout(req.Request.Context(), h.timeout)
	defer cancel()

	composed, err := h.answerer.Compose(ctx, askRequest.Question)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compose answer")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, AskResponse{
		Answer:  composed.Text,
		Sources: composed.Sources,
	})
}

// Health handles GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
