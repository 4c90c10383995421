package api

import (
	"github.com/povarna/knowledge-assistant/internal/middleware"
)

type AskRequest struct {
	Question string `json:"question" description:"The natural-language question to answer"`
}

type AskResponse struct {
	Answer  string   `json:"answer" description:"The synthesized answer"`
	Sources []string `json:"sources" description:"Knowledge sources that contributed"`
}

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}

func (r *AskRequest) Validate() error {
	if r.Question == "" {
		return middleware.ErrEmptyQuestion
	}
	return nil
}
