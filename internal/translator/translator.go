package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/knowledge-assistant/internal/llm"
	"github.com/povarna/knowledge-assistant/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Translator turns a natural-language question into a single SQL query
// restricted to the allowed tables. It does not judge the safety of the
// generated statement; that is the Guard's job.
type Translator struct {
	client    llm.Client
	maxTokens int
}

func New(client llm.Client, maxTokens int) *Translator {
	return &Translator{
		client:    client,
		maxTokens: maxTokens,
	}
}

// Translate returns the generated query, trimmed of surrounding
// whitespace. An empty or failed completion yields an empty string, which
// callers treat as "no query" rather than an error.
func (t *Translator) Translate(ctx context.Context, question string, allowedTables []string) string {
	prompt := t.buildPrompt(question, allowedTables)

	response, err := t.client.Complete(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   t.maxTokens,
		Temperature: 0.0, // Deterministic
	})
	if err != nil {
		log.Warn().Err(err).Msg("Query translation failed, continuing without database lookup")
		metrics.TranslationFailuresTotal.Inc()
		return ""
	}

	query := strings.TrimSpace(response.Content)
	if query == "" {
		metrics.TranslationFailuresTotal.Inc()
		return ""
	}

	log.Info().
		Str("question", question).
		Str("query", query).
		Msg("Query translated")

	return query
}

func (t *Translator) buildPrompt(question string, allowedTables []string) string {
	return fmt.Sprintf(`Convert this question to a safe SQL query that only uses SELECT statements and the following tables: %s
Question: %s
SQL:`, strings.Join(allowedTables, ", "), question)
}
