package knowledge

import (
	"context"

	"github.com/povarna/knowledge-assistant/internal/confluence"
	"github.com/povarna/knowledge-assistant/internal/metrics"
	"github.com/povarna/knowledge-assistant/internal/policy"
	"github.com/rs/zerolog/log"
)

// WikiProvider is the external wiki search collaborator.
type WikiProvider interface {
	Search(ctx context.Context, text string, limit int) ([]confluence.SearchResult, error)
}

// WikiSearcher queries the wiki provider and filters every excerpt through
// the content policy before it goes anywhere else.
type WikiSearcher struct {
	provider WikiProvider
	policy   *policy.ContentPolicy
	limit    int
}

func NewWikiSearcher(provider WikiProvider, contentPolicy *policy.ContentPolicy, limit int) *WikiSearcher {
	return &WikiSearcher{
		provider: provider,
		policy:   contentPolicy,
		limit:    limit,
	}
}

// Search returns at most the configured number of excerpts, in the
// provider's ranking order. Excerpts that fail the policy are dropped
// entirely, never partially redacted. A provider failure degrades to an
// empty list.
func (s *WikiSearcher) Search(ctx context.Context, question string) []SourceExcerpt {
	results, err := s.provider.Search(ctx, question, s.limit)
	if err != nil {
		log.Warn().Err(err).Msg("Wiki search failed, continuing without wiki context")
		metrics.WikiSearchFailuresTotal.Inc()
		return nil
	}

	var excerpts []SourceExcerpt
	for _, result := range results {
		if !s.policy.Safe(result.Excerpt) {
			log.Info().Str("title", result.Title).Msg("Wiki excerpt dropped by content policy")
			metrics.PolicyDropsTotal.WithLabelValues("wiki").Inc()
			continue
		}

		excerpts = append(excerpts, SourceExcerpt{
			Title:   result.Title,
			Excerpt: result.Excerpt,
			URL:     result.WebURL,
		})
	}

	return excerpts
}
