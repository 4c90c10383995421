package answer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/povarna/knowledge-assistant/internal/knowledge"
	"github.com/povarna/knowledge-assistant/internal/llm"
	"github.com/povarna/knowledge-assistant/internal/metrics"
	"github.com/povarna/knowledge-assistant/internal/policy"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	wikiSourceLabel     = "Confluence"
	databaseSourceLabel = "internal database"

	// refusalText replaces a synthesized answer that itself trips the
	// content policy, even though every fragment fed to the model was
	// pre-filtered.
	refusalText = "I found relevant information, but I can't share it because it contains sensitive content."
)

// SourceSearcher yields filtered wiki excerpts for a question.
type SourceSearcher interface {
	Search(ctx context.Context, question string) []knowledge.SourceExcerpt
}

// RecordSource yields filtered database records for a question.
type RecordSource interface {
	Search(ctx context.Context, question string) []knowledge.Record
}

// Answer is the final composed reply.
type Answer struct {
	Text    string
	Sources []string
}

// Composer fans out to both knowledge sources, synthesizes one answer from
// the surviving results and attributes the sources that contributed.
type Composer struct {
	wiki      SourceSearcher
	records   RecordSource
	client    llm.Client
	policy    *policy.ContentPolicy
	maxTokens int
}

func NewComposer(
	wiki SourceSearcher,
	records RecordSource,
	client llm.Client,
	contentPolicy *policy.ContentPolicy,
	maxTokens int,
) *Composer {
	return &Composer{
		wiki:      wiki,
		records:   records,
		client:    client,
		policy:    contentPolicy,
		maxTokens: maxTokens,
	}
}

// Compose answers the question from both sources. The two lookups are
// independent and run concurrently; neither can fail the other since both
// degrade to an empty contribution on their own. Only a synthesis failure
// surfaces as an error.
func (c *Composer) Compose(ctx context.Context, question string) (Answer, error) {
	var (
		excerpts []knowledge.SourceExcerpt
		records  []knowledge.Record
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		excerpts = c.wiki.Search(groupCtx, question)
		return nil
	})
	group.Go(func() error {
		records = c.records.Search(groupCtx, question)
		return nil
	})
	_ = group.Wait()

	prompt := c.buildSynthesisPrompt(question, excerpts, records)

	response, err := c.client.Complete(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		metrics.SynthesisFailuresTotal.Inc()
		return Answer{}, fmt.Errorf("answer synthesis failed: %w", err)
	}

	text := strings.TrimSpace(response.Content)

	// The model can echo sensitive fragments even though its context was
	// pre-filtered, so the final text gets its own policy pass.
	if !c.policy.Safe(text) {
		log.Warn().Str("question", question).Msg("Synthesized answer dropped by content policy")
		metrics.PolicyDropsTotal.WithLabelValues("answer").Inc()
		return Answer{Text: refusalText}, nil
	}

	var sources []string
	if len(excerpts) > 0 {
		sources = append(sources, wikiSourceLabel)
	}
	if len(records) > 0 {
		sources = append(sources, databaseSourceLabel)
	}

	if len(sources) > 0 {
		text += fmt.Sprintf("\n\nSources: %s", strings.Join(sources, " and "))
	}

	return Answer{
		Text:    text,
		Sources: sources,
	}, nil
}

func (c *Composer) buildSynthesisPrompt(question string, excerpts []knowledge.SourceExcerpt, records []knowledge.Record) string {
	wikiSection := "No relevant wiki content found.\n"
	if len(excerpts) > 0 {
		var wb strings.Builder
		for i, excerpt := range excerpts {
			wb.WriteString(fmt.Sprintf("[%d] %s\n%s\n(%s)\n\n", i+1, excerpt.Title, excerpt.Excerpt, excerpt.URL))
		}
		wikiSection = wb.String()
	}

	dbSection := "No relevant database records found.\n"
	if len(records) > 0 {
		var db strings.Builder
		for i, record := range records {
			db.WriteString(fmt.Sprintf("[%d] %s\n", i+1, formatRecord(record)))
		}
		dbSection = db.String()
	}

	return fmt.Sprintf(`Information from Confluence:
%s
Information from Database:
%s
Based on the above information, please provide a helpful and accurate response.
Question: %s
Answer:`, wikiSection, dbSection, question)
}

// Columns are sorted so the same record always renders the same prompt.
func formatRecord(record knowledge.Record) string {
	columns := make([]string, 0, len(record))
	for column := range record {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	pairs := make([]string, 0, len(columns))
	for _, column := range columns {
		pairs = append(pairs, fmt.Sprintf("%s: %v", column, record[column]))
	}
	return strings.Join(pairs, ", ")
}
