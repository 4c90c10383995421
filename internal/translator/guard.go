package translator

import (
	"strings"

	"github.com/povarna/knowledge-assistant/internal/metrics"
	"github.com/rs/zerolog/log"
)

// retrievalKeyword is the only statement type allowed through the guard.
const retrievalKeyword = "select"

// Guard is the pre-execution gate for generated queries. It is a prefix
// allowlist, not a parser: anything that does not start with the retrieval
// keyword is rejected, including data modification and multi-statement
// payloads that lead with another keyword.
//
// Known limitation: a prefix check alone does not stop injected statement
// chaining inside an otherwise valid SELECT. Hardening this gate means a
// real statement parser plus a referenced-table cross-check against the
// configured allowlist.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Accept reports whether the query may be executed. Rejections are logged
// for audit; the caller treats them as "no query".
func (g *Guard) Accept(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false
	}

	if !strings.HasPrefix(strings.ToLower(trimmed), retrievalKeyword) {
		log.Warn().
			Str("query", truncate(trimmed, 200)).
			Msg("Generated query rejected by guard")
		metrics.GuardRejectionsTotal.Inc()
		return false
	}

	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
