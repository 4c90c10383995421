package knowledge

// SourceExcerpt is one wiki search hit that survived the content policy.
type SourceExcerpt struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url"`
}

// Record is one database row that survived the content policy, keyed by
// column name. A record is atomic with respect to the policy: either every
// field passed, or the whole record was dropped.
type Record map[string]any
