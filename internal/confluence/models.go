package confluence

// SearchResult is one ranked hit from the Confluence search API.
type SearchResult struct {
	Title   string
	Excerpt string
	WebURL  string
}

// Wire format of the Confluence /rest/api/search response. Only the fields
// the assistant reads are mapped.
type searchResponse struct {
	Results []searchResultEntry `json:"results"`
}

type searchResultEntry struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content struct {
		Links struct {
			WebUI string `json:"webui"`
		} `json:"_links"`
	} `json:"content"`
}
