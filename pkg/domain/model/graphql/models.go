package graphql

// Article is the GraphQL projection of a stored or freshly crawled article.
// Every field is non-null; missing metadata is rendered as an empty string.
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Date    string `json:"date"`
}

// QueryResponse is the answer to queryNews and summarizeArticle
type QueryResponse struct {
	Answer  string     `json:"answer"`
	Sources []*Article `json:"sources"`
}
