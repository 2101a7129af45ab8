package ranking_client

const (
	// BestAvailableEndpoint takes draft and team ids.
	BestAvailableEndpoint = "/v1/drafts/%s/teams/%s/best-available"
	// NeedsEndpoint takes draft and team ids.
	NeedsEndpoint = "/v1/drafts/%s/teams/%s/needs"

	APIKeyHeader = "X-API-Key"
)
