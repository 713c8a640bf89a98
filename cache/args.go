package cache

// Tool names served by the documentation lookup plugin.
const (
	ToolResolveLibraryID = "resolve_library_id"
	ToolQueryDocs        = "query_docs"
	ToolClearCache       = "clear_cache"
)

// Response formats accepted by query_docs.
const (
	QueryDocsTypeJSON = "json"
	QueryDocsTypeText = "text"
)

// Fingerprinter lets an argument record choose the value that is hashed into
// its cache key. Fields that do not change the upstream answer, such as
// credentials, stay out of the fingerprint.
type Fingerprinter interface {
	CacheFingerprint() any
}

// ResolveLibraryIDArgs are the arguments of resolve_library_id.
type ResolveLibraryIDArgs struct {
	LibraryName string `json:"libraryName"`
	Query       string `json:"query"`
	APIKey      string `json:"context7ApiKey,omitempty"`
}

// CacheFingerprint implements Fingerprinter.
func (a ResolveLibraryIDArgs) CacheFingerprint() any {
	return struct {
		LibraryName string `json:"libraryName"`
		Query       string `json:"query"`
	}{a.LibraryName, a.Query}
}

// QueryDocsArgs are the arguments of query_docs.
type QueryDocsArgs struct {
	LibraryID string `json:"libraryId"`
	Query     string `json:"query"`
	Type      string `json:"type,omitempty"`
	APIKey    string `json:"context7ApiKey,omitempty"`
}

// Normalize fills defaults so that equivalent calls share one entry.
func (a QueryDocsArgs) Normalize() QueryDocsArgs {
	if a.Type == "" {
		a.Type = QueryDocsTypeJSON
	}
	return a
}

// CacheFingerprint implements Fingerprinter.
func (a QueryDocsArgs) CacheFingerprint() any {
	n := a.Normalize()
	return struct {
		LibraryID string `json:"libraryId"`
		Query     string `json:"query"`
		Type      string `json:"type"`
	}{n.LibraryID, n.Query, n.Type}
}

// ClearCacheArgs are the (empty) arguments of clear_cache.
type ClearCacheArgs struct{}

var (
	_ Fingerprinter = ResolveLibraryIDArgs{}
	_ Fingerprinter = QueryDocsArgs{}
)
