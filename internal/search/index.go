// Package search maintains a Bleve full-text index over post content.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/savourapp/savour-server/internal/domain"
)

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup triggers an automatic rebuild.
const mappingVersion = "1"

// Index wraps a Bleve index of posts.
//
// Thread safety: all public methods are safe for concurrent use. The
// mutex protects against index corruption during rebuild operations.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses stderr if nil)
}

// New creates or opens a post search index. A corrupted or out-of-date
// index is removed and recreated; the store is the source of truth, so
// nothing is lost beyond a reindex.
func New(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(existingVersion) != mappingVersion {
			logger.Info("search index mapping outdated, will rebuild",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		indexMapping, err := buildIndexMapping()
		if err != nil {
			return nil, fmt.Errorf("build index mapping: %w", err)
		}
		index, err = bleve.New(indexPath, indexMapping)
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &Index{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.index.Close()
}

// postDocument is the indexed shape of a post. content_raw holds the
// whole content as one lowercased term so wildcard queries can match
// substrings that cross word boundaries.
type postDocument struct {
	ID         string `json:"id"`
	AuthorID   string `json:"author_id"`
	Content    string `json:"content"`
	ContentRaw string `json:"content_raw"`
}

func (d *postDocument) toMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"author_id":   d.AuthorID,
		"content":     d.Content,
		"content_raw": d.ContentRaw,
	}
}

// IndexPost adds or replaces a post in the index.
func (ix *Index) IndexPost(_ context.Context, post *domain.Post) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	doc := &postDocument{
		ID:         post.ID,
		AuthorID:   post.AuthorID,
		Content:    post.Content,
		ContentRaw: strings.ToLower(post.Content),
	}
	return ix.index.Index(doc.ID, doc.toMap())
}

// DeletePost removes a post from the index.
func (ix *Index) DeletePost(_ context.Context, postID string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.index.Delete(postID)
}

// IndexAll rebuilds index contents from a post listing in one batch.
// Called at startup so the index catches up with any writes it missed.
func (ix *Index) IndexAll(posts []*domain.Post) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	batch := ix.index.NewBatch()
	for _, post := range posts {
		doc := &postDocument{
			ID:         post.ID,
			AuthorID:   post.AuthorID,
			Content:    post.Content,
			ContentRaw: strings.ToLower(post.Content),
		}
		if err := batch.Index(doc.ID, doc.toMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// MatchPosts returns IDs of posts whose content matches the term,
// best matches first. Matching is case-insensitive and includes
// substrings, so "read" finds "proofreading".
func (ix *Index) MatchPosts(ctx context.Context, term string, limit int) ([]string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	// Word-level match for relevance plus a wildcard over the raw
	// content for substring hits.
	matchQuery := bleve.NewMatchQuery(term)
	matchQuery.SetField("content")

	wildcardQuery := bleve.NewWildcardQuery("*" + escapeWildcard(strings.ToLower(term)) + "*")
	wildcardQuery.SetField("content_raw")

	searchQuery := bleve.NewDisjunctionQuery(matchQuery, wildcardQuery)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)

	searchResult, err := ix.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	ids := make([]string, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// escapeWildcard neutralizes wildcard metacharacters in user input.
func escapeWildcard(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "*", `\*`)
	s = strings.ReplaceAll(s, "?", `\?`)
	return s
}

const rawAnalyzerName = "content_raw"

func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	// Whole-content-as-one-term analyzer for substring wildcards.
	err := indexMapping.AddCustomAnalyzer(rawAnalyzerName, map[string]any{
		"type":      custom.Name,
		"tokenizer": single.Name,
		"token_filters": []string{
			lowercase.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("register raw analyzer: %w", err)
	}

	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = en.AnalyzerName
	contentFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	rawFieldMapping := bleve.NewTextFieldMapping()
	rawFieldMapping.Analyzer = rawAnalyzerName
	rawFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("content_raw", rawFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("author_id", authorFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping, nil
}
