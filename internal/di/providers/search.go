package providers

import (
	"github.com/samber/do/v2"

	"github.com/savourapp/savour-server/internal/config"
	"github.com/savourapp/savour-server/internal/logger"
	"github.com/savourapp/savour-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the post content search index. The post
// service keeps it in sync with writes and rebuilds it at startup.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	idx, err := search.New(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Search index ready")

	return &SearchIndexHandle{Index: idx}, nil
}
