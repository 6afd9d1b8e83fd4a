package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/savourapp/savour-server/internal/api"
	"github.com/savourapp/savour-server/internal/config"
	"github.com/savourapp/savour-server/internal/dto"
	"github.com/savourapp/savour-server/internal/logger"
	"github.com/savourapp/savour-server/internal/service"
	"github.com/savourapp/savour-server/internal/session"
	"github.com/savourapp/savour-server/internal/validation"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	apiServer := api.NewServer(
		cfg,
		do.MustInvoke[*service.UserService](i),
		do.MustInvoke[*service.PostService](i),
		do.MustInvoke[*service.TagService](i),
		do.MustInvoke[*service.SaveService](i),
		do.MustInvoke[*service.FeatureService](i),
		do.MustInvoke[*session.Manager](i),
		do.MustInvoke[*dto.Shaper](i),
		do.MustInvoke[*validation.Validator](i),
		log.Logger,
	)

	// Rebuild the search index from the store before taking traffic,
	// so /match never serves from a stale or empty index.
	posts := do.MustInvoke[*service.PostService](i)
	if err := posts.ReindexAll(context.Background()); err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: server, api: apiServer}, nil
}
