// Package di provides dependency injection configuration for the Savour server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/savourapp/savour-server/internal/config"
	"github.com/savourapp/savour-server/internal/di/providers"
	"github.com/savourapp/savour-server/internal/logger"
	"github.com/savourapp/savour-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSessionKey)

	// Storage and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Sessions
	do.Provide(injector, providers.ProvideCookieCodec)
	do.Provide(injector, providers.ProvideSessionManager)

	// Business services
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvidePostService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideSaveService)
	do.Provide(injector, providers.ProvideFeatureService)
	do.Provide(injector, providers.ProvideShaper)
	do.Provide(injector, providers.ProvideValidator)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap triggers lazy initialization of every core service so that
// configuration or storage problems surface at startup.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[providers.SessionKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.UserService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.PostService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.TagService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SaveService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.FeatureService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
