package providers

import (
	"github.com/samber/do/v2"

	"github.com/savourapp/savour-server/internal/dto"
	"github.com/savourapp/savour-server/internal/logger"
	"github.com/savourapp/savour-server/internal/service"
	"github.com/savourapp/savour-server/internal/validation"
)

// ProvideUserService provides the user account service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvidePostService provides the post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(storeHandle.Store, searchHandle.Index, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideSaveService provides the save service.
func ProvideSaveService(i do.Injector) (*service.SaveService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSaveService(storeHandle.Store, log.Logger), nil
}

// ProvideFeatureService provides the featured-posts service.
func ProvideFeatureService(i do.Injector) (*service.FeatureService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeatureService(storeHandle.Store, log.Logger), nil
}

// ProvideShaper provides the response shaper.
func ProvideShaper(i do.Injector) (*dto.Shaper, error) {
	users := do.MustInvoke[*service.UserService](i)
	return dto.NewShaper(users), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
