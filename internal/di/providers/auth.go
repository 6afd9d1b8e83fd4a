package providers

import (
	"github.com/samber/do/v2"

	"github.com/savourapp/savour-server/internal/auth"
	"github.com/savourapp/savour-server/internal/config"
	"github.com/savourapp/savour-server/internal/logger"
	"github.com/savourapp/savour-server/internal/session"
)

// SessionKey wraps the session sealing key bytes.
type SessionKey []byte

// ProvideSessionKey loads or generates the cookie sealing key.
func ProvideSessionKey(i do.Injector) (SessionKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}
	cfg.Session.Key = key

	log.Info("Session key loaded", "session_ttl", cfg.Session.TTL)

	return SessionKey(key), nil
}

// ProvideCookieCodec provides the PASETO cookie codec.
func ProvideCookieCodec(i do.Injector) (*auth.CookieCodec, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[SessionKey](i)

	return auth.NewCookieCodec([]byte(key), cfg.Session.TTL)
}

// ProvideSessionManager provides the session manager.
func ProvideSessionManager(i do.Injector) (*session.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	codec := do.MustInvoke[*auth.CookieCodec](i)

	return session.NewManager(storeHandle.Store, codec, log.Logger, session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.SecureCookie,
	}), nil
}
