// Package api provides the HTTP API for the backup agent
package api

import (
	"crypto/subtle"
	stdhttp "net/http"
	"strings"

	"cfgvault/internal/platform/config"
	perr "cfgvault/internal/platform/errors"
	"cfgvault/internal/platform/logger"
	phttp "cfgvault/internal/platform/net/http"
	"cfgvault/internal/platform/store"

	"cfgvault/internal/modkit"
	"cfgvault/internal/modkit/httpkit"
	"cfgvault/internal/modkit/module"
	"cfgvault/internal/modkit/swaggerkit"

	enginehttp "cfgvault/internal/services/api/engine/http"
	metamod "cfgvault/internal/services/api/meta/module"
	trigmod "cfgvault/internal/services/trigger/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Trigger exposes the running engine; the api never constructs its own
	Trigger trigmod.Ports
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	mods := []module.Module{
		metamod.New(deps),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}

		// engine routes live at the version root: /status, /runs, /backup
		ports := enginehttp.Ports{
			Coordinator: opt.Trigger.Coordinator,
			History:     opt.Trigger.History,
		}
		if tok := opt.Config.MayString("TOKEN", ""); tok != "" {
			httpkit.Protected(api, bearerAuth{token: tok}, func(pr httpkit.Router) {
				enginehttp.Register(pr, ports)
			})
		} else {
			enginehttp.Register(api, ports)
		}
	})
}

// bearerAuth gates the engine routes behind a single static token
type bearerAuth struct{ token string }

// Parse implements middleware.AuthPort
func (a bearerAuth) Parse(r *stdhttp.Request) (string, string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(tok), []byte(a.token)) != 1 {
		return "", "", perr.Unauthorizedf("invalid bearer token")
	}
	return "operator", "", nil
}
