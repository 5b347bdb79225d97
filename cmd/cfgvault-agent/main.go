// @title         cfgvault API
// @version       0.1.0
// @description   Device configuration backup agent: weekly and change-driven triggers

package main

import (
	"context"

	"cfgvault/internal/modkit"
	"cfgvault/internal/platform/config"
	"cfgvault/internal/platform/logger"
	phttp "cfgvault/internal/platform/net/http"
	"cfgvault/internal/platform/store"

	"cfgvault/internal/adapters/device"
	"cfgvault/internal/services/api"
	trigmod "cfgvault/internal/services/trigger/module"
	trigservice "cfgvault/internal/services/trigger/service"
)

func main() {
	// service-scoped config for HTTP etc (CORE_AGENT_*)
	root := config.New()
	agentCfg := root.Prefix("CORE_AGENT_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	devCfg := root.Prefix("DEVICE_")            // device REST access under DEVICE_*

	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres required, clickhouse optional)
	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
			CH: store.CHConfig{
				Enabled: chCfg.MayBool("ENABLED", false),
				URL:     chCfg.MayString("DBURL", ""),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// device REST client backs every engine port
	dev := device.NewClient(device.Options{
		BaseURL: devCfg.MustString("URL"),
		Token:   devCfg.MayString("TOKEN", ""),
		Timeout: devCfg.MayDuration("TIMEOUT", 0),
	})

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	trig := trigmod.New(deps, trigservice.Collaborators{
		Checkpoints: dev,
		Exporter:    dev,
		CLI:         dev,
		Shell:       dev,
		Rate:        dev,
		Notifier:    dev,
	})

	// http server (reads CORE_AGENT_PORT / CORE_AGENT_ADDR)
	srv := phttp.NewServer(agentCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         agentCfg,
			Store:          st,
			Logger:         l,
			EnableSwagger:  agentCfg.MayBool("SWAGGER", true),
			EnableProfiler: agentCfg.MayBool("PROFILER", false),
			Trigger:        trig.Ports().(trigmod.Ports),
		},
	)

	ctx := context.Background()

	errCh := make(chan error, 2)
	go func() { errCh <- trig.Service().Run(ctx) }()
	go func() { errCh <- srv.Run(ctx) }()

	if err := <-errCh; err != nil {
		l.Panic().Err(err).Msg("agent stopped")
	}
}
