package cli

import (
	"context"
	"os"

	"go.uber.org/zap"

	"todo/internal/app"
	"todo/internal/backend/restapi"
	"todo/internal/config"
	"todo/internal/credential"
	"todo/internal/logging"
)

// NewApp wires the production session: a file credential slot in the
// config dir, the REST backend and a logger on stderr when --debug is set.
func NewApp(ctx context.Context, cfg *config.Config) (*app.App, error) {
	log := logging.New(cfg.Debug, os.Stderr)
	holder := credential.NewHolder(credential.NewFileSlot(cfg.TokenPath()), cfg.AuthScheme)
	client := restapi.New(cfg, holder, restapi.WithLogger(log))

	log.Debug("backend configured",
		zap.String("base_url", cfg.BaseURL),
		zap.String("config_dir", cfg.Dir),
	)
	return app.New(client, holder, app.WithLogger(log)), nil
}
