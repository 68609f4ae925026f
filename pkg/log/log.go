package log

import (
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sulphurninja/oceanlinux-sub001/internal/config"
)

var Module = fx.Module("log",
	fx.Provide(NewLogger),
)

// NewLogger builds the process logger. Production environments get JSON
// output, everything else gets the development console encoder.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if strings.EqualFold(cfg.Environment, "production") {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	logger = logger.With(
		zap.String("service", cfg.AppName),
		zap.String("version", cfg.AppVersion),
	)
	zap.ReplaceGlobals(logger)
	return logger, nil
}
