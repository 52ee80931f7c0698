// objmesh converts OBJ text meshes into binary indexed mesh files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/logger"
	"github.com/Faultbox/objmesh/pkg/formats"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitMalformed = 2
)

// Global flags shared by every command.
var (
	configPath string
	debug      bool
	logLevel   string
	logFile    string
)

func main() {
	app := &cli.Command{
		Name:  "objmesh",
		Usage: "Convert OBJ meshes into binary indexed .mesh files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to config file (default: ./objmesh.yaml or user config dir)",
				Destination: &configPath,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "enable debug logging",
				Destination: &debug,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "also write logs to this file (rotated)",
				Destination: &logFile,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			convertCmd(),
			inspectCmd(),
			serveCmd(),
			configCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// setup loads the configuration with the global flags plus ov applied and
// initializes the global logger. The returned logger carries a run ID.
func setup(ov config.Overrides) (*config.Config, *zap.Logger, error) {
	ov.ConfigPath = configPath
	ov.Debug = debug
	ov.LogLevel = logLevel
	ov.LogFile = logFile

	cfg, err := config.Load(ov)
	if err != nil {
		return nil, nil, cli.Exit(fmt.Sprintf("config error: %v", err), exitFailure)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, cli.Exit(fmt.Sprintf("logger error: %v", err), exitFailure)
	}
	logger.Sugar.Debugf("config: %+v", cfg)

	return cfg, logger.Log.With(zap.String("run_id", uuid.NewString())), nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var ec cli.ExitCoder
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ec):
		return ec.ExitCode()
	case formats.IsMalformed(err):
		return exitMalformed
	default:
		return exitFailure
	}
}
