package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/objmesh/internal/config"
)

func configCmd() *cli.Command {
	var path string

	return &cli.Command{
		Name:  "config",
		Usage: "Show or save the effective configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration as YAML",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, _, err := setup(config.Overrides{})
					if err != nil {
						return err
					}
					data, err := yaml.Marshal(cfg)
					if err != nil {
						return err
					}
					fmt.Print(string(data))
					return nil
				},
			},
			{
				Name:  "save",
				Usage: "Write the effective configuration to the user config dir",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "path",
						Usage:       "write here instead of the user config dir",
						Destination: &path,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, log, err := setup(config.Overrides{})
					if err != nil {
						return err
					}
					if path == "" {
						err = cfg.Save()
					} else {
						err = cfg.SaveTo(path)
					}
					if err != nil {
						return cli.Exit(fmt.Sprintf("saving config: %v", err), exitFailure)
					}
					log.Info("config saved")
					return nil
				},
			},
		},
	}
}
