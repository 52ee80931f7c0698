package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/convert"
	"github.com/Faultbox/objmesh/internal/logger"
	"github.com/Faultbox/objmesh/pkg/encoding"
)

func convertCmd() *cli.Command {
	var (
		split   bool
		outDir  string
		charset string
	)

	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert an OBJ file into .mesh files",
		ArgsUsage: "<input.obj>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "split",
				Aliases:     []string{"s", "split-mesh"},
				Usage:       "write one mesh per object/group plus a .csv manifest",
				Destination: &split,
			},
			&cli.StringFlag{
				Name:        "out-dir",
				Usage:       "output directory (default: next to the input)",
				Destination: &outDir,
			},
			&cli.StringFlag{
				Name:        "charset",
				Usage:       "source text encoding: " + strings.Join(encoding.Names(), ", "),
				Destination: &charset,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("convert: exactly one input file is required", exitFailure)
			}
			input := cmd.Args().First()

			cfg, log, err := setup(config.Overrides{
				Split:   split,
				OutDir:  outDir,
				Charset: charset,
			})
			if err != nil {
				return err
			}
			defer logger.Sync()

			fo := convert.FileOptions{
				Options: convert.Options{
					Split:       cfg.Convert.Split,
					MeshExt:     cfg.Convert.MeshExt,
					ManifestExt: cfg.Convert.ManifestExt,
				},
				OutDir:  cfg.Convert.OutDir,
				Charset: cfg.Convert.Charset,
			}

			log = log.With(zap.String("input", input))
			log.Debug("converting", zap.Bool("split", fo.Split), zap.String("out_dir", fo.OutDir))

			res, err := convert.ConvertFile(ctx, input, fo, log)
			if err != nil {
				return convertFailed(log, res, err)
			}

			for _, seg := range res.Segments {
				fmt.Printf("%s\t%d faces\t%s\n", seg.File, seg.Header.Faces, seg.Material)
			}
			log.Info("conversion complete",
				zap.Int("lines", res.Lines),
				zap.Int("meshes", len(res.Segments)),
				zap.Int("dropped_corners", res.DroppedCorners))
			return nil
		},
	}
}

// convertFailed logs err and turns it into a cli exit error.
func convertFailed(log *zap.Logger, res *convert.Result, err error) error {
	if errors.Is(err, convert.ErrInputUnavailable) {
		log.Error("cannot read input, nothing written", zap.Error(err))
		return cli.Exit(err.Error(), exitFailure)
	}

	written := 0
	if res != nil {
		written = len(res.Segments)
	}
	log.Error("conversion failed", zap.Error(err), zap.Int("meshes_written", written))
	return cli.Exit(err.Error(), exitCode(err))
}
