package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/pkg/formats"
)

type manifestReport struct {
	File     string               `json:"file"`
	Material string               `json:"material"`
	Summary  *formats.MeshSummary `json:"summary,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the contents of a .mesh file or a split manifest",
		ArgsUsage: "<file.mesh|file.csv>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("inspect: exactly one file is required", exitFailure)
			}
			path := cmd.Args().First()

			cfg, _, err := setup(config.Overrides{})
			if err != nil {
				return err
			}

			if strings.EqualFold(filepath.Ext(path), cfg.Convert.ManifestExt) {
				return inspectManifest(path, asJSON)
			}
			return inspectMesh(path, asJSON)
		},
	}
}

func inspectMesh(path string, asJSON bool) error {
	mesh, err := formats.ParseMeshFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", path, err), exitFailure)
	}
	s := mesh.Summary()

	if asJSON {
		return printJSON(s)
	}
	fmt.Printf("File:          %s\n", path)
	printSummary(s)
	return nil
}

func printSummary(s formats.MeshSummary) {
	fmt.Printf("Positions:     %d\n", s.Positions)
	fmt.Printf("TexCoords:     %d\n", s.TexCoords)
	fmt.Printf("Normals:       %d\n", s.Normals)
	fmt.Printf("Faces:         %d\n", s.Faces)
	fmt.Printf("Corner stride: %d\n", s.CornerStride)
	fmt.Printf("Size:          %d bytes\n", s.Bytes)
	fmt.Printf("Bounds:        (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
		s.BoundsMin[0], s.BoundsMin[1], s.BoundsMin[2],
		s.BoundsMax[0], s.BoundsMax[1], s.BoundsMax[2])
	fmt.Printf("Surface area:  %.4f\n", s.SurfaceArea)
	if s.DegenerateFaces > 0 {
		fmt.Printf("Degenerate:    %d faces\n", s.DegenerateFaces)
	}
}

// inspectManifest lists the manifest records and summarizes each mesh found
// next to it.
func inspectManifest(path string, asJSON bool) error {
	f, err := os.Open(path)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	defer f.Close()

	entries, err := formats.ParseManifest(f)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", path, err), exitFailure)
	}

	dir := filepath.Dir(path)
	reports := make([]manifestReport, 0, len(entries))
	for _, e := range entries {
		r := manifestReport{File: e.File, Material: e.Material}
		mesh, err := formats.ParseMeshFile(filepath.Join(dir, e.File))
		if err != nil {
			r.Error = err.Error()
		} else {
			s := mesh.Summary()
			r.Summary = &s
		}
		reports = append(reports, r)
	}

	if asJSON {
		return printJSON(reports)
	}

	fmt.Printf("Manifest: %s (%d meshes)\n\n", path, len(reports))
	fmt.Printf("%-32s %-20s %10s %10s\n", "FILE", "MATERIAL", "POSITIONS", "FACES")
	for _, r := range reports {
		if r.Summary == nil {
			fmt.Printf("%-32s %-20s %s\n", r.File, r.Material, r.Error)
			continue
		}
		fmt.Printf("%-32s %-20s %10d %10d\n", r.File, r.Material, r.Summary.Positions, r.Summary.Faces)
	}
	return nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
