package formats

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ManifestExt is the conventional extension of split-mode manifests.
const ManifestExt = ".csv"

// ManifestEntry maps one mesh file to the material of its segment.
type ManifestEntry struct {
	File     string
	Material string
}

// WriteManifestEntry writes e as a "file,material" line. An empty material is
// written as an empty field.
func WriteManifestEntry(w io.Writer, e ManifestEntry) error {
	_, err := fmt.Fprintf(w, "%s,%s\n", e.File, e.Material)
	return err
}

// ParseManifest reads manifest lines. Each line is split on its first comma;
// blank lines are skipped.
func ParseManifest(r io.Reader) ([]ManifestEntry, error) {
	var entries []ManifestEntry

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		file, material, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("manifest line %d: missing material field", lineNum)
		}
		entries = append(entries, ManifestEntry{File: file, Material: material})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return entries, nil
}
