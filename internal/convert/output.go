package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Faultbox/objmesh/pkg/formats"
)

// Output receives the files produced by a conversion run.
type Output interface {
	// ResetManifest discards a manifest left by an earlier run.
	ResetManifest() error
	// AppendManifest adds one record to the manifest.
	AppendManifest(e formats.ManifestEntry) error
	// WriteMesh stores one complete mesh file.
	WriteMesh(name string, data []byte) error
}

// DirOutput writes meshes into Dir and the manifest to Dir/Manifest.
type DirOutput struct {
	Dir      string
	Manifest string // File name of the manifest, relative to Dir
}

// ResetManifest removes a stale manifest. A missing file is not an error.
func (o *DirOutput) ResetManifest() error {
	if o.Manifest == "" {
		return nil
	}
	err := os.Remove(filepath.Join(o.Dir, o.Manifest))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale manifest: %w", err)
	}
	return nil
}

// AppendManifest opens the manifest in append mode and writes one record.
func (o *DirOutput) AppendManifest(e formats.ManifestEntry) error {
	if err := o.ensureDir(); err != nil {
		return err
	}
	path := filepath.Join(o.Dir, o.Manifest)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening manifest: %w", err)
	}
	if err := formats.WriteManifestEntry(f, e); err != nil {
		f.Close()
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return f.Close()
}

// WriteMesh creates Dir/name and writes data. If the write fails after the
// file was created, the partial file is removed.
func (o *DirOutput) WriteMesh(name string, data []byte) error {
	if err := o.ensureDir(); err != nil {
		return err
	}

	path := filepath.Join(o.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("opening mesh: %w", err)
	}

	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("writing mesh %s: %w", path, err)
	}
	return nil
}

func (o *DirOutput) ensureDir() error {
	if o.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	return nil
}

// MemoryFile is a mesh held by MemoryOutput.
type MemoryFile struct {
	Name string
	Data []byte
}

// MemoryOutput keeps every produced file in memory, in write order.
type MemoryOutput struct {
	Files    []MemoryFile
	Manifest []formats.ManifestEntry
	Resets   int
}

// ResetManifest clears the in-memory manifest.
func (o *MemoryOutput) ResetManifest() error {
	o.Manifest = nil
	o.Resets++
	return nil
}

// AppendManifest records e.
func (o *MemoryOutput) AppendManifest(e formats.ManifestEntry) error {
	o.Manifest = append(o.Manifest, e)
	return nil
}

// WriteMesh stores a copy of data under name.
func (o *MemoryOutput) WriteMesh(name string, data []byte) error {
	o.Files = append(o.Files, MemoryFile{Name: name, Data: append([]byte(nil), data...)})
	return nil
}

// File returns the data written under name.
func (o *MemoryOutput) File(name string) ([]byte, bool) {
	for _, f := range o.Files {
		if f.Name == name {
			return f.Data, true
		}
	}
	return nil, false
}
