// Package convert turns OBJ text into binary mesh files, optionally one file
// per object or group.
package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/pkg/encoding"
	"github.com/Faultbox/objmesh/pkg/formats"
)

// ErrInputUnavailable is returned when the source file cannot be read. Nothing
// has been written when it is returned.
var ErrInputUnavailable = errors.New("input unavailable")

const (
	maxLineSize   = 16 << 20
	ctxCheckLines = 1024
)

// Options controls a conversion run.
type Options struct {
	Name        string // Output base name, without directory or extension
	Split       bool   // One mesh per object/group instead of one per input
	MeshExt     string // Defaults to formats.MeshExt
	ManifestExt string // Defaults to formats.ManifestExt
}

func (o Options) withDefaults() Options {
	if o.MeshExt == "" {
		o.MeshExt = formats.MeshExt
	}
	if o.ManifestExt == "" {
		o.ManifestExt = formats.ManifestExt
	}
	return o
}

// ManifestName returns the manifest file name for these options.
func (o Options) ManifestName() string {
	return o.Name + o.withDefaults().ManifestExt
}

// SegmentResult describes one written mesh.
type SegmentResult struct {
	File     string
	Material string
	Header   formats.MeshHeader
}

// Result summarizes a conversion run.
type Result struct {
	Segments       []SegmentResult
	Lines          int
	DroppedCorners int // Face corners past the fourth
}

// Converter drives a single pass over OBJ input and flushes segments to an Output.
type Converter struct {
	out  Output
	opts Options
	log  *zap.Logger
}

// New creates a Converter. A nil logger disables logging.
func New(out Output, opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{
		out:  out,
		opts: opts.withDefaults(),
		log:  log,
	}
}

// Convert reads OBJ text from r and writes the resulting meshes.
//
// In split mode the manifest is reset once before reading, every o or g line
// that follows at least one face ends the current segment, and end of input
// ends the last one. Otherwise the whole input becomes a single mesh.
//
// The first error aborts the run. The returned Result still lists the meshes
// written before the failure; they are left in place.
func (c *Converter) Convert(ctx context.Context, r io.Reader) (*Result, error) {
	res := &Result{}

	if c.opts.Split {
		if err := c.out.ResetManifest(); err != nil {
			return res, err
		}
	}

	seg := formats.NewSegment()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		res.Lines++
		if res.Lines%ctxCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		lr, err := formats.ApplyLine(seg, scanner.Text())
		if err != nil {
			return res, fmt.Errorf("line %d: %w", res.Lines, err)
		}
		if lr.Dropped > 0 {
			res.DroppedCorners += lr.Dropped
			c.log.Warn("face has more than 4 corners, extra corners ignored",
				zap.Int("line", res.Lines),
				zap.Int("dropped", lr.Dropped))
		}

		if c.opts.Split && lr.Directive.IsBoundary() && !seg.Empty() {
			if err := c.flush(seg, res); err != nil {
				return res, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("reading input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	switch {
	case c.opts.Split && !seg.Empty():
		if err := c.flush(seg, res); err != nil {
			return res, err
		}
	case !c.opts.Split:
		if seg.Empty() {
			c.log.Warn("input has no faces, writing an empty mesh", zap.String("name", c.opts.Name))
		}
		if err := c.flush(seg, res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// flush writes seg and resets it for the next segment.
func (c *Converter) flush(seg *formats.Segment, res *Result) error {
	name := c.opts.Name + c.opts.MeshExt
	if c.opts.Split {
		name = fmt.Sprintf("%s_%d%s", c.opts.Name, len(res.Segments)+1, c.opts.MeshExt)
	}

	// Encode first so a bad index never leaves a manifest line without a file
	data, hdr, err := formats.MarshalMesh(seg)
	if err != nil {
		return fmt.Errorf("segment %s: %w", name, err)
	}

	if c.opts.Split {
		entry := formats.ManifestEntry{File: name, Material: seg.Material}
		if err := c.out.AppendManifest(entry); err != nil {
			return err
		}
	}
	if err := c.out.WriteMesh(name, data); err != nil {
		return err
	}

	res.Segments = append(res.Segments, SegmentResult{
		File:     name,
		Material: seg.Material,
		Header:   hdr,
	})
	c.log.Debug("segment written",
		zap.String("file", name),
		zap.String("material", seg.Material),
		zap.Uint32("positions", hdr.Positions),
		zap.Uint32("texcoords", hdr.TexCoords),
		zap.Uint32("normals", hdr.Normals),
		zap.Uint32("faces", hdr.Faces),
		zap.Stringer("tex_state", seg.TexState()),
		zap.Stringer("normal_state", seg.NormalState()))

	seg.Reset()
	return nil
}

// FileOptions extends Options for converting a file on disk.
type FileOptions struct {
	Options
	OutDir  string // Defaults to the input's directory
	Charset string // Source text encoding, see encoding.Lookup
}

// ConvertFile converts the OBJ file at path. Outputs are named after the input
// file unless Options.Name is set. The input is opened before anything is
// written or removed, so an unreadable input leaves the output directory
// untouched and returns ErrInputUnavailable.
func ConvertFile(ctx context.Context, path string, fo FileOptions, log *zap.Logger) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInputUnavailable, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	defer f.Close()

	r, err := encoding.NewReader(f, fo.Charset)
	if err != nil {
		return nil, err
	}

	opts := fo.Options
	if opts.Name == "" {
		opts.Name = BaseName(path)
	}
	out := &DirOutput{Dir: fo.OutDir}
	if out.Dir == "" {
		out.Dir = filepath.Dir(path)
	}
	if opts.Split {
		out.Manifest = opts.ManifestName()
	}

	return New(out, opts, log).Convert(ctx, r)
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
