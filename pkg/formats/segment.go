// Package formats provides the OBJ directive parser and the binary mesh codec.
package formats

import (
	"fmt"

	"github.com/Faultbox/objmesh/pkg/math"
)

// AttrState tracks whether an optional per-corner attribute (texture or normal
// index) is carried by the faces of the current segment.
type AttrState uint8

const (
	AttrUnseen   AttrState = iota // No face parsed yet
	AttrEnabled                   // Every corner so far carried the attribute
	AttrDisabled                  // A corner lacked it; dropped for the rest of the segment
)

// String returns a human-readable state name.
func (s AttrState) String() string {
	switch s {
	case AttrUnseen:
		return "Unseen"
	case AttrEnabled:
		return "Enabled"
	case AttrDisabled:
		return "Disabled"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Corner references one face vertex. Indices are 1-based and counted across the
// whole source file. Zero means the attribute is absent.
type Corner struct {
	Vertex int
	Tex    int
	Normal int
}

// Face is a triangle.
type Face [3]Corner

// Offsets holds one count per attribute. Used both for rebase offsets and for
// the number of attributes read in a segment.
type Offsets struct {
	Position int
	Tex      int
	Normal   int
}

// Segment accumulates the geometry read since the previous flush.
//
// A Segment is owned by a single parse session. Only Reset clears it, and the
// rebase offsets in Base survive the reset.
type Segment struct {
	Positions []math.Vec3
	TexCoords []math.Vec2
	Normals   []math.Vec3
	Faces     []Face
	Material  string

	// Base is the number of each attribute consumed by earlier segments.
	Base Offsets

	read        Offsets
	texState    AttrState
	normalState AttrState
}

// NewSegment returns an empty segment with zero rebase offsets.
func NewSegment() *Segment {
	return &Segment{}
}

// TexState returns the texture-index state of the segment.
func (s *Segment) TexState() AttrState { return s.texState }

// NormalState returns the normal-index state of the segment.
func (s *Segment) NormalState() AttrState { return s.normalState }

// Read returns how many of each attribute directive were read in this segment,
// including texcoords and normals discarded by a disable.
func (s *Segment) Read() Offsets { return s.read }

// AddPosition appends a vertex position.
func (s *Segment) AddPosition(p math.Vec3) {
	s.Positions = append(s.Positions, p)
	s.read.Position++
}

// AddTexCoord appends a texture coordinate. Once texture indices are disabled
// the value is counted for rebasing but not kept.
func (s *Segment) AddTexCoord(uv math.Vec2) {
	s.read.Tex++
	if s.texState != AttrDisabled {
		s.TexCoords = append(s.TexCoords, uv)
	}
}

// AddNormal appends a normal. Once normal indices are disabled the value is
// counted for rebasing but not kept.
func (s *Segment) AddNormal(n math.Vec3) {
	s.read.Normal++
	if s.normalState != AttrDisabled {
		s.Normals = append(s.Normals, n)
	}
}

// SetMaterial sets the segment's material tag, replacing any previous one.
func (s *Segment) SetMaterial(name string) {
	s.Material = name
}

// AddFace stores a 3 or 4 corner polygon. Corners past the fourth are dropped
// and their number is returned. Fewer than 3 corners is ErrMalformedFace.
//
// Corners carry the attributes exactly as parsed: a zero Tex or Normal disables
// that attribute for the remainder of the segment.
func (s *Segment) AddFace(corners []Corner) (dropped int, err error) {
	if len(corners) < 3 {
		return 0, fmt.Errorf("%w: %d corners, need at least 3", ErrMalformedFace, len(corners))
	}
	if len(corners) > 4 {
		dropped = len(corners) - 4
		corners = corners[:4]
	}

	for _, c := range corners {
		if c.Vertex <= 0 {
			return 0, fmt.Errorf("%w: missing vertex index", ErrMalformedFace)
		}
	}

	for _, c := range corners {
		s.observe(c)
	}

	var faces []Face
	if len(corners) == 4 {
		pair := Triangulate([4]Corner{corners[0], corners[1], corners[2], corners[3]})
		faces = pair[:]
	} else {
		faces = []Face{{corners[0], corners[1], corners[2]}}
	}

	for _, f := range faces {
		s.Faces = append(s.Faces, s.mask(f))
	}
	return dropped, nil
}

// observe updates the attribute states for one parsed corner.
func (s *Segment) observe(c Corner) {
	if c.Tex == 0 {
		s.disableTex()
	} else if s.texState == AttrUnseen {
		s.texState = AttrEnabled
	}

	if c.Normal == 0 {
		s.disableNormals()
	} else if s.normalState == AttrUnseen {
		s.normalState = AttrEnabled
	}
}

// mask strips the attributes that are disabled in this segment.
func (s *Segment) mask(f Face) Face {
	for i := range f {
		if s.texState == AttrDisabled {
			f[i].Tex = 0
		}
		if s.normalState == AttrDisabled {
			f[i].Normal = 0
		}
	}
	return f
}

func (s *Segment) disableTex() {
	if s.texState == AttrDisabled {
		return
	}
	s.texState = AttrDisabled
	s.TexCoords = nil
	for i := range s.Faces {
		for j := range s.Faces[i] {
			s.Faces[i][j].Tex = 0
		}
	}
}

func (s *Segment) disableNormals() {
	if s.normalState == AttrDisabled {
		return
	}
	s.normalState = AttrDisabled
	s.Normals = nil
	for i := range s.Faces {
		for j := range s.Faces[i] {
			s.Faces[i][j].Normal = 0
		}
	}
}

// Empty reports whether the segment holds no faces.
func (s *Segment) Empty() bool {
	return len(s.Faces) == 0
}

// Reset clears the segment for the next flush and advances Base by everything
// read since the previous reset.
func (s *Segment) Reset() {
	s.Base.Position += s.read.Position
	s.Base.Tex += s.read.Tex
	s.Base.Normal += s.read.Normal

	s.Positions = nil
	s.TexCoords = nil
	s.Normals = nil
	s.Faces = nil
	s.Material = ""
	s.read = Offsets{}
	s.texState = AttrUnseen
	s.normalState = AttrUnseen
}
