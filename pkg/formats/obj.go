package formats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/objmesh/pkg/math"
)

// Directive identifies the kind of an OBJ line.
type Directive int

const (
	DirectiveNone     Directive = iota // Blank, comment or unrecognized line
	DirectivePosition                  // v
	DirectiveTexCoord                  // vt
	DirectiveNormal                    // vn
	DirectiveFace                      // f
	DirectiveMaterial                  // usemtl
	DirectiveObject                    // o
	DirectiveGroup                     // g
)

// String returns the OBJ keyword for the directive.
func (d Directive) String() string {
	switch d {
	case DirectivePosition:
		return "v"
	case DirectiveTexCoord:
		return "vt"
	case DirectiveNormal:
		return "vn"
	case DirectiveFace:
		return "f"
	case DirectiveMaterial:
		return "usemtl"
	case DirectiveObject:
		return "o"
	case DirectiveGroup:
		return "g"
	default:
		return "none"
	}
}

// IsBoundary reports whether the directive starts a new object or group.
func (d Directive) IsBoundary() bool {
	return d == DirectiveObject || d == DirectiveGroup
}

// LineResult describes what ApplyLine did with a line.
type LineResult struct {
	Directive Directive
	Dropped   int // Face corners ignored past the fourth
}

// ApplyLine parses one OBJ line into seg. Unrecognized lines are ignored.
// Boundary directives (o, g) have no effect on seg; the caller decides whether
// they end the segment.
func ApplyLine(seg *Segment, line string) (LineResult, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return LineResult{}, nil
	}

	args := fields[1:]
	switch fields[0] {
	case "v":
		xyz, err := parseFloats(args, 3)
		if err != nil {
			return LineResult{}, fmt.Errorf("v: %w", err)
		}
		seg.AddPosition(math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		return LineResult{Directive: DirectivePosition}, nil

	case "vt":
		uv, err := parseFloats(args, 2)
		if err != nil {
			return LineResult{}, fmt.Errorf("vt: %w", err)
		}
		seg.AddTexCoord(math.Vec2{X: uv[0], Y: uv[1]})
		return LineResult{Directive: DirectiveTexCoord}, nil

	case "vn":
		xyz, err := parseFloats(args, 3)
		if err != nil {
			return LineResult{}, fmt.Errorf("vn: %w", err)
		}
		seg.AddNormal(math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		return LineResult{Directive: DirectiveNormal}, nil

	case "usemtl":
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		seg.SetMaterial(name)
		return LineResult{Directive: DirectiveMaterial}, nil

	case "o":
		return LineResult{Directive: DirectiveObject}, nil

	case "g":
		return LineResult{Directive: DirectiveGroup}, nil

	case "f":
		corners := make([]Corner, 0, len(args))
		for _, tok := range args {
			c, err := ParseCorner(tok)
			if err != nil {
				return LineResult{}, err
			}
			corners = append(corners, c)
		}
		dropped, err := seg.AddFace(corners)
		if err != nil {
			return LineResult{}, err
		}
		return LineResult{Directive: DirectiveFace, Dropped: dropped}, nil
	}

	return LineResult{}, nil
}

// ParseCorner parses a face corner token of the form v, v/t, v//n or v/t/n.
// Absent texture or normal indices are returned as zero. Subtokens past the
// third are ignored.
func ParseCorner(tok string) (Corner, error) {
	parts := strings.Split(tok, "/")

	var c Corner
	var err error
	if c.Vertex, err = parseIndex(parts[0]); err != nil || c.Vertex == 0 {
		return Corner{}, fmt.Errorf("%w: vertex index %q", ErrMalformedFace, parts[0])
	}
	if len(parts) > 1 {
		if c.Tex, err = parseIndex(parts[1]); err != nil {
			return Corner{}, fmt.Errorf("%w: texture index %q", ErrMalformedFace, parts[1])
		}
	}
	if len(parts) > 2 {
		if c.Normal, err = parseIndex(parts[2]); err != nil {
			return Corner{}, fmt.Errorf("%w: normal index %q", ErrMalformedFace, parts[2])
		}
	}
	return c, nil
}

// parseIndex parses a 1-based index. An empty string yields zero.
func parseIndex(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("index %d: relative and zero indices are not supported", n)
	}
	return int(n), nil
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("%w: %d components, need %d", ErrMalformedAttribute, len(args), n)
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedAttribute, args[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
