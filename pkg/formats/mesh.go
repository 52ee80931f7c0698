// Binary mesh format:
//
//	uint32 positionCount, texCoordCount, normalCount, faceCount
//	float32[3] positions[positionCount]
//	float32[2] texCoords[texCoordCount]
//	float32[3] normals[normalCount]
//	faces[faceCount], each 3 corners of:
//	    uint32 vertex
//	    uint32 tex     (only if texCoordCount > 0)
//	    uint32 normal  (only if normalCount > 0)
//
// All values are little-endian with no padding. Corner indices are 1-based
// within the mesh; readers subtract one to address the arrays.

package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/objmesh/pkg/math"
)

// MeshExt is the conventional extension of binary mesh files.
const MeshExt = ".mesh"

const meshHeaderSize = 16

// MeshHeader holds the four element counts at the start of a mesh file.
type MeshHeader struct {
	Positions uint32
	TexCoords uint32
	Normals   uint32
	Faces     uint32
}

// CornerStride returns the number of uint32 indices stored per face corner.
func (h MeshHeader) CornerStride() int {
	stride := 1
	if h.TexCoords > 0 {
		stride++
	}
	if h.Normals > 0 {
		stride++
	}
	return stride
}

// Size returns the exact byte size of a mesh file with these counts.
func (h MeshHeader) Size() uint64 {
	return meshHeaderSize +
		uint64(h.Positions)*12 +
		uint64(h.TexCoords)*8 +
		uint64(h.Normals)*12 +
		uint64(h.Faces)*3*uint64(h.CornerStride())*4
}

// MeshCorner is a face corner as stored in a mesh file.
type MeshCorner struct {
	Vertex uint32
	Tex    uint32 // Zero when the mesh has no texcoords
	Normal uint32 // Zero when the mesh has no normals
}

// Mesh is a decoded binary mesh.
type Mesh struct {
	Header    MeshHeader
	Positions []math.Vec3
	TexCoords []math.Vec2
	Normals   []math.Vec3
	Faces     [][3]MeshCorner
}

// SegmentHeader returns the counts MarshalMesh would write for seg.
func SegmentHeader(seg *Segment) MeshHeader {
	return MeshHeader{
		Positions: uint32(len(seg.Positions)),
		TexCoords: uint32(len(seg.TexCoords)),
		Normals:   uint32(len(seg.Normals)),
		Faces:     uint32(len(seg.Faces)),
	}
}

// MarshalMesh encodes seg in the binary mesh format. Face indices are rebased
// by seg.Base so they address the segment's own arrays. An index that falls
// outside the segment returns ErrIndexOutOfRange.
func MarshalMesh(seg *Segment) ([]byte, MeshHeader, error) {
	hdr := SegmentHeader(seg)
	buf := bytes.NewBuffer(make([]byte, 0, hdr.Size()))

	binary.Write(buf, binary.LittleEndian, hdr)
	binary.Write(buf, binary.LittleEndian, seg.Positions)
	binary.Write(buf, binary.LittleEndian, seg.TexCoords)
	binary.Write(buf, binary.LittleEndian, seg.Normals)

	indices := make([]uint32, 0, len(seg.Faces)*3*hdr.CornerStride())
	for i, face := range seg.Faces {
		for _, c := range face {
			v, err := rebase(c.Vertex, seg.Base.Position, len(seg.Positions))
			if err != nil {
				return nil, MeshHeader{}, fmt.Errorf("face %d vertex: %w", i, err)
			}
			indices = append(indices, v)

			if hdr.TexCoords > 0 {
				t, err := rebase(c.Tex, seg.Base.Tex, len(seg.TexCoords))
				if err != nil {
					return nil, MeshHeader{}, fmt.Errorf("face %d texcoord: %w", i, err)
				}
				indices = append(indices, t)
			}

			if hdr.Normals > 0 {
				n, err := rebase(c.Normal, seg.Base.Normal, len(seg.Normals))
				if err != nil {
					return nil, MeshHeader{}, fmt.Errorf("face %d normal: %w", i, err)
				}
				indices = append(indices, n)
			}
		}
	}
	binary.Write(buf, binary.LittleEndian, indices)

	return buf.Bytes(), hdr, nil
}

// WriteMesh encodes seg and writes it to w.
func WriteMesh(w io.Writer, seg *Segment) (MeshHeader, error) {
	data, hdr, err := MarshalMesh(seg)
	if err != nil {
		return MeshHeader{}, err
	}
	if _, err := w.Write(data); err != nil {
		return MeshHeader{}, err
	}
	return hdr, nil
}

// rebase converts a file-global index into a segment-local 1-based index.
func rebase(index, base, count int) (uint32, error) {
	local := index - base
	if local < 1 || local > count {
		return 0, fmt.Errorf("%w: index %d is %d after rebasing by %d, segment has %d",
			ErrIndexOutOfRange, index, local, base, count)
	}
	return uint32(local), nil
}

// ParseMesh parses binary mesh data from a byte slice.
func ParseMesh(data []byte) (*Mesh, error) {
	if len(data) < meshHeaderSize {
		return nil, ErrTruncatedMeshData
	}

	r := bytes.NewReader(data)

	var hdr MeshHeader
	binary.Read(r, binary.LittleEndian, &hdr)

	// Check the size before allocating anything from the counts
	size := hdr.Size()
	if size > uint64(len(data)) {
		return nil, fmt.Errorf("%w: counts need %d bytes, have %d", ErrTruncatedMeshData, size, len(data))
	}
	if size < uint64(len(data)) {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingMeshData, uint64(len(data))-size)
	}
	if hdr.Faces > 0 && hdr.Positions == 0 {
		return nil, fmt.Errorf("%w: %d faces without positions", ErrInvalidMeshCounts, hdr.Faces)
	}

	mesh := &Mesh{
		Header:    hdr,
		Positions: make([]math.Vec3, hdr.Positions),
		TexCoords: make([]math.Vec2, hdr.TexCoords),
		Normals:   make([]math.Vec3, hdr.Normals),
		Faces:     make([][3]MeshCorner, hdr.Faces),
	}
	binary.Read(r, binary.LittleEndian, mesh.Positions)
	binary.Read(r, binary.LittleEndian, mesh.TexCoords)
	binary.Read(r, binary.LittleEndian, mesh.Normals)

	stride := hdr.CornerStride()
	indices := make([]uint32, int(hdr.Faces)*3*stride)
	binary.Read(r, binary.LittleEndian, indices)

	for i := range mesh.Faces {
		for j := 0; j < 3; j++ {
			base := (i*3 + j) * stride
			c := MeshCorner{Vertex: indices[base]}
			next := base + 1
			if hdr.TexCoords > 0 {
				c.Tex = indices[next]
				next++
			}
			if hdr.Normals > 0 {
				c.Normal = indices[next]
			}
			if err := checkCorner(c, hdr); err != nil {
				return nil, fmt.Errorf("face %d corner %d: %w", i, j, err)
			}
			mesh.Faces[i][j] = c
		}
	}

	return mesh, nil
}

func checkCorner(c MeshCorner, hdr MeshHeader) error {
	if c.Vertex < 1 || c.Vertex > hdr.Positions {
		return fmt.Errorf("%w: vertex %d of %d", ErrIndexOutOfRange, c.Vertex, hdr.Positions)
	}
	if hdr.TexCoords > 0 && (c.Tex < 1 || c.Tex > hdr.TexCoords) {
		return fmt.Errorf("%w: texcoord %d of %d", ErrIndexOutOfRange, c.Tex, hdr.TexCoords)
	}
	if hdr.Normals > 0 && (c.Normal < 1 || c.Normal > hdr.Normals) {
		return fmt.Errorf("%w: normal %d of %d", ErrIndexOutOfRange, c.Normal, hdr.Normals)
	}
	return nil
}

// ParseMeshFile parses a binary mesh file from disk.
func ParseMeshFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	return ParseMesh(data)
}

// Position returns the position referenced by a 1-based corner.
func (m *Mesh) Position(c MeshCorner) math.Vec3 {
	return m.Positions[c.Vertex-1]
}

// Bounds returns the bounding box of all positions.
func (m *Mesh) Bounds() math.Bounds {
	var b math.Bounds
	for _, p := range m.Positions {
		b.Extend(p)
	}
	return b
}

// SurfaceArea returns the summed area of all faces.
func (m *Mesh) SurfaceArea() float64 {
	var total float64
	for _, f := range m.Faces {
		total += float64(math.TriangleArea(m.Position(f[0]), m.Position(f[1]), m.Position(f[2])))
	}
	return total
}

// DegenerateFaces returns the number of faces with zero area.
func (m *Mesh) DegenerateFaces() int {
	n := 0
	for _, f := range m.Faces {
		if math.TriangleArea(m.Position(f[0]), m.Position(f[1]), m.Position(f[2])) == 0 {
			n++
		}
	}
	return n
}

// MeshSummary is a flat digest of a mesh for reports.
type MeshSummary struct {
	Positions       uint32     `json:"positions"`
	TexCoords       uint32     `json:"texcoords"`
	Normals         uint32     `json:"normals"`
	Faces           uint32     `json:"faces"`
	CornerStride    int        `json:"corner_stride"`
	Bytes           uint64     `json:"bytes"`
	BoundsMin       [3]float32 `json:"bounds_min"`
	BoundsMax       [3]float32 `json:"bounds_max"`
	Center          [3]float32 `json:"center"`
	Size            [3]float32 `json:"size"`
	SurfaceArea     float64    `json:"surface_area"`
	DegenerateFaces int        `json:"degenerate_faces"`
}

// Summary computes the mesh digest. Bounds fields are zero for a mesh without
// positions.
func (m *Mesh) Summary() MeshSummary {
	s := MeshSummary{
		Positions:       m.Header.Positions,
		TexCoords:       m.Header.TexCoords,
		Normals:         m.Header.Normals,
		Faces:           m.Header.Faces,
		CornerStride:    m.Header.CornerStride(),
		Bytes:           m.Header.Size(),
		SurfaceArea:     m.SurfaceArea(),
		DegenerateFaces: m.DegenerateFaces(),
	}
	if b := m.Bounds(); !b.Empty() {
		s.BoundsMin = b.Min.Array()
		s.BoundsMax = b.Max.Array()
		s.Center = b.Center().Array()
		s.Size = b.Size().Array()
	}
	return s
}
