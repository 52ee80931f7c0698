package formats

// Triangulate splits the quad (c0, c1, c2, c3) into (c0, c1, c2) and
// (c3, c0, c2). Both triangles keep the quad's winding. The exact corner order
// of the second triangle is part of the output format and must not be changed.
func Triangulate(c [4]Corner) [2]Face {
	return [2]Face{
		{c[0], c[1], c[2]},
		{c[3], c[0], c[2]},
	}
}
