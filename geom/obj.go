package geom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxFaceVerts caps the polygon size of a face record.
const maxFaceVerts = 32

// LoadObj reads a Wavefront OBJ file.
func LoadObj(p string) (*Mesh, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ParseObj(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	m.Name = filepath.Base(p)
	return m, nil
}

// ParseObj reads vertex and face records from r. Faces with more than three
// corners are fan triangulated. Other records are ignored.
func ParseObj(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		row := strings.TrimSpace(scanner.Text())
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}
		fields := strings.Fields(row)
		var err error
		switch fields[0] {
		case "v":
			err = m.parseVertex(fields[1:])
		case "f":
			err = m.parseFace(fields[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mesh) parseVertex(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var v [3]float64
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return fmt.Errorf("vertex coordinate %q: %w", fields[i], err)
		}
		v[i] = f
	}
	m.Verts = append(m.Verts, v[0], v[1], v[2])
	return nil
}

// faceIndex resolves a 1-based or negative relative OBJ index to a 0-based one.
func (m *Mesh) faceIndex(field string) (int, error) {
	ref, _, _ := strings.Cut(field, "/")
	vi, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", field, err)
	}
	n := m.VertCount()
	if vi < 0 {
		vi += n
	} else {
		vi--
	}
	if vi < 0 || vi >= n {
		return 0, fmt.Errorf("face index %q is out of range (%d vertices)", field, n)
	}
	return vi, nil
}

func (m *Mesh) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face needs 3 vertices, got %d", len(fields))
	}
	if len(fields) > maxFaceVerts {
		return fmt.Errorf("face has %d vertices, at most %d are supported", len(fields), maxFaceVerts)
	}
	data := make([]int, 0, len(fields))
	for _, field := range fields {
		vi, err := m.faceIndex(field)
		if err != nil {
			return err
		}
		data = append(data, vi)
	}
	for i := 2; i < len(data); i++ {
		m.Tris = append(m.Tris, data[0], data[i-1], data[i])
	}
	return nil
}

// WriteObj writes the mesh as OBJ vertex and face records.
func (m *Mesh) WriteObj(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < m.VertCount(); i++ {
		v := m.Verts[i*3 : i*3+3]
		fmt.Fprintf(bw, "v %g %g %g\n", v[0], v[1], v[2])
	}
	for i := 0; i < m.TriCount(); i++ {
		t := m.Tris[i*3 : i*3+3]
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return bw.Flush()
}
