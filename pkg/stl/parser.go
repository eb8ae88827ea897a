package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/stlfaces/pkg/geometry"
)

// sniffSize is how much of the file is inspected to tell ASCII from binary
const sniffSize = 512

// binaryFacetSize is normal + 3 vertices (12 float32) + attribute count (uint16)
const binaryFacetSize = 50

// ParseError reports a malformed facet. Parsing stops at the first one so
// callers never see a partially read facet.
type ParseError struct {
	Line  int // 1-based line for ASCII files, 0 for binary
	Facet int // 0-based facet index
	Msg   string
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	fmt.Fprintf(&b, "facet %d: %s", e.Facet, e.Msg)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads an STL file and returns a Model
// It automatically detects whether the file is ASCII or binary format
func Parse(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader parses STL data from r. Binary files whose 80-byte header
// happens to start with "solid" are recognised by the absence of facet keywords.
func ParseReader(r io.ReadSeeker) (*Model, error) {
	header := make([]byte, sniffSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("failed to read file header: %w", io.ErrUnexpectedEOF)
	}
	header = header[:n]

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to reset file pointer: %w", err)
	}

	if isASCII(header) {
		return parseASCII(r)
	}
	return parseBinary(r)
}

func isASCII(header []byte) bool {
	trimmed := bytes.TrimLeft(header, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("solid")) {
		return false
	}
	return bytes.Contains(trimmed, []byte("facet")) || bytes.Contains(trimmed, []byte("endsolid"))
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var (
		currentNormal geometry.Vector3
		vertices      []geometry.Vector3
		inFacet       bool
		lineNo        int
	)

	fail := func(msg string, err error) error {
		return &ParseError{Line: lineNo, Facet: model.TriangleCount(), Msg: msg, Err: err}
	}

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if inFacet {
				return nil, fail("facet without endfacet", nil)
			}
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fail("expected 'facet normal nx ny nz'", nil)
			}
			normal, err := parseVector(fields[2:5])
			if err != nil {
				return nil, fail("invalid normal", err)
			}
			currentNormal = normal
			vertices = vertices[:0]
			inFacet = true

		case "outer", "endloop":

		case "vertex":
			if !inFacet {
				return nil, fail("vertex outside facet", nil)
			}
			if len(fields) != 4 {
				return nil, fail("expected 'vertex x y z'", nil)
			}
			if len(vertices) == 3 {
				return nil, fail("more than 3 vertices", nil)
			}
			v, err := parseVector(fields[1:4])
			if err != nil {
				return nil, fail("invalid vertex", err)
			}
			vertices = append(vertices, v)

		case "endfacet":
			if !inFacet {
				return nil, fail("endfacet without facet", nil)
			}
			if len(vertices) != 3 {
				return nil, fail(fmt.Sprintf("expected 3 vertices, got %d", len(vertices)), nil)
			}
			model.AddTriangle(geometry.NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			inFacet = false

		case "endsolid":
			if inFacet {
				return nil, fail("endsolid inside facet", nil)
			}

		default:
			return nil, fail(fmt.Sprintf("unexpected keyword %q", fields[0]), nil)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	if inFacet {
		return nil, fail("unexpected end of file inside facet", io.ErrUnexpectedEOF)
	}

	return model, nil
}

func parseVector(fields []string) (geometry.Vector3, error) {
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, err
		}
		c[i] = v
	}
	return geometry.NewVector3(c[0], c[1], c[2]), nil
}

// parseBinary parses a binary STL file
func parseBinary(reader io.Reader) (*Model, error) {
	model := NewModel("")

	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	model.Name = strings.TrimSpace(string(bytes.TrimRight(header, "\x00")))

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("failed to read triangle count: %w", err)
	}

	record := make([]byte, binaryFacetSize)
	for i := uint32(0); i < triangleCount; i++ {
		if _, err := io.ReadFull(reader, record); err != nil {
			return nil, &ParseError{Facet: int(i), Msg: "short facet record", Err: err}
		}

		var v [4]geometry.Vector3
		for k := range v {
			off := k * 12
			v[k] = geometry.NewVector3(
				float64(math.Float32frombits(binary.LittleEndian.Uint32(record[off:]))),
				float64(math.Float32frombits(binary.LittleEndian.Uint32(record[off+4:]))),
				float64(math.Float32frombits(binary.LittleEndian.Uint32(record[off+8:]))),
			)
		}
		// The trailing attribute byte count is ignored.

		model.AddTriangle(geometry.NewTriangle(v[0], v[1], v[2], v[3]))
	}

	return model, nil
}

// WriteBinary writes the model in binary STL format
func WriteBinary(w io.Writer, model *Model) error {
	header := make([]byte, 80)
	copy(header, model.Name)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(model.Triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	record := make([]byte, binaryFacetSize)
	for i, t := range model.Triangles {
		for k, v := range [4]geometry.Vector3{t.Normal, t.V1, t.V2, t.V3} {
			off := k * 12
			binary.LittleEndian.PutUint32(record[off:], math.Float32bits(float32(v.X)))
			binary.LittleEndian.PutUint32(record[off+4:], math.Float32bits(float32(v.Y)))
			binary.LittleEndian.PutUint32(record[off+8:], math.Float32bits(float32(v.Z)))
		}
		if _, err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}
	return nil
}
