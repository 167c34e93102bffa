// Package manifest reads and rewrites package declarations in MSBuild
// project files.
//
// Declarations are located with a token-level XML scan that records the byte
// span of each Version attribute value. Edits are spliced into the original
// bytes so that everything outside the edited values (whitespace, comments,
// attribute order, quoting, BOM) is written back unchanged.
package manifest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"go.trai.ch/zerr"
)

// Element and attribute names of a package declaration.
const (
	ItemGroupElement        = "ItemGroup"
	PackageReferenceElement = "PackageReference"
	IncludeAttr             = "Include"
	VersionAttr             = "Version"
)

var (
	// ErrMissingAttribute is returned when a PackageReference lacks Include or Version.
	ErrMissingAttribute = zerr.New("package reference is missing a required attribute")

	// ErrMalformed is returned when the document is not well-formed XML.
	ErrMalformed = zerr.New("malformed manifest")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// attrRe matches one attribute inside a start tag: name, then a single- or
// double-quoted value. Submatch 3 or 4 is the value without quotes.
var attrRe = regexp.MustCompile(`([A-Za-z_:][-A-Za-z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// Declaration is one PackageReference entry.
type Declaration struct {
	Name    string // Include attribute
	Version string // Version attribute, as currently held in the document
	Line    int    // 1-based line of the element start

	// Byte offsets of the Version attribute value (without quotes) in the
	// original document.
	valueStart int
	valueEnd   int
}

// Document is a loaded manifest with pending edits.
type Document struct {
	data  []byte
	decls []*Declaration
	edits map[*Declaration]string
}

// Load reads and parses the manifest at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse scans data for ItemGroup/PackageReference declarations. Element
// names are matched on their local part, so default-namespaced project files
// are handled too.
func Parse(data []byte) (*Document, error) {
	doc := &Document{data: data, edits: make(map[*Declaration]string)}

	// encoding/xml does not skip a BOM; decode past it and shift offsets back.
	base := 0
	if bytes.HasPrefix(data, utf8BOM) {
		base = len(utf8BOM)
	}

	dec := xml.NewDecoder(bytes.NewReader(data[base:]))
	var stack []string

	for {
		start := base + int(dec.InputOffset())
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, ErrMalformed.Error()), "offset", start)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name.Local)

			if t.Name.Local != PackageReferenceElement || parent != ItemGroupElement {
				continue
			}
			end := base + int(dec.InputOffset())
			decl, err := doc.declarationAt(t, start, end)
			if err != nil {
				return nil, err
			}
			doc.decls = append(doc.decls, decl)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	return doc, nil
}

// declarationAt builds a Declaration from a start element whose raw tag
// occupies data[start:end].
func (d *Document) declarationAt(el xml.StartElement, start, end int) (*Declaration, error) {
	line := 1 + bytes.Count(d.data[:start], []byte("\n"))

	var name string
	var hasName bool
	for _, a := range el.Attr {
		if a.Name.Space == "" && a.Name.Local == IncludeAttr {
			name, hasName = a.Value, true
		}
	}
	if !hasName {
		return nil, fmt.Errorf("line %d: %w", line, zerr.With(ErrMissingAttribute, "attribute", IncludeAttr))
	}

	raw := d.data[start:end]
	for _, m := range attrRe.FindAllSubmatchIndex(raw, -1) {
		if string(raw[m[2]:m[3]]) != VersionAttr {
			continue
		}
		vs, ve := m[4], m[5] // double-quoted
		if vs < 0 {
			vs, ve = m[6], m[7] // single-quoted
		}
		return &Declaration{
			Name:       name,
			Version:    attrValue(el, VersionAttr),
			Line:       line,
			valueStart: start + vs,
			valueEnd:   start + ve,
		}, nil
	}

	return nil, fmt.Errorf("package %q at line %d: %w", name, line, zerr.With(ErrMissingAttribute, "attribute", VersionAttr))
}

// attrValue returns the decoded value of an unprefixed attribute.
func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Declarations returns the package declarations in document order.
func (d *Document) Declarations() []*Declaration {
	return d.decls
}

// SetVersion replaces the Version attribute value of decl.
func (d *Document) SetVersion(decl *Declaration, version string) {
	d.edits[decl] = version
	decl.Version = version
}

// Changed reports whether any declaration has been edited.
func (d *Document) Changed() bool {
	return len(d.edits) > 0
}

// Bytes renders the document with all edits applied. Bytes outside edited
// attribute values are identical to the input.
func (d *Document) Bytes() []byte {
	if len(d.edits) == 0 {
		return append([]byte(nil), d.data...)
	}

	edited := make([]*Declaration, 0, len(d.edits))
	for decl := range d.edits {
		edited = append(edited, decl)
	}
	sort.Slice(edited, func(i, j int) bool { return edited[i].valueStart < edited[j].valueStart })

	var buf bytes.Buffer
	buf.Grow(len(d.data) + 16*len(edited))
	last := 0
	for _, decl := range edited {
		buf.Write(d.data[last:decl.valueStart])
		_ = xml.EscapeText(&buf, []byte(d.edits[decl]))
		last = decl.valueEnd
	}
	buf.Write(d.data[last:])
	return buf.Bytes()
}

// Save writes the document to path atomically: the content goes to a
// temporary file in the same directory which is then renamed over path.
// The mode of an existing file is preserved.
func (d *Document) Save(path string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(d.Bytes()); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return fmt.Errorf("setting mode on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
