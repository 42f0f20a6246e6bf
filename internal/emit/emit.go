// Package emit renders a resolved schema unit as Go source that encodes
// through pkg/wire.
package emit

import (
	"fmt"
	"go/format"
	"path"
	"path/filepath"
	"strings"

	"github.com/wham/wiregen/internal/mapper"
)

// WireImportPath is the import path of the runtime generated code uses.
const WireImportPath = "github.com/wham/wiregen/pkg/wire"

const outputSuffix = ".wire.go"

type Options struct {
	// Package overrides the derived package name.
	Package string
	// Source is the name shown in the header. Defaults to the schema unit's
	// file name.
	Source string
}

// OutputName returns the generated file name for source: its base name with
// the extension replaced by ".wire.go".
func OutputName(source string) string {
	base := path.Base(filepath.ToSlash(source))
	return strings.TrimSuffix(base, path.Ext(base)) + outputSuffix
}

// Generate renders file as one gofmt-formatted Go source file. Output is a
// pure function of file and opts.
func Generate(file *mapper.File, opts Options) ([]byte, error) {
	g := newGenerator(file, opts)
	if err := g.generate(); err != nil {
		return nil, err
	}
	src, err := format.Source([]byte(g.b.String()))
	if err != nil {
		return nil, fmt.Errorf("emit %s: failed to format generated code: %w", g.source, err)
	}
	return src, nil
}

type generator struct {
	b      strings.Builder
	indent string
	file   *mapper.File
	source string
	pkg    string

	// globals holds every package-level identifier handed out so far.
	globals map[string]bool
	// typeNames maps flattened schema names to Go type identifiers.
	typeNames map[string]string
}

func newGenerator(file *mapper.File, opts Options) *generator {
	source := opts.Source
	if source == "" && file.Source != nil {
		source = file.Source.Name
	}
	return &generator{
		file:      file,
		source:    source,
		pkg:       packageName(file, opts),
		globals:   map[string]bool{},
		typeNames: map[string]string{},
	}
}

func (g *generator) p(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if line == "" {
		g.b.WriteString("\n")
		return
	}
	g.b.WriteString(g.indent)
	g.b.WriteString(line)
	g.b.WriteString("\n")
}

func (g *generator) in()  { g.indent += "\t" }
func (g *generator) out() { g.indent = g.indent[:len(g.indent)-1] }

// global reserves a package-level identifier, appending "_" until it is
// unused.
func (g *generator) global(name string) string {
	for g.globals[name] {
		name += "_"
	}
	g.globals[name] = true
	return name
}

func (g *generator) generate() error {
	for _, e := range g.file.Enums {
		g.typeNames[e.Name] = g.global(exported(e.Name))
	}
	for _, m := range g.file.Messages {
		g.typeNames[m.Name] = g.global(exported(m.Name))
	}

	g.p("// Code generated by wiregen. DO NOT EDIT.")
	if g.source != "" {
		g.p("// source: %s", g.source)
	}
	g.p("")
	g.p("package %s", g.pkg)
	g.p("")
	if len(g.file.Enums) > 0 {
		g.p("import (")
		g.in()
		g.p("%q", "strconv")
		g.p("")
		g.p("%q", WireImportPath)
		g.out()
		g.p(")")
	} else {
		g.p("import %q", WireImportPath)
	}

	for _, e := range g.file.Enums {
		g.generateEnum(e)
	}
	for _, m := range g.file.Messages {
		mg, err := g.newMessage(m)
		if err != nil {
			return err
		}
		mg.generate()
	}
	return nil
}
