package emit

import "github.com/wham/wiregen/internal/schema"

func (g *generator) generateEnum(e schema.Enum) {
	name := g.typeNames[e.Name]

	g.p("")
	g.p("// %s is generated from enum %s.", name, e.FullName)
	g.p("type %s int32", name)

	consts := make([]string, len(e.Values))
	for i, v := range e.Values {
		consts[i] = g.global(name + "_" + identifier(v.Name))
	}
	if len(e.Values) > 0 {
		g.p("")
		g.p("const (")
		g.in()
		for i, v := range e.Values {
			g.p("%s %s = %d", consts[i], name, v.Number)
		}
		g.out()
		g.p(")")
	}

	g.p("")
	g.p("func (x %s) String() string {", name)
	g.in()
	g.p("switch x {")
	seen := map[int32]bool{}
	for i, v := range e.Values {
		// Aliases share a number; the first name wins.
		if seen[v.Number] {
			continue
		}
		seen[v.Number] = true
		g.p("case %s:", consts[i])
		g.in()
		g.p("return %q", v.Name)
		g.out()
	}
	g.p("}")
	g.p("return strconv.Itoa(int(x))")
	g.out()
	g.p("}")
}
