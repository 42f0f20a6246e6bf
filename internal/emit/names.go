package emit

import (
	"go/token"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wham/wiregen/internal/mapper"
)

// camelCase joins the underscore-separated parts of name, capitalizing each:
// "order_id" becomes "OrderId".
func camelCase(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return identifier(b.String())
}

// exported upper-cases the first letter of name and keeps the rest,
// including underscores from flattened nesting.
func exported(name string) string {
	if name == "" {
		return "X"
	}
	r, size := utf8.DecodeRuneInString(name)
	return identifier(string(unicode.ToUpper(r)) + name[size:])
}

func unexported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// identifier replaces anything that cannot appear in a Go identifier.
func identifier(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('X')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}

// packageName picks the Go package clause: an explicit override, then the
// go_package option, then the last proto package segment, then the file's
// base name.
func packageName(file *mapper.File, opts Options) string {
	name := opts.Package
	if name == "" && file.Source != nil {
		src := file.Source
		switch {
		case src.GoPackage != "":
			name = src.GoPackage
			if i := strings.LastIndexByte(name, ';'); i >= 0 {
				name = name[i+1:]
			} else {
				name = path.Base(name)
			}
		case src.Package != "":
			name = src.Package[strings.LastIndexByte(src.Package, '.')+1:]
		default:
			base := path.Base(src.Name)
			name = strings.TrimSuffix(base, path.Ext(base))
		}
	}
	if name == "" {
		name = "wiregen"
	}
	name = identifier(name)
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}
