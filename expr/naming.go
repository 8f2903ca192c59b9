package expr

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// TagName is the struct tag that renames or hides a bean field:
//
//	type Query struct {
//		UserIDs []int64 `eql:"ids"`
//		Secret  string  `eql:"-"`
//	}
const TagName = "eql"

type beanField struct {
	index int
	names []string
}

// beanLayouts caches the exposed fields per struct type.
var beanLayouts sync.Map // reflect.Type -> []beanField

func layoutOf(rt reflect.Type) []beanField {
	if cached, ok := beanLayouts.Load(rt); ok {
		return cached.([]beanField)
	}

	fields := make([]beanField, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(TagName)
		if tag == "-" {
			continue
		}

		names := []string{f.Name}
		if prop := propertyName(f.Name); prop != f.Name {
			names = append(names, prop)
		}
		if tag != "" && tag != f.Name {
			names = append(names, tag)
		}
		fields = append(fields, beanField{index: i, names: names})
	}

	actual, _ := beanLayouts.LoadOrStore(rt, fields)
	return actual.([]beanField)
}

// propertyName lower-cases the leading word of a Go field name, keeping
// initialisms together: Name -> name, ID -> id, UserID -> userID,
// HTTPServer -> httpServer.
func propertyName(name string) string {
	runes := []rune(name)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return name
	}

	n := 1
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	// in "HTTPServer" the S starts the next word
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range runes[:n] {
		b.WriteRune(unicode.ToLower(r))
	}
	b.WriteString(string(runes[n:]))
	return b.String()
}
