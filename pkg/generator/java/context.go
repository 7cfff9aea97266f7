// Package java renders records and tagged unions as Java records and sealed
// interfaces.
package java

import (
	"strings"
	"unicode"

	"github.com/blimu-dev/specgen/pkg/utils"
)

// Dependencies recorded on a module. Types of java.lang are never recorded.
const (
	TypeBigDecimal    = "java.math.BigDecimal"
	TypeLocalDate     = "java.time.LocalDate"
	TypeLocalTime     = "java.time.LocalTime"
	TypeLocalDateTime = "java.time.LocalDateTime"
	TypeUUID          = "java.util.UUID"
	TypeList          = "java.util.List"
	TypeSet           = "java.util.Set"
	TypeMap           = "java.util.Map"
	TypeNullable      = "org.jspecify.annotations.Nullable"
	TypeNullMarked    = "org.jspecify.annotations.NullMarked"
	TypeJSONProperty  = "com.fasterxml.jackson.annotation.JsonProperty"
	TypeJSONCreator   = "com.fasterxml.jackson.annotation.JsonCreator"
	TypeJSONValue     = "com.fasterxml.jackson.annotation.JsonValue"
)

// Context resolves model ids to Java names below a base namespace.
type Context struct {
	BaseNamespace string
}

// NewContext returns a context for baseNamespace, e.g. "com.example".
func NewContext(baseNamespace string) *Context {
	return &Context{BaseNamespace: baseNamespace}
}

// QualifiedName returns the fully qualified name of id.
func (c *Context) QualifiedName(id string) string {
	return utils.JoinNamespace(c.BaseNamespace, id)
}

// ResolveID splits id into its package and simple name.
func (c *Context) ResolveID(id string) (pkg, simple string) {
	return utils.SplitNamespace(c.QualifiedName(id))
}

// Path returns the source file path of id relative to the output root:
// "books.Book" under "com.example" gives "com/example/books/Book.java".
func (c *Context) Path(id string) string {
	return strings.ReplaceAll(c.QualifiedName(id), ".", "/") + ".java"
}

// FieldName turns a property name into a Java identifier. Names that are
// already valid identifiers are kept; others are camel-cased, and keywords get
// a trailing underscore, as do the names of java.lang.Object methods, which a
// record accessor cannot take.
func FieldName(name string) string {
	n := name
	if !isIdentifier(n) {
		n = utils.ToCamelCase(n)
		if n == "" || !isIdentifier(n) {
			n = "_" + n
		}
	}
	if utils.IsJavaKeyword(n) || objectMethods[n] {
		n += "_"
	}
	return n
}

var objectMethods = map[string]bool{
	"clone": true, "finalize": true, "getClass": true, "hashCode": true,
	"notify": true, "notifyAll": true, "toString": true, "wait": true,
}

// TypeName turns a variant, operation or response name into a Java type name.
func TypeName(name string) string {
	if isIdentifier(name) {
		return utils.UpperFirst(name)
	}
	return utils.ToPascalCase(name)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
