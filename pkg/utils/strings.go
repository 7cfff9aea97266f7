package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/huandu/xstrings"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	camelSplit = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitWords splits a string into words, handling camelCase, PascalCase, snake_case and kebab-case
func SplitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = RemoveAccents(s)
	s = camelSplit.ReplaceAllString(s, "$1 $2")

	parts := nonAlnum.Split(s, -1)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// ToPascalCase converts a string to PascalCase
func ToPascalCase(s string) string {
	parts := SplitWords(s)
	if len(parts) == 0 {
		return ""
	}

	b := strings.Builder{}
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(strings.ToLower(p[1:]))
		}
	}
	return b.String()
}

// ToCamelCase converts a string to camelCase
func ToCamelCase(s string) string {
	p := ToPascalCase(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// UpperFirst upper-cases the first rune and keeps the rest untouched.
// "createBook" becomes "CreateBook", "id" becomes "Id".
func UpperFirst(s string) string {
	return xstrings.FirstRuneToUpper(s)
}

// LowerFirst lower-cases the first rune and keeps the rest untouched.
func LowerFirst(s string) string {
	return xstrings.FirstRuneToLower(s)
}

// javaKeywords are reserved words that cannot name a Java parameter or field.
var javaKeywords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "class": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extends": true, "final": true, "finally": true, "float": true,
	"for": true, "goto": true, "if": true, "implements": true, "import": true,
	"instanceof": true, "int": true, "interface": true, "long": true, "native": true,
	"new": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true, "throws": true,
	"transient": true, "try": true, "void": true, "volatile": true, "while": true,
	"record": true, "sealed": true, "permits": true, "yield": true, "var": true,
}

// IsJavaKeyword reports whether s is reserved in Java.
func IsJavaKeyword(s string) bool {
	return javaKeywords[s]
}

// SplitNamespace splits a dot-segmented id into its package part and its
// simple name: "com.example.Book" gives ("com.example", "Book").
func SplitNamespace(id string) (pkg, name string) {
	i := strings.LastIndex(id, ".")
	if i < 0 {
		return "", id
	}
	return id[:i], id[i+1:]
}

// JoinNamespace joins non-empty dot-segmented parts.
func JoinNamespace(parts ...string) string {
	var out []string
	for _, p := range parts {
		for _, seg := range strings.Split(p, ".") {
			if seg != "" {
				out = append(out, seg)
			}
		}
	}
	return strings.Join(out, ".")
}
