package java

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blimu-dev/specgen/pkg/artifact"
)

// ErrUnbalanced is returned by Format when braces or parentheses do not pair up.
var ErrUnbalanced = errors.New("java: unbalanced brackets")

const indent = "    "

// Formatter formats Java artifacts and passes every other language through.
var Formatter artifact.Formatter = artifact.FormatterFunc(func(lang string, code []byte) ([]byte, error) {
	if lang != artifact.LangJava {
		return code, nil
	}
	return Format(code)
})

// Format reindents Java source by bracket depth. Lines are trimmed, runs of
// blank lines collapse into one, and blank lines are dropped right after an
// opening bracket and right before a closing one. String literals and comments
// do not count towards the depth.
func Format(code []byte) ([]byte, error) {
	var (
		out     strings.Builder
		depth   int
		comment bool
		blank   bool
		prev    string
	)
	lines := strings.Split(strings.ReplaceAll(string(code), "\r\n", "\n"), "\n")
	for n, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			blank = out.Len() > 0
			continue
		}

		level := depth
		if !comment {
			for _, r := range line {
				if r != '}' && r != ')' {
					break
				}
				level--
			}
		}
		if level < 0 {
			return nil, fmt.Errorf("%w: line %d closes more than it opens", ErrUnbalanced, n+1)
		}

		if blank && !opens(prev) && !closes(line) {
			out.WriteByte('\n')
		}
		blank = false

		out.WriteString(strings.Repeat(indent, level))
		if comment && strings.HasPrefix(line, "*") {
			out.WriteByte(' ')
		}
		out.WriteString(line)
		out.WriteByte('\n')
		prev = line

		var delta int
		delta, comment = scan(line, comment)
		depth += delta
		if depth < 0 {
			return nil, fmt.Errorf("%w: line %d closes more than it opens", ErrUnbalanced, n+1)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: %d brackets left open", ErrUnbalanced, depth)
	}
	if comment {
		return nil, fmt.Errorf("%w: unterminated comment", ErrUnbalanced)
	}
	return []byte(out.String()), nil
}

func opens(line string) bool {
	return strings.HasSuffix(line, "{") || strings.HasSuffix(line, "(")
}

func closes(line string) bool {
	return strings.HasPrefix(line, "}") || strings.HasPrefix(line, ")")
}

// scan returns the bracket balance of line and whether a block comment is
// still open at its end.
func scan(line string, comment bool) (int, bool) {
	var (
		delta int
		quote rune
	)
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case comment:
			if r == '*' && i+1 < len(rs) && rs[i+1] == '/' {
				comment = false
				i++
			}
		case quote != 0:
			if r == '\\' {
				i++
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '/' && i+1 < len(rs) && rs[i+1] == '/':
			return delta, false
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			comment = true
			i++
		case r == '{' || r == '(':
			delta++
		case r == '}' || r == ')':
			delta--
		}
	}
	return delta, comment
}
