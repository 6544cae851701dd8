package validator

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var cfgLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `%[^\n]*`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t\f\v\r]+`},
	{Name: "Number", Pattern: `[-+]?(?:0[xX][0-9a-fA-F]+|[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*`},
	{Name: "Other", Pattern: `[^\s]`},
})

type cfgFile struct {
	Lines []*cfgLine `parser:"( @@ | Newline )*"`
}

type cfgLine struct {
	Pos  lexer.Position
	Name string   `parser:"@Ident"`
	Args []string `parser:"( @Number | @Ident | @Other )*"`
}

var cfgParser = participle.MustBuild[cfgFile](
	participle.Lexer(cfgLexer),
	participle.Elide("Comment", "Whitespace"),
)

// Directive is one command line of a radar configuration file.
type Directive struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
	Line int      `json:"line"`
}

// ParseDirectives parses configuration text into directives. When the
// grammar rejects the text, a line-based split is returned together with the
// parse error so callers can still inspect command names.
func ParseDirectives(text []byte) ([]Directive, error) {
	file, err := cfgParser.ParseBytes("", text)
	if err != nil {
		return splitDirectives(text), err
	}
	out := make([]Directive, 0, len(file.Lines))
	for _, line := range file.Lines {
		out = append(out, Directive{Name: line.Name, Args: line.Args, Line: line.Pos.Line})
	}
	return out, nil
}

func splitDirectives(text []byte) []Directive {
	var out []Directive
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if idx := strings.Index(line, "%"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, Directive{Name: fields[0], Args: fields[1:], Line: lineNo})
	}
	return out
}
