package cp2k

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Keyword is a single "NAME value..." line inside a section.
type Keyword struct {
	Name   string
	Values []string
}

// Section is one &NAME ... &END NAME block. Section and keyword names are
// normalized to upper case on parse; CP2K treats them case-insensitively.
type Section struct {
	Name     string
	Params   []string
	Keywords []Keyword
	Sections []*Section
}

// Input is a parsed CP2K input file: an ordered list of top-level sections.
type Input struct {
	Sections []*Section
}

// --- grammar ---
//
// The CP2K input format is line oriented: a section opens with "&NAME", may
// carry parameters on the same line, contains keyword lines and nested
// sections, and closes with "&END" (optionally repeating the name).

var inputLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "comment", Pattern: `[#!][^\n]*`},
	{Name: "SectionEnd", Pattern: `(?i)&END\b`},
	{Name: "SectionStart", Pattern: `&`},
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "whitespace", Pattern: `[ \t]+`},
	{Name: "Bareword", Pattern: `[^ \t\r\n&#!]+`},
})

type rawInput struct {
	Entries []*rawTopEntry `parser:"@@*"`
}

type rawTopEntry struct {
	Blank   bool        `parser:"  @EOL"`
	Section *rawSection `parser:"| @@"`
}

type rawSection struct {
	Name    string      `parser:"SectionStart @Bareword"`
	Params  []string    `parser:"@Bareword* EOL"`
	Entries []*rawEntry `parser:"@@*"`
	EndName []string    `parser:"SectionEnd @Bareword* EOL"`
}

type rawEntry struct {
	Blank   bool        `parser:"  @EOL"`
	Section *rawSection `parser:"| @@"`
	Keyword *rawKeyword `parser:"| @@"`
}

type rawKeyword struct {
	Name   string   `parser:"@Bareword"`
	Values []string `parser:"@Bareword* EOL"`
}

var inputParser = participle.MustBuild[rawInput](
	participle.Lexer(inputLexer),
)

// ParseString parses CP2K input text into its structured form.
func ParseString(src string) (*Input, error) {
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	raw, err := inputParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("cp2k: parse input: %w", err)
	}
	in := &Input{}
	for _, e := range raw.Entries {
		if e.Section != nil {
			in.Sections = append(in.Sections, e.Section.normalize())
		}
	}
	return in, nil
}

// Parse parses CP2K input text from a reader.
func Parse(r io.Reader) (*Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cp2k: read input: %w", err)
	}
	return ParseString(string(data))
}

// ParseFile parses the CP2K input file at path.
func ParseFile(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cp2k: read input file %s: %w", path, err)
	}
	in, err := ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

func (r *rawSection) normalize() *Section {
	s := &Section{
		Name:   strings.ToUpper(r.Name),
		Params: append([]string(nil), r.Params...),
	}
	for _, e := range r.Entries {
		switch {
		case e.Section != nil:
			s.Sections = append(s.Sections, e.Section.normalize())
		case e.Keyword != nil:
			s.Keywords = append(s.Keywords, Keyword{
				Name:   strings.ToUpper(e.Keyword.Name),
				Values: append([]string(nil), e.Keyword.Values...),
			})
		}
	}
	return s
}

// Clone returns a deep copy of the input.
func (in *Input) Clone() *Input {
	out := &Input{Sections: make([]*Section, 0, len(in.Sections))}
	for _, s := range in.Sections {
		out.Sections = append(out.Sections, s.Clone())
	}
	return out
}

// Clone returns a deep copy of the section.
func (s *Section) Clone() *Section {
	out := &Section{
		Name:   s.Name,
		Params: append([]string(nil), s.Params...),
	}
	for _, k := range s.Keywords {
		out.Keywords = append(out.Keywords, Keyword{
			Name:   k.Name,
			Values: append([]string(nil), k.Values...),
		})
	}
	for _, sub := range s.Sections {
		out.Sections = append(out.Sections, sub.Clone())
	}
	return out
}

// Section returns the first top-level section with the given name, or nil.
func (in *Input) Section(name string) *Section {
	name = strings.ToUpper(name)
	for _, s := range in.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// SectionCount reports how many top-level sections carry the given name.
func (in *Input) SectionCount(name string) int {
	name = strings.ToUpper(name)
	n := 0
	for _, s := range in.Sections {
		if s.Name == name {
			n++
		}
	}
	return n
}

// EnsureSection returns the first top-level section with the given name,
// appending an empty one if it does not exist yet.
func (in *Input) EnsureSection(name string) *Section {
	if s := in.Section(name); s != nil {
		return s
	}
	s := &Section{Name: strings.ToUpper(name)}
	in.Sections = append(in.Sections, s)
	return s
}

// Sub returns the first subsection with the given name, or nil.
func (s *Section) Sub(name string) *Section {
	name = strings.ToUpper(name)
	for _, sub := range s.Sections {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

// EnsureSub returns the first subsection with the given name, appending an
// empty one if it does not exist yet.
func (s *Section) EnsureSub(name string) *Section {
	if sub := s.Sub(name); sub != nil {
		return sub
	}
	sub := &Section{Name: strings.ToUpper(name)}
	s.Sections = append(s.Sections, sub)
	return sub
}

// SetKeyword replaces the values of the named keyword, appending the keyword
// if it is not present. Setting the same keyword twice is idempotent.
func (s *Section) SetKeyword(name string, values ...string) {
	name = strings.ToUpper(name)
	for i := range s.Keywords {
		if s.Keywords[i].Name == name {
			s.Keywords[i].Values = append([]string(nil), values...)
			return
		}
	}
	s.Keywords = append(s.Keywords, Keyword{Name: name, Values: append([]string(nil), values...)})
}

// KeywordValues returns the values of the named keyword and whether it exists.
func (s *Section) KeywordValues(name string) ([]string, bool) {
	name = strings.ToUpper(name)
	for _, k := range s.Keywords {
		if k.Name == name {
			return k.Values, true
		}
	}
	return nil, false
}
