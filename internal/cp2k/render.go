package cp2k

import (
	"os"
	"strings"
)

// Render writes the input tree back to CP2K syntax. Keywords come before
// subsections within a section; blocks are indented by two spaces per level.
func (in *Input) Render() string {
	var b strings.Builder
	for _, s := range in.Sections {
		renderSection(&b, s, 0)
	}
	return b.String()
}

// WriteFile renders the input and writes it to path.
func (in *Input) WriteFile(path string) error {
	return os.WriteFile(path, []byte(in.Render()), 0o644)
}

func renderSection(b *strings.Builder, s *Section, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('&')
	b.WriteString(s.Name)
	for _, p := range s.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	b.WriteByte('\n')

	for _, k := range s.Keywords {
		b.WriteString(indent)
		b.WriteString("  ")
		b.WriteString(k.Name)
		for _, v := range k.Values {
			b.WriteByte(' ')
			b.WriteString(v)
		}
		b.WriteByte('\n')
	}
	for _, sub := range s.Sections {
		renderSection(b, sub, depth+1)
	}

	b.WriteString(indent)
	b.WriteString("&END ")
	b.WriteString(s.Name)
	b.WriteByte('\n')
}
