package block

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of the tree, one node per line.
func Dump(w io.Writer, root *Root) error {
	d := dumper{w: w}
	d.blocks(root.Blocks, 0)
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) printf(level int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s"+format+"\n", append([]any{strings.Repeat("  ", level)}, args...)...)
}

func (d *dumper) blocks(bs []Block, level int) {
	for _, b := range bs {
		switch b := b.(type) {
		case *Code:
			d.printf(level, "Code lines=%d-%d depth=%d blank=%d", b.StartLine, b.EndLine, b.Depth, b.BlankBefore)
		case *Conditional:
			d.printf(level, "Conditional %q depth=%d blank=%d", b.Header, b.Depth, b.BlankBefore)
			d.blocks(b.Body, level+1)
		case *Keyword:
			label := b.Keyword
			switch {
			case b.Name != "":
				label += " " + b.Name
			case b.Header != "":
				label += " " + b.Header
			}
			d.printf(level, "Keyword %s depth=%d blank=%d", label, b.Depth, b.BlankBefore)
			d.comments(b.Comments, level+1)
			for _, s := range b.Sections {
				d.section(s, level+1)
			}
			d.blocks(b.Body, level+1)
			d.comments(b.Trailing, level+1)
		}
	}
}

func (d *dumper) section(s *Section, level int) {
	d.comments(s.Comments, level)
	d.printf(level, "Section %s (%s) values=%d", s.Keyword, s.Arity, len(s.Values))
	for _, v := range s.Values {
		d.comments(v.Leading, level+1)
		text := JoinAtoms(v.Atoms)
		if v.Key != "" {
			text = v.Key + "=" + text
		}
		if len(v.Comments) > 0 {
			text += "  " + strings.Join(v.Comments, "  ")
		}
		d.printf(level+1, "Value %s", text)
	}
	d.blocks(s.Body, level+1)
	d.comments(s.Trailing, level+1)
}

func (d *dumper) comments(cs []string, level int) {
	for _, c := range cs {
		d.printf(level, "Comment %s", c)
	}
}

// JoinAtoms concatenates atom texts separated by single spaces; it is meant
// for debugging output only.
func JoinAtoms(atoms []Atom) string {
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = a.Text
	}
	return strings.Join(parts, " ")
}
