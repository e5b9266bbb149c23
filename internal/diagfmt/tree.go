package diagfmt

import (
	"encoding/json"
	"io"

	"snakefmt/internal/block"
	"snakefmt/internal/source"
)

// NodeJSON is one block of the classification tree.
type NodeJSON struct {
	Type     string        `json:"type"`
	Keyword  string        `json:"keyword,omitempty"`
	Name     string        `json:"name,omitempty"`
	Header   string        `json:"header,omitempty"`
	Start    uint32        `json:"start_line"`
	End      uint32        `json:"end_line"`
	Blank    int           `json:"blank_before"`
	Comments []string      `json:"comments,omitempty"`
	Sections []SectionJSON `json:"sections,omitempty"`
	Body     []NodeJSON    `json:"body,omitempty"`
}

// SectionJSON is one parameter section.
type SectionJSON struct {
	Keyword string      `json:"keyword"`
	Arity   string      `json:"arity"`
	Values  []ValueJSON `json:"values,omitempty"`
	Body    []NodeJSON  `json:"body,omitempty"`
}

// ValueJSON is one section value.
type ValueJSON struct {
	Key      string   `json:"key,omitempty"`
	Text     string   `json:"text"`
	Comments []string `json:"comments,omitempty"`
}

// FormatTreeJSON выводит дерево блоков в JSON формате
func FormatTreeJSON(w io.Writer, root *block.Root, f *source.File) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(treeNodes(root.Blocks, f))
}

func treeNodes(blocks []block.Block, f *source.File) []NodeJSON {
	out := make([]NodeJSON, 0, len(blocks))
	for _, b := range blocks {
		sp := b.Span()
		n := NodeJSON{
			Start: f.Position(sp.Start).Line,
			End:   f.Position(sp.End).Line,
			Blank: b.Blank(),
		}
		switch b := b.(type) {
		case *block.Code:
			n.Type = "code"
		case *block.Conditional:
			n.Type = "conditional"
			n.Keyword = b.Keyword
			n.Header = b.Header
			n.Comments = b.Comments
			n.Body = treeNodes(b.Body, f)
		case *block.Keyword:
			n.Type = "keyword"
			n.Keyword = b.Keyword
			n.Name = b.Name
			n.Header = b.Header
			n.Comments = b.Comments
			n.Body = treeNodes(b.Body, f)
			for _, s := range b.Sections {
				n.Sections = append(n.Sections, treeSection(s, f))
			}
		}
		out = append(out, n)
	}
	return out
}

func treeSection(s *block.Section, f *source.File) SectionJSON {
	sj := SectionJSON{Keyword: s.Keyword, Arity: s.Arity.String(), Body: treeNodes(s.Body, f)}
	for _, v := range s.Values {
		sj.Values = append(sj.Values, ValueJSON{
			Key:      v.Key,
			Text:     block.JoinAtoms(v.Atoms),
			Comments: v.Comments,
		})
	}
	return sj
}
