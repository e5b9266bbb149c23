package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"snakefmt/internal/block"
	"snakefmt/internal/source"
)

// CheckBlockInvariants runs the span invariants of a classified file:
// 1) root span lies within the file content
// 2) every block span is non-empty and contained in its parent's span
// 3) sibling spans are in document order and do not overlap
// 4) sections lie inside their keyword block, values inside their section
func CheckBlockInvariants(root *block.Root, sf *source.File) error {
	if root == nil || sf == nil {
		return fmt.Errorf("nil root or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if root.Loc.File != sf.ID {
		return fmt.Errorf("root span points to different file id: got=%d want=%d", root.Loc.File, sf.ID)
	}
	if root.Loc.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", root.Loc.End, lenContent)
	}
	return checkBlocks(root.Blocks, root.Loc, "root")
}

func checkBlocks(blocks []block.Block, parent source.Span, where string) error {
	var prev source.Span
	for i, b := range blocks {
		sp := b.Span()
		if err := within(sp, parent, fmt.Sprintf("%s/%d", where, i)); err != nil {
			return err
		}
		if i > 0 && (sp.Start < prev.End || sp.Overlaps(prev)) {
			return fmt.Errorf("%s/%d: span %v overlaps or precedes sibling %v", where, i, sp, prev)
		}
		prev = sp

		switch b := b.(type) {
		case *block.Keyword:
			name := fmt.Sprintf("%s/%d(%s)", where, i, b.Keyword)
			if err := checkSections(b.Sections, sp, name); err != nil {
				return err
			}
			if err := checkBlocks(b.Body, sp, name); err != nil {
				return err
			}
		case *block.Conditional:
			if err := checkBlocks(b.Body, sp, fmt.Sprintf("%s/%d(%s)", where, i, b.Keyword)); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkSections(sections []*block.Section, parent source.Span, where string) error {
	var prev source.Span
	for i, s := range sections {
		name := fmt.Sprintf("%s/%s", where, s.Keyword)
		if err := within(s.Loc, parent, name); err != nil {
			return err
		}
		if i > 0 && s.Loc.Start < prev.End {
			return fmt.Errorf("%s: section span %v overlaps previous %v", name, s.Loc, prev)
		}
		prev = s.Loc
		for j, v := range s.Values {
			if err := within(v.Loc, s.Loc, fmt.Sprintf("%s/value%d", name, j)); err != nil {
				return err
			}
		}
		if err := checkBlocks(s.Body, s.Loc, name); err != nil {
			return err
		}
	}
	return nil
}

func within(sp, parent source.Span, where string) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("%s: empty span %v", where, sp)
	}
	if !parent.Contains(sp) {
		return fmt.Errorf("%s: span %v not within parent %v", where, sp, parent)
	}
	return nil
}
