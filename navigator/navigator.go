// Package navigator implements the Tree Navigator (spec.md §4.B): it
// executes tree-sitter queries and resolves node text/line ranges,
// normalizing tree-sitter's 0-based coordinates to the 1-based coordinates
// used everywhere else in this module.
//
// Grounded on the direct node.StartByte()/EndByte()/StartPoint().Row+1
// idioms used throughout providers/python/config.go and
// providers/typescript/config.go in the teacher repository (there inlined
// per-provider; spec §4.B calls for one shared component, so this package
// generalizes the teacher's idiom rather than copying its duplication).
package navigator

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Match pairs named captures from one tree-sitter query match.
type Match map[string]*sitter.Node

// ExecuteQuery runs query against tree and returns one Match per query
// match, in source order (by start byte) — never by capture order, per
// spec §4.B: "matches are paired in source order... never by capture
// order."
func ExecuteQuery(lang *sitter.Language, tree *sitter.Tree, source []byte, queryString string) ([]Match, error) {
	q, err := sitter.NewQuery([]byte(queryString), lang)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var matches []Match
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, source)
		match := make(Match, len(m.Captures))
		for _, cap := range m.Captures {
			name := q.CaptureNameForId(cap.Index)
			match[name] = cap.Node
		}
		matches = append(matches, match)
	}

	sortMatchesBySourceOrder(matches)
	return matches, nil
}

func sortMatchesBySourceOrder(matches []Match) {
	start := func(m Match) uint32 {
		var min uint32
		first := true
		for _, n := range m {
			b := n.StartByte()
			if first || b < min {
				min = b
				first = false
			}
		}
		return min
	}
	// Insertion sort: match counts per file are small and this keeps the
	// comparator simple and allocation-free.
	for i := 1; i < len(matches); i++ {
		j := i
		for j > 0 && start(matches[j-1]) > start(matches[j]) {
			matches[j-1], matches[j] = matches[j], matches[j-1]
			j--
		}
	}
}

// NodeText returns the exact source slice a node occupies.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// NodeRange returns a node's 1-based, inclusive (start_line, end_line).
func NodeRange(node *sitter.Node) (startLine, endLine int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}

// NodeCols returns a node's 1-based (start_col, end_col), matching the
// four-field Range used by the element package.
func NodeCols(node *sitter.Node) (startCol, endCol int) {
	return int(node.StartPoint().Column) + 1, int(node.EndPoint().Column) + 1
}

// FindFirstAncestor walks up from node and returns the nearest ancestor
// whose type is in kinds, or nil if none exists.
func FindFirstAncestor(node *sitter.Node, kinds []string) *sitter.Node {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if set[cur.Type()] {
			return cur
		}
	}
	return nil
}
