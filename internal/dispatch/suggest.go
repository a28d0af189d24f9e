package dispatch

import "github.com/agnivade/levenshtein"

// suggest returns the child of the given node closest to the missing
// segment by edit distance, or "" when the node has no children. Ties are
// broken toward the lexicographically smaller name so suggestions stay
// deterministic across map iteration orders.
func (t *Tree) suggest(nodeIndex int, segment string) string {
	children := t.nodes[nodeIndex].children
	if len(children) == 0 {
		return ""
	}

	best := ""
	bestDistance := -1
	for name := range children {
		distance := levenshtein.ComputeDistance(segment, name)
		if bestDistance == -1 || distance < bestDistance ||
			(distance == bestDistance && name < best) {
			best = name
			bestDistance = distance
		}
	}

	return best
}
