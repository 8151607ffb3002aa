package model

import "sort"

// SortSiblings orders nodes by label, except that an Object always goes
// before a Tag whatever their labels. Objects and Tags are laid out first
// (objects, then tags, each by label) and the other kinds are merged into
// that run by label. Equal labels keep their arrival order.
func SortSiblings[T any](nodes []T, kind func(T) EntityKind, label func(T) string) {
	type entry struct {
		node  T
		label string
		pos   int
	}
	var pinned, rest []entry
	for i, n := range nodes {
		e := entry{node: n, label: label(n), pos: i}
		switch kind(n) {
		case KindObject, KindTag:
			pinned = append(pinned, e)
		default:
			rest = append(rest, e)
		}
	}
	sort.SliceStable(pinned, func(i, j int) bool {
		oi, oj := kind(pinned[i].node) == KindObject, kind(pinned[j].node) == KindObject
		if oi != oj {
			return oi
		}
		return pinned[i].label < pinned[j].label
	})
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].label < rest[j].label })

	before := func(a, b entry) bool {
		if a.label != b.label {
			return a.label < b.label
		}
		return a.pos < b.pos
	}
	i, j := 0, 0
	for k := range nodes {
		if j < len(rest) && (i == len(pinned) || before(rest[j], pinned[i])) {
			nodes[k] = rest[j].node
			j++
			continue
		}
		nodes[k] = pinned[i].node
		i++
	}
}
