package microcontroller

import (
	"sort"
	"strings"

	"github.com/OpenTraceLab/swmc/pkg/markup"
)

// follow puts items that have a source rank in rank order. Items without a
// rank keep their place after the item that preceded them in items.
func follow[T any](items []T, rank func(T) (int, bool)) []T {
	type ranked struct {
		at   int
		rank int
	}
	var placed []ranked
	var fresh []int
	for i, item := range items {
		if r, ok := rank(item); ok {
			placed = append(placed, ranked{at: i, rank: r})
		} else {
			fresh = append(fresh, i)
		}
	}
	if len(fresh) == len(items) {
		return items
	}
	sort.SliceStable(placed, func(a, b int) bool { return placed[a].rank < placed[b].rank })

	order := make([]int, 0, len(items))
	for _, p := range placed {
		order = append(order, p.at)
	}
	for _, i := range fresh {
		// insert after the nearest earlier item already in the order
		pos := 0
		for k, at := range order {
			if at < i {
				pos = k + 1
			}
		}
		order = append(order, 0)
		copy(order[pos+1:], order[pos:])
		order[pos] = i
	}

	out := make([]T, 0, len(items))
	for _, at := range order {
		out = append(out, items[at])
	}
	return out
}

// arrange orders attrs as they appeared in source and reuses the source
// quote for values written back unchanged. Other values are double quoted
// unless their text holds a double quote and no apostrophe.
func arrange(attrs, source []markup.Attr) []markup.Attr {
	index := make(map[string]int, len(source))
	for i, a := range source {
		if _, ok := index[a.Name]; !ok {
			index[a.Name] = i
		}
	}
	out := follow(attrs, func(a markup.Attr) (int, bool) {
		i, ok := index[a.Name]
		return i, ok
	})
	for i := range out {
		a := &out[i]
		if j, ok := index[a.Name]; ok && source[j].Value == a.Value {
			a.Quote = source[j].Quote
			continue
		}
		a.Quote = '"'
		if strings.ContainsRune(a.Value, '"') && !strings.ContainsRune(a.Value, '\'') {
			a.Quote = '\''
		}
	}
	return out
}

// sectionRank ranks element children by the position of their name in names
func sectionRank(names []string) func(*markup.Node) (int, bool) {
	return func(n *markup.Node) (int, bool) {
		for i, name := range names {
			if name == n.Name {
				return i, true
			}
		}
		return 0, false
	}
}

// sections keeps the sections named in present, in that order. A section
// the source did not have is only added when it is listed in grow and has
// content. A nil present means the microcontroller was built in memory and
// every section is written.
func sections(all []*markup.Node, present []string, grow ...string) []*markup.Node {
	if present == nil {
		return all
	}
	rank := sectionRank(present)
	growing := sectionRank(grow)
	var kept []*markup.Node
	for _, n := range all {
		_, ok := rank(n)
		if _, g := growing(n); ok || (g && len(n.Children) > 0) {
			kept = append(kept, n)
		}
	}
	return follow(kept, rank)
}
