// Package dag is the region graph used by the noCycles checker: nodes are
// architectural regions, edges are "some file here imports a file there".
package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type NodeID uint32

type Index struct {
	NameToID map[string]NodeID
	IDToName []string
}

// BuildIndex собирает уникальные имена, сортирует и раздаёт ID по порядку,
// поэтому порядок обхода графа не зависит от порядка объявления.
func BuildIndex(names []string) Index {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	nameToID := make(map[string]NodeID, len(sorted))
	for i, name := range sorted {
		id, err := safecast.Conv[NodeID](i)
		if err != nil {
			panic(fmt.Errorf("node id overflow: %w", err))
		}
		nameToID[name] = id
	}
	return Index{NameToID: nameToID, IDToName: sorted}
}

func (idx Index) Len() int { return len(idx.IDToName) }

func (idx Index) Name(id NodeID) string { return idx.IDToName[int(id)] }

// Names maps ids to names.
func (idx Index) Names(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
