package allocation

import "fmt"

// AssetAllocationTree returns the actual versus desired allocation of the
// whole tree, one row per asset class with money mapped to it, in pre-order.
// levels limits the depth below the root, -1 meaning no limit.
func (p *Portfolio) AssetAllocationTree(levels int) ([]AllocationRow, error) {
	values, err := p.LeafValues()
	if err != nil {
		return nil, err
	}
	return p.classes.ComputeAllocation(values, levels)
}

// AssetAllocation reports the allocation across the named asset classes
// only. The classes must form a cut of the tree: none may be an ancestor of
// another and together they must cover the whole tree.
func (p *Portfolio) AssetAllocation(classNames []string) ([]AllocationEntry, error) {
	values, err := p.LeafValues()
	if err != nil {
		return nil, err
	}

	flat := NewAssetClass("Root")
	for _, name := range classNames {
		node, ratio, err := p.classes.Find(name)
		if err != nil {
			return nil, err
		}
		flat.AddSubclass(ratio, node)
	}
	if _, err := flat.Validate(); err != nil {
		return nil, validationErrorf("asset allocation called with overlapping asset classes or asset classes which do not cover the full tree")
	}

	rows, err := flat.ComputeAllocation(values, 0)
	if err != nil {
		return nil, err
	}
	return rows[0].Children, nil
}

// CompactGroup is one asset class cell on a path of the compact allocation
// report.
type CompactGroup struct {
	Name         string
	ActualRatio  float64
	DesiredRatio float64
}

// CompactRow is one root-to-leaf path of the compact allocation report.
// Groups has one entry per tree level, nil where the row belongs to the same
// block as the row above. Leaf is the allocation of the path's leaf class.
type CompactRow struct {
	Groups []*CompactGroup
	Leaf   AllocationEntry
}

// CompactAllocation is the allocation tree in horizontal format: one row per
// leaf class, the columns following the path from the root down to it.
type CompactAllocation struct {
	Depth int
	Rows  []*CompactRow
}

// AssetAllocationCompact returns the allocation tree in horizontal format.
func (p *Portfolio) AssetAllocationCompact() (*CompactAllocation, error) {
	allocs, err := p.AssetAllocationTree(-1)
	if err != nil {
		return nil, err
	}

	var rows []*CompactRow
	for _, alloc := range allocs {
		if len(alloc.Children) == 0 {
			continue
		}
		if len(rows) == 0 {
			for _, child := range alloc.Children {
				rows = append(rows, &CompactRow{Groups: []*CompactGroup{{
					Name:         child.Name,
					ActualRatio:  child.ActualRatio,
					DesiredRatio: child.DesiredRatio,
				}}})
			}
			continue
		}

		// The parent of these children is already the tail of some row.
		// Its siblings' rows continue below it, blank at the upper
		// levels.
		idx := lastGroupIndex(rows, alloc.Name)
		if idx < 0 {
			return nil, fmt.Errorf("compact allocation: class %q not laid out", alloc.Name)
		}
		width := len(rows[idx].Groups)
		for i := 1; i < len(alloc.Children); i++ {
			blank := &CompactRow{Groups: make([]*CompactGroup, width)}
			rows = append(rows, nil)
			copy(rows[idx+2:], rows[idx+1:])
			rows[idx+1] = blank
		}
		for i, child := range alloc.Children {
			rows[idx+i].Groups = append(rows[idx+i].Groups, &CompactGroup{
				Name:         child.Name,
				ActualRatio:  child.ActualRatio,
				DesiredRatio: child.DesiredRatio,
			})
		}
	}

	if len(rows) == 0 {
		return &CompactAllocation{}, nil
	}

	depth := 0
	for _, row := range rows {
		if len(row.Groups) > depth {
			depth = len(row.Groups)
		}
	}
	for _, row := range rows {
		for len(row.Groups) < depth {
			row.Groups = append(row.Groups, nil)
		}
	}

	entries, err := p.AssetAllocation(p.LeafNames())
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		idx := lastGroupIndex(rows, entry.Name)
		if idx < 0 {
			return nil, fmt.Errorf("compact allocation: leaf %q not laid out", entry.Name)
		}
		rows[idx].Leaf = entry
	}

	return &CompactAllocation{Depth: depth, Rows: rows}, nil
}

// lastGroupIndex returns the row whose deepest laid out class is name.
func lastGroupIndex(rows []*CompactRow, name string) int {
	for i, row := range rows {
		for j := len(row.Groups) - 1; j >= 0; j-- {
			if group := row.Groups[j]; group != nil {
				if group.Name == name {
					return i
				}
				break
			}
		}
	}
	return -1
}
