package allocation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// ratioTolerance is the tolerance used when checking that ratios sum to 1.
const ratioTolerance = 1e-6

// AssetClass is a node in the desired asset allocation tree.
//
// Each node has a name, unique across the whole tree, and an ordered list of
// sub-classes, each weighted by a ratio. Ratios of the sub-classes of a node
// must sum to 1. Examples of asset classes: "All", "Equity", "Bonds", "US",
// "Intl".
//
// A tree is built by composition, NewAssetClass("Equity").AddSubclass(...),
// and must be validated with Validate before any query. Mutating a node
// invalidates its cached leaf set and requires a new Validate call on the
// root.
type AssetClass struct {
	name     string
	children []SubClass
	// leaves caches the leaf class names of this subtree. It is populated
	// by Validate and reset to nil by AddSubclass.
	leaves map[string]bool
}

// SubClass is a child of an AssetClass together with its desired ratio.
type SubClass struct {
	Class *AssetClass
	Ratio float64
}

// NewAssetClass returns a new leaf asset class named name.
func NewAssetClass(name string) *AssetClass {
	return &AssetClass{name: name}
}

// Name returns the name of this asset class.
func (c *AssetClass) Name() string { return c.name }

// Children returns the direct sub-classes of this asset class, in the order
// they were added.
func (c *AssetClass) Children() []SubClass { return c.children }

// AddSubclass appends child with the given desired ratio to this asset class
// and returns the receiver for chaining. The cached leaf set of this node is
// invalidated, the root must be validated again before queries.
func (c *AssetClass) AddSubclass(ratio float64, child *AssetClass) *AssetClass {
	c.children = append(c.children, SubClass{Class: child, Ratio: ratio})
	c.leaves = nil
	return c
}

// Copy returns a deep copy of this asset class and its sub-classes. The copy
// is not validated.
func (c *AssetClass) Copy() *AssetClass {
	cp := NewAssetClass(c.name)
	for _, sub := range c.children {
		cp.AddSubclass(sub.Ratio, sub.Class.Copy())
	}
	return cp
}

// validate recursively checks ratios, populates the leaf cache and returns
// the leaf set and all class names of the subtree.
func (c *AssetClass) validate() (leaves map[string]bool, names []string, err error) {
	if len(c.children) == 0 {
		c.leaves = map[string]bool{c.name: true}
		return c.leaves, []string{c.name}, nil
	}

	leaves = make(map[string]bool)
	names = []string{c.name}
	total := 0.0
	for _, sub := range c.children {
		if sub.Ratio < 0 || sub.Ratio > 1 {
			return nil, nil, validationErrorf("asset class %q: bad ratio %v for sub-class %q", c.name, sub.Ratio, sub.Class.name)
		}
		total += sub.Ratio
		subLeaves, subNames, err := sub.Class.validate()
		if err != nil {
			return nil, nil, err
		}
		for name := range subLeaves {
			leaves[name] = true
		}
		names = append(names, subNames...)
	}

	if math.Abs(total-1) > ratioTolerance {
		return nil, nil, validationErrorf("asset class %q: sub-class ratios sum to %v%%, want 100%%", c.name, total*100)
	}

	c.leaves = leaves
	return leaves, names, nil
}

// Validate checks the whole subtree rooted at this asset class: every ratio
// must be in [0,1], the ratios of each node's sub-classes must sum to 1, and
// class names must be unique across the tree. It populates the cached leaf
// sets used by the query methods and returns the receiver for chaining.
func (c *AssetClass) Validate() (*AssetClass, error) {
	_, names, err := c.validate()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	for _, name := range names {
		seen[name]++
	}
	var duplicates []string
	for name, n := range seen {
		if n > 1 {
			duplicates = append(duplicates, name)
		}
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return nil, validationErrorf("duplicate asset class name(s): %v", duplicates)
	}
	return c, nil
}

// Leaves returns the set of leaf class names of this subtree. It fails if
// Validate has not been called since the last mutation.
func (c *AssetClass) Leaves() (map[string]bool, error) {
	if c.leaves == nil {
		return nil, &NotValidatedError{Op: "Leaves"}
	}
	return c.leaves, nil
}

// Find searches the subtree for the asset class named name and returns the
// node together with its cumulative ratio, the product of the ratios on the
// path from the receiver down to the node.
func (c *AssetClass) Find(name string) (*AssetClass, float64, error) {
	if c.leaves == nil {
		return nil, 0, &NotValidatedError{Op: "Find"}
	}
	if node, ratio := c.find(name); node != nil {
		return node, ratio, nil
	}
	return nil, 0, &NotFoundError{Kind: "asset class", Name: name}
}

func (c *AssetClass) find(name string) (*AssetClass, float64) {
	if c.name == name {
		return c, 1
	}
	for _, sub := range c.children {
		if node, ratio := sub.Class.find(name); node != nil {
			return node, ratio * sub.Ratio
		}
	}
	return nil, 0
}

// ValueMapped returns the total money mapped to this asset class, the sum of
// the values of moneyByLeaf whose key is a leaf of this subtree.
func (c *AssetClass) ValueMapped(moneyByLeaf map[string]float64) (float64, error) {
	if c.leaves == nil {
		return 0, &NotValidatedError{Op: "ValueMapped"}
	}
	total := 0.0
	for name, value := range moneyByLeaf {
		if c.leaves[name] {
			total += value
		}
	}
	return total, nil
}

// AllocationRow is the allocation of one asset class: the total money mapped
// to it and the breakdown over its direct sub-classes. A node whose total
// value is zero has no breakdown at all, there is nothing to show.
type AllocationRow struct {
	Name     string
	Value    float64
	Children []AllocationEntry
}

// AllocationEntry compares the actual and desired allocation of one
// sub-class. Drift is the money to move into (positive) or out of (negative)
// the sub-class to reach the desired allocation.
type AllocationEntry struct {
	Name         string
	ActualRatio  float64
	DesiredRatio float64
	Value        float64
	Drift        float64
}

// ComputeAllocation walks the subtree in pre-order and returns one
// AllocationRow per visited asset class, comparing the actual allocation of
// moneyByLeaf against the desired ratios. levels limits how deep the walk
// descends below the receiver, -1 meaning no limit. Sub-classes are visited
// in the order they were added.
func (c *AssetClass) ComputeAllocation(moneyByLeaf map[string]float64, levels int) ([]AllocationRow, error) {
	value, err := c.ValueMapped(moneyByLeaf)
	if err != nil {
		return nil, err
	}

	row := AllocationRow{Name: c.name, Value: value}
	if value == 0 {
		// No money is mapped here. There is no breakdown to compute and
		// nothing to recurse into.
		return []AllocationRow{row}, nil
	}

	for _, sub := range c.children {
		subValue, err := sub.Class.ValueMapped(moneyByLeaf)
		if err != nil {
			return nil, err
		}
		actual := subValue / value
		row.Children = append(row.Children, AllocationEntry{
			Name:         sub.Class.name,
			ActualRatio:  actual,
			DesiredRatio: sub.Ratio,
			Value:        actual * value,
			Drift:        (sub.Ratio - actual) * value,
		})
	}

	rows := []AllocationRow{row}
	if levels == 0 {
		return rows, nil
	}
	if levels > 0 {
		levels--
	}
	for _, sub := range c.children {
		subRows, err := sub.Class.ComputeAllocation(moneyByLeaf, levels)
		if err != nil {
			return nil, err
		}
		rows = append(rows, subRows...)
	}
	return rows, nil
}

// MarshalJSON marshals the asset class tree, keeping sub-classes in their
// declaration order.
func (c *AssetClass) MarshalJSON() ([]byte, error) {
	w := &jsonObjectWriter{}
	w.Append("name", c.name)
	if len(c.children) > 0 {
		children := make([]json.RawMessage, 0, len(c.children))
		for _, sub := range c.children {
			cw := &jsonObjectWriter{}
			cw.Append("ratio", sub.Ratio)
			raw, err := json.Marshal(sub.Class)
			if err != nil {
				return nil, err
			}
			cw.Embed(raw)
			childRaw, err := json.Marshal(cw)
			if err != nil {
				return nil, err
			}
			children = append(children, childRaw)
		}
		w.Append("children", children)
	}
	return json.Marshal(w)
}

type assetClassDoc struct {
	Name     string             `json:"name"`
	Children []assetSubClassDoc `json:"children,omitempty"`
}

type assetSubClassDoc struct {
	Ratio float64 `json:"ratio"`
	assetClassDoc
}

// UnmarshalJSON unmarshals an asset class tree. The result is not validated,
// callers decode the document and then call Validate on the root.
func (c *AssetClass) UnmarshalJSON(data []byte) error {
	var doc assetClassDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid asset class document: %w", err)
	}
	*c = *doc.assetClass()
	return nil
}

func (d *assetClassDoc) assetClass() *AssetClass {
	node := NewAssetClass(d.Name)
	for i := range d.Children {
		node.AddSubclass(d.Children[i].Ratio, d.Children[i].assetClass())
	}
	return node
}

var (
	_ json.Marshaler   = (*AssetClass)(nil)
	_ json.Unmarshaler = (*AssetClass)(nil)
)
