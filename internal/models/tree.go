package models

// Node is either a *Leaf or a *Split. The set of implementations is closed.
type Node interface {
	isNode()
}

// Leaf carries the additive weight returned for every row that reaches it.
type Leaf struct {
	Weight float64
}

// Split sends rows with x[Feature] <= Threshold left and the rest right. Both children
// are always set.
type Split struct {
	Feature   int
	Threshold float64
	Left      Node
	Right     Node
}

func (*Leaf) isNode()  {}
func (*Split) isNode() {}

// Tree is one boosting round. Weight is 1 for every tree grown by Fit.
type Tree struct {
	Root   Node
	Weight float64
}

// leaf walks x down the tree. ok is false when a split references a feature index
// beyond len(x); the caller then treats the tree as contributing zero.
func (t *Tree) leaf(x []float64) (value float64, feature int, ok bool) {
	n := t.Root
	for {
		switch nd := n.(type) {
		case *Leaf:
			return nd.Weight, -1, true
		case *Split:
			if nd.Feature >= len(x) {
				return 0, nd.Feature, false
			}
			if x[nd.Feature] <= nd.Threshold { n = nd.Left } else { n = nd.Right }
		default:
			return 0, -1, false
		}
	}
}

// Depth is the number of splits on the longest root-to-leaf path.
func (t *Tree) Depth() int { return depth(t.Root) }

func depth(n Node) int {
	s, ok := n.(*Split)
	if !ok { return 0 }
	return 1 + max(depth(s.Left), depth(s.Right))
}

// Leaves counts the terminal nodes.
func (t *Tree) Leaves() int { return leaves(t.Root) }

func leaves(n Node) int {
	s, ok := n.(*Split)
	if !ok { return 1 }
	return leaves(s.Left) + leaves(s.Right)
}
