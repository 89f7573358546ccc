package comments

import (
	"sort"

	"github.com/threadline/backend/internal/models"
)

// Node is a comment with its attached replies, forming a navigable forest
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// BuildTree reconstructs the comment forest of one post from a flat,
// unordered result set. Children attach to parents in creation (id) order.
// The traversal caps recursion one level past the max depth and surfaces
// anything unreachable from a root (orphans under missing parents, cycles
// in malformed input) as an extra root, so the output is always lossless
// and can never loop.
func BuildTree(flat []models.Comment) []*Node {
	sorted := append([]models.Comment(nil), flat...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	nodes := make(map[uint]*Node, len(sorted))
	for i := range sorted {
		nodes[sorted[i].ID] = &Node{Comment: sorted[i], Replies: []*Node{}}
	}

	childIDs := make(map[uint][]uint)
	rootIDs := make([]uint, 0)
	for _, c := range sorted {
		if c.ParentID == nil {
			rootIDs = append(rootIDs, c.ID)
			continue
		}
		if _, ok := nodes[*c.ParentID]; !ok {
			// parent not in the input set; keep the comment reachable
			rootIDs = append(rootIDs, c.ID)
			continue
		}
		childIDs[*c.ParentID] = append(childIDs[*c.ParentID], c.ID)
	}

	visited := make(map[uint]bool, len(sorted))

	var attach func(n *Node, level int)
	attach = func(n *Node, level int) {
		if level > models.MaxCommentDepth {
			return
		}
		for _, id := range childIDs[n.ID] {
			if visited[id] {
				continue
			}
			visited[id] = true
			child := nodes[id]
			n.Replies = append(n.Replies, child)
			attach(child, level+1)
		}
	}

	forest := make([]*Node, 0, len(rootIDs))
	for _, id := range rootIDs {
		if visited[id] {
			continue
		}
		visited[id] = true
		root := nodes[id]
		forest = append(forest, root)
		attach(root, 1)
	}

	for _, c := range sorted {
		if !visited[c.ID] {
			visited[c.ID] = true
			forest = append(forest, nodes[c.ID])
		}
	}

	return forest
}

// Flatten returns every comment in the forest in depth-first order
func Flatten(forest []*Node) []models.Comment {
	out := make([]models.Comment, 0)
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n.Comment)
		for _, child := range n.Replies {
			walk(child)
		}
	}
	for _, root := range forest {
		walk(root)
	}
	return out
}
