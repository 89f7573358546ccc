package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/backend/internal/models"
	"gorm.io/gorm"
)

func comment(id uint, parentID *uint, depth int) models.Comment {
	return models.Comment{
		Model:    gorm.Model{ID: id},
		PostID:   1,
		UserID:   1,
		ParentID: parentID,
		Depth:    depth,
		Content:  "c",
	}
}

func ptr(id uint) *uint { return &id }

func TestBuildTreeReconstructsForest(t *testing.T) {
	flat := []models.Comment{
		comment(3, ptr(1), 1),
		comment(1, nil, 0),
		comment(2, nil, 0),
		comment(4, ptr(1), 1),
		comment(5, ptr(3), 2),
	}

	forest := BuildTree(flat)
	require.Len(t, forest, 2)

	assert.Equal(t, uint(1), forest[0].ID)
	assert.Equal(t, uint(2), forest[1].ID)

	require.Len(t, forest[0].Replies, 2)
	assert.Equal(t, uint(3), forest[0].Replies[0].ID)
	assert.Equal(t, uint(4), forest[0].Replies[1].ID)

	require.Len(t, forest[0].Replies[0].Replies, 1)
	assert.Equal(t, uint(5), forest[0].Replies[0].Replies[0].ID)
}

func TestBuildTreeIsLossless(t *testing.T) {
	flat := []models.Comment{
		comment(1, nil, 0),
		comment(2, ptr(1), 1),
		comment(3, ptr(99), 1), // parent missing from input
	}

	forest := BuildTree(flat)
	assert.Len(t, Flatten(forest), len(flat))

	// The orphan surfaces as a root instead of vanishing.
	ids := make([]uint, 0)
	for _, root := range forest {
		ids = append(ids, root.ID)
	}
	assert.Contains(t, ids, uint(3))
}

func TestBuildTreeHandlesCycles(t *testing.T) {
	// Malformed input: 1 and 2 point at each other. The traversal must
	// terminate and keep both comments in the output.
	flat := []models.Comment{
		comment(1, ptr(2), 1),
		comment(2, ptr(1), 1),
	}

	forest := BuildTree(flat)
	assert.Len(t, Flatten(forest), 2)
}

func TestBuildTreeEmptyInput(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
	assert.Empty(t, BuildTree([]models.Comment{}))
}

func TestBuildTreeIsDeterministic(t *testing.T) {
	flat := []models.Comment{
		comment(2, nil, 0),
		comment(1, nil, 0),
		comment(3, ptr(1), 1),
	}

	first := BuildTree(flat)
	second := BuildTree(flat)
	assert.Equal(t, Flatten(first), Flatten(second))
}

func TestFlattenDepthFirst(t *testing.T) {
	flat := []models.Comment{
		comment(1, nil, 0),
		comment(2, ptr(1), 1),
		comment(3, nil, 0),
	}

	out := Flatten(BuildTree(flat))
	require.Len(t, out, 3)
	assert.Equal(t, uint(1), out[0].ID)
	assert.Equal(t, uint(2), out[1].ID)
	assert.Equal(t, uint(3), out[2].ID)
}
