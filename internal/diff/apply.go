package diff

import (
	"fmt"

	"github.com/mcncl/jsonmerge/internal/models"
	"github.com/mcncl/jsonmerge/internal/path"
)

// Apply replays differences produced by Diff(left, right) onto left and
// returns the reconstructed right document. left is not modified.
//
// Additions and modifications are applied in traversal order, so array
// growth appends element by element. Removals run afterwards in reverse
// order, which removes trailing array elements from the highest index down.
func Apply(left models.Value, diffs []Difference) (models.Value, error) {
	result := models.Clone(left)

	var removals []Difference
	for _, d := range diffs {
		var err error
		switch d.Kind {
		case Added:
			result, err = path.Set(result, d.Path, d.Value)
		case Modified:
			result, err = path.Set(result, d.Path, d.NewValue)
		case Removed:
			removals = append(removals, d)
		default:
			err = fmt.Errorf("unknown difference kind %s", d.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("apply %s at %q: %w", d.Kind, d.Path, err)
		}
	}

	for i := len(removals) - 1; i >= 0; i-- {
		d := removals[i]
		var err error
		if result, err = path.Delete(result, d.Path); err != nil {
			return nil, fmt.Errorf("apply %s at %q: %w", d.Kind, d.Path, err)
		}
	}
	return result, nil
}
