package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/revanced-builder/internal/catalog"
)

// ErrInvalidSelection is returned when an answer references a menu index
// that does not exist.
var ErrInvalidSelection = errors.New("invalid patch selection")

// Resolve parses the operator's whitespace-separated keep list against the
// menu of patches and returns the names of the patches NOT kept, in menu
// order. Duplicate indices count once.
func Resolve(patches []catalog.Patch, answer string) ([]string, error) {
	kept := make(map[int]struct{})

	for _, token := range strings.Fields(answer) {
		index, err := strconv.Atoi(token)
		if err != nil || index < 0 {
			continue
		}

		if index >= len(patches) {
			return nil, fmt.Errorf("index %d is outside the menu of %d patches: %w",
				index, len(patches), ErrInvalidSelection)
		}

		kept[index] = struct{}{}
	}

	excluded := make([]string, 0, len(patches)-len(kept))

	for index, patch := range patches {
		if _, ok := kept[index]; !ok {
			excluded = append(excluded, patch.Name)
		}
	}

	return excluded, nil
}
