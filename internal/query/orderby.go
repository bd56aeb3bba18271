package query

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/ordering"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// ParseOrderBy reads an AIP-132 order_by string such as "date desc" and
// returns the sort key and direction. Only the first field is used; keys
// outside keys fail with types.ErrInvalidSortKey. An empty string keeps
// collection order.
func ParseOrderBy(s string, keys []string) (string, types.SortOrder, error) {
	if strings.TrimSpace(s) == "" {
		return "", types.SortAsc, nil
	}
	var ob ordering.OrderBy
	if err := ob.UnmarshalString(s); err != nil {
		return "", "", fmt.Errorf("%w: %v", types.ErrInvalidSortKey, err)
	}
	if err := ob.ValidateForPaths(keys...); err != nil {
		return "", "", fmt.Errorf("%w: %v (valid: %s)", types.ErrInvalidSortKey, err, strings.Join(keys, ", "))
	}
	if len(ob.Fields) == 0 {
		return "", types.SortAsc, nil
	}
	field := ob.Fields[0]
	if field.Desc {
		return field.Path, types.SortDesc, nil
	}
	return field.Path, types.SortAsc, nil
}
