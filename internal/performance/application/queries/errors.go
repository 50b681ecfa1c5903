package queries

import "github.com/felixgeelhaar/perfboard/internal/shared/domain"

func invalidMonth(s string) error {
	return domain.InvalidSpecf("month must be formatted YYYY-MM, got %q", s)
}
