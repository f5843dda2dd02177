package companies

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("company not found")
	ErrDuplicateName = errors.New("company name already exists")
)

// Repo defines persistence operations for companies.
type Repo interface {
	Create(ctx context.Context, company Company) error
	GetByID(ctx context.Context, companyID string) (Company, error)
}
