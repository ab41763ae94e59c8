package history

import "context"

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	// List and ListByProfessional return entries newest first together with
	// the total number of matching entries.
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	ListByProfessional(ctx context.Context, professionalID string, limit, offset int) ([]*Entry, int, error)
}
