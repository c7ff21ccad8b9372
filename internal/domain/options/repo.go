package options

import "context"

type OptionRepository interface {
	List(ctx context.Context, kind Kind) ([]Option, error)
	Create(ctx context.Context, kind Kind, label string, category *string) (*Option, error)
	// Seed inserts the default rows, skipping labels that already exist.
	Seed(ctx context.Context, kind Kind, labels []string) error
}
