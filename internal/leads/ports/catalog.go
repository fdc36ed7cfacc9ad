package ports

import "context"

// ProductCatalog tells whether a product can be quoted.
type ProductCatalog interface {
	IsPublished(ctx context.Context, productName string) (bool, error)
}
