package discovery

import "context"

// Discovery abstracts where the list of node addresses to check comes from.
// Implementations return addresses in the order they should be checked.
type Discovery interface {
    Addresses(ctx context.Context) ([]string, error)
}
