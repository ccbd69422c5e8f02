package reconcile

import "context"

// Resolver turns a resolution key into a display name.
type Resolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, key string) (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, key string) (string, error) {
	return f(ctx, key)
}

// Source yields the authoritative records in a stable order.
type Source interface {
	Fetch(ctx context.Context) ([]AuthoritativeRecord, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]AuthoritativeRecord, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) ([]AuthoritativeRecord, error) {
	return f(ctx)
}
