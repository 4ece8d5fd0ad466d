package ports

import "context"

// GraphQLExecutor issues a single GraphQL operation against the upstream
// platform and decodes the data payload into out. Implementations classify
// failures; callers only ever see a populated out or an error, never a
// partial state.
type GraphQLExecutor interface {
	Execute(ctx context.Context, query string, variables map[string]any, out any) error
}
