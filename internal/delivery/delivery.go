// Package delivery defines the contract every transport front end satisfies.
package delivery

import "context"

// Delivery is a running transport surface, started by main and stopped
// through the fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
