// Package actor identifies the reviewer performing reconciliation actions.
//
// The actor travels in the context so services can stamp reviewer identity
// on accepted records and check the role capability before mutating state.
package actor

import (
	"context"
	"fmt"
)

// Role names understood by the permission checker.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleViewer  = "viewer"
	RoleSystem  = "system"
)

// Actor represents the entity performing an action.
type Actor struct {
	// ID is the reviewer's login or employee number
	ID string `json:"id"`

	// Name is the display name stamped on reconciled records
	Name string `json:"name"`

	// RoleName drives the capability check
	RoleName string `json:"role_name"`
}

// DisplayName returns the name, falling back to the ID.
func (a *Actor) DisplayName() string {
	if a == nil {
		return "system"
	}
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	return fmt.Sprintf("%s (%s)", a.DisplayName(), a.RoleName)
}

type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// SystemActor returns an Actor representing automated operations such as
// smart reconcile run by a scheduled job.
func SystemActor() *Actor {
	return &Actor{
		ID:       "system",
		Name:     "System",
		RoleName: RoleSystem,
	}
}

// IsSystem returns true if the actor represents the system.
func (a *Actor) IsSystem() bool {
	if a == nil {
		return true
	}
	return a.RoleName == RoleSystem
}
