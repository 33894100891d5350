package model

import "time"

// User represents a row of the `users` table.  Accounts are provisioned
// by the external identity provider; this service only reads them to
// validate reservation owners and to enrich reservation details.
//
// Fields:
//
//	ID        – identifier shared with the identity provider (token subject).
//	Email     – email address.
//	FullName  – optional display name.
//	Role      – application role (admin, manager, customer).
//	CreatedAt – timestamp of creation.
type User struct {
	ID        string    // users.id
	Email     string    // users.email
	FullName  *string   // users.full_name (nullable)
	Role      string    // users.role
	CreatedAt time.Time // users.created_at
}

// Roles recognised by the route guards.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleCustomer = "customer"
)
