package storage

import "errors"

var (
	// ErrCatalogEntryNotFound is returned when no catalog entry matches
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")

	// ErrResourceSpecNotFound is returned when a resource specification is not found
	ErrResourceSpecNotFound = errors.New("resource specification not found")

	// ErrBoQNotFound is returned when no line items exist for a BoQ id
	ErrBoQNotFound = errors.New("bill of quantity not found")

	// ErrAdminUserNotFound is returned when an admin user is not found
	ErrAdminUserNotFound = errors.New("admin user not found")
)
