package core

import "errors"

// Error taxonomy shared by every layer. Services return these wrapped with
// context; the HTTP layer maps them to status codes with errors.Is.
var (
	// ErrInvalidAmount covers a non-positive or missing amount, and a
	// balance update that would drive a contact balance negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotFound means the referenced organization, contact, category or
	// transaction does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCrossOrganization means a category and a contact belong to
	// different organizations.
	ErrCrossOrganization = errors.New("category does not belong to the contact's organization")

	// ErrDuplicate is a uniqueness violation on an organization name,
	// a (mobile number, organization) pair or a (category name,
	// organization) pair.
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidArgument covers malformed parameters such as an unknown
	// report granularity or an empty required field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAtomicity means the commit of a multi-write unit failed and
	// everything was rolled back.
	ErrAtomicity = errors.New("atomic unit failed")
)
