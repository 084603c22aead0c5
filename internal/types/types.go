// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, the service, storage, and utils can all import types without
// depending on each other.
package types

// Mechanic is the persisted entity. It maps one-to-one onto a row of the
// mechanic table. Code is the primary key and never changes after creation.
type Mechanic struct {
	Code           string
	FirstName      string
	LastName       string
	Specialization string
}

// MechanicDTO is the wire representation used both as the request payload
// (create/update) and the response payload.
//
// Struct tags serve two purposes:
//
//  1. json:"..."     controls the JSON key name.
//  2. validate:"..." rules checked by go-playground/validator. "notblank"
//     rejects empty strings and strings made only of whitespace.
//
// Code carries no validate tag: it is only required on create, and the
// service layer checks it there.
type MechanicDTO struct {
	Code           string `json:"code"`
	FirstName      string `json:"firstName"      validate:"required,notblank"`
	LastName       string `json:"lastName"       validate:"required,notblank"`
	Specialization string `json:"specialization" validate:"required,notblank"`
}

// Page is a bounded slice of results plus the total element count and the
// total page count for the query that produced it.
type Page[T any] struct {
	Content       []T
	TotalElements int64
	TotalPages    int
}
