// Package domain contains the core business entities of the clinic: students,
// operator accounts and the permission tree, together with the age arithmetic
// and the error types the rest of the application maps to responses.
//
// Nothing in this package touches storage or HTTP.
package domain
