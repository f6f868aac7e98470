// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Every student operation is scoped to a tenant. A nil tenant ID addresses
// the host side and never matches tenant rows.
package store
