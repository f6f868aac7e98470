// Package mocks provides shared test doubles for the store and auth
// interfaces.
//
// Store mocks use testify/mock; their WithTx returns the mock itself so the
// same expectations hold inside store.RunInTransaction. The auth mocks use
// function fields with static defaults.
package mocks
