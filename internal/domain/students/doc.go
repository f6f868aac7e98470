// Package students holds the domain rules that span more than one student
// record: the minimum age and per-tenant email uniqueness. The Manager builds
// and mutates Student entities but never persists them.
package students
