// Package registryauth is an authentication and authorization engine for a
// package-registry server. The host registry loads it as a plugin: it
// verifies credentials against a persisted user store, registers new users,
// and decides whether an identity may read, publish, or unpublish a package
// based on the group lists declared in the package's policy.
//
// The store is reached through one scoped session per operation; MongoDB and
// PostgreSQL backends are selected from the store URI scheme. Authorization
// decisions never touch the store.
package registryauth
