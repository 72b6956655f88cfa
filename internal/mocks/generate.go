// Package mocks provides mock implementations of the ports for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockResourceStore(ctrl)
//	store.EXPECT().As("user-1").Return(scoped)
package mocks

// Generate mock for IdentityProvider interface from internal/ports package.
// PasswordSignIn, AuthCodeURL, Exchange, Refresh, UserInfo, Revoke
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_provider_mock.go github.com/target/coursedesk/internal/ports IdentityProvider

// Generate mock for SessionStore interface from internal/ports package.
// Load, Save, Delete, CompareAndSwap, Ping
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/target/coursedesk/internal/ports SessionStore

// Generate mocks for ResourceStore and ScopedResources interfaces from internal/ports package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=resource_store_mock.go github.com/target/coursedesk/internal/ports ResourceStore,ScopedResources
