// Package store provides abstractions and implementations for data
// persistence. It defines the interfaces the rest of the application
// depends on; concrete implementations live in platform packages
// (see internal/platform/postgres).
package store
