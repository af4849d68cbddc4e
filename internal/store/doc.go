// Package store defines the persistence interfaces consumed by the service
// layer, along with the sentinel errors shared by every backend. Concrete
// implementations live under internal/platform.
package store
