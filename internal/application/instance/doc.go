// Package instance implements the application layer for named search
// instances.
//
// Service wraps the domain registry with persistence and locking. Every
// mutation is applied in memory, then written through the Store; if the
// write fails the registry is restored from a snapshot so memory and storage
// never diverge. Successful mutations are published on a pubsub broker so a
// session can refresh its views.
//
// # Import Aliasing
//
// This package shares its name with the domain package. Import it as:
//
//	import (
//	    "github.com/zjrosen/hopper/internal/domain/instance"
//	    appinstance "github.com/zjrosen/hopper/internal/application/instance"
//	)
package instance
