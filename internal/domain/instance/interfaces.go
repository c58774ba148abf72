package instance

// Provider defines read-only access to a set of instances. Selection and
// navigation depend on this rather than on a concrete registry so that the
// application service (which adds locking and persistence) can stand in.
type Provider interface {
	// Get returns the named instance or ErrNotFound.
	Get(name string) (*Instance, error)

	// Has reports whether name is registered.
	Has(name string) bool

	// Names returns all names in insertion order.
	Names() []string

	// List returns all instances in insertion order.
	List() []*Instance
}

// Compile-time check that Registry implements Provider.
var _ Provider = (*Registry)(nil)
