package service

// Service defines the lifecycle interface for infrastructure subsystems
// Services manage long-lived resources: audio backends, data watchers,
// simulator links, terminals
//
// Lifecycle:
//  1. Construction (via factory)
//  2. Init(args...) - implicit configuration (e.g. from parsed flags/env)
//  3. Start() - launch background goroutines
//  4. [runtime operation]
//  5. Stop() - halt goroutines, release resources
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Init configures the service from optional args
	// Args are service-specific (mute state, endpoints, file paths)
	Init(args ...any) error

	// Start begins service operation (launches goroutines if any)
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	// Must be idempotent - safe to call multiple times
	Stop() error
}

// Registry starts services in registration order and stops them in
// reverse, tolerating partial failure on the way down
type Registry struct {
	services []Service
}

// Register appends a service
func (r *Registry) Register(s Service) {
	r.services = append(r.services, s)
}

// StartAll starts every registered service in order. Services are
// expected to have been Init'd with their own args before registration.
// The first error aborts startup; already-started services stay up and
// the caller is expected to StopAll
func (r *Registry) StartAll() error {
	for _, s := range r.services {
		if err := s.Start(); err != nil {
			return err
		}
	}
	return nil
}

// StopAll stops services in reverse registration order
func (r *Registry) StopAll() {
	for i := len(r.services) - 1; i >= 0; i-- {
		_ = r.services[i].Stop()
	}
}
