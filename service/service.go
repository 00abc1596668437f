// @focus: #sys { service }
package service

// Service is a long-lived subsystem owned by the application: audio, terminal, input
//
// Lifecycle:
//  1. Construction
//  2. Init(args...) - configuration resolved by the caller (flags, config file)
//  3. Start() - acquire resources, launch goroutines
//  4. Stop() - release resources; idempotent
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init and Start before this one
	Dependencies() []string

	// Init configures the service from optional, service-specific args
	Init(args ...any) error

	// Start begins service operation
	// Called after all services have initialized
	Start() error

	// Stop halts service operation and releases resources
	Stop() error
}
