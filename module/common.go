package module

import (
	"github.com/shardchain/dscommittee/module/irrecoverable"
)

// ReadyDoneAware provides easy interface to wait for module startup and shutdown.
// Modules that implement this interface only support a single start-stop cycle.
type ReadyDoneAware interface {
	// Ready returns a channel that is closed once startup has completed.
	Ready() <-chan struct{}

	// Done returns a channel that is closed once shutdown has completed,
	// either because the start context was cancelled or because the module
	// threw an irrecoverable error.
	Done() <-chan struct{}
}

// Startable provides an interface to start a component. Once started, the
// component can be stopped by cancelling the given context.
type Startable interface {
	// Start starts the component. Must only be called once and panics otherwise.
	Start(irrecoverable.SignalerContext)
}

// Component is a module which can be started once and waited upon.
type Component interface {
	Startable
	ReadyDoneAware
}
