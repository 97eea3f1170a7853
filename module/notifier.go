package module

// Notifier wakes up a worker routine when new work arrived. Any number of
// notifications sent while the worker is busy collapse into a single pending
// one, and sending never blocks. Notifiers may be passed by value.
type Notifier struct {
	notifier chan struct{} // capacity 1: at most one pending notification
}

func NewNotifier() Notifier {
	return Notifier{make(chan struct{}, 1)}
}

// Notify records a pending notification, unless one is pending already.
func (n Notifier) Notify() {
	select {
	case n.notifier <- struct{}{}:
	default:
	}
}

// Channel returns a channel for receiving notifications
func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}
