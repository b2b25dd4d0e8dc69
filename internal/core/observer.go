package core

// Observer receives counters from the hub. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	CommandHandled(kind CommandKind)
	JoinRejected()
	EventDropped(kind EventKind)
}

type nopObserver struct{}

func (nopObserver) CommandHandled(CommandKind) {}
func (nopObserver) JoinRejected()              {}
func (nopObserver) EventDropped(EventKind)     {}
