package core

const defaultClientBuffer = 32

// Client is a connection as seen by the core layer. The transport drains Events.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client with a bounded event buffer.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}

// Send queues ev without blocking. A slow consumer loses the event.
func (c *Client) Send(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
