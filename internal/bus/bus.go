package bus

// Publisher is the event-bus write side. Stage code depends on this
// instead of a concrete transport.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// Handler consumes one event payload. Returning an error asks the
// transport to redeliver; stage handlers therefore return nil for
// job-level failures and reserve errors for transport problems.
type Handler func(body []byte) error

// Subscriber is the event-bus read side. Every handler subscribed to a
// topic sees every message; one handler's failure never blocks another.
type Subscriber interface {
	Subscribe(topic string, h Handler) error
}
