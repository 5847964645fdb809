package ws

import "context"

// EventsChannel is the pub/sub channel carrying workflow events from the
// worker process to the API process, which fans them out over websockets.
const EventsChannel = "ws:events"

// Publisher is the slice of the cache client the relay needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Relay is a Sink that forwards events over pub/sub instead of a local
// hub. The worker binary wires its notifier through one of these.
type Relay struct {
	pub Publisher
}

func NewRelay(pub Publisher) *Relay {
	return &Relay{pub: pub}
}

func (r *Relay) Broadcast(message []byte) {
	if r == nil || r.pub == nil {
		return
	}
	_ = r.pub.Publish(context.Background(), EventsChannel, message)
}
