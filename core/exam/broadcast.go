package exam

// Event is a message fanned out to everyone in an exam room.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Subscription is one member's end of an exam room.
type Subscription interface {
	// Events yields room events; the channel closes on Leave.
	// Slow consumers may have events dropped.
	Events() <-chan Event
	Leave()
}

// Broadcaster fans events out to exam rooms.
type Broadcaster interface {
	Join(examID string) Subscription
	Publish(examID string, evt Event)
}

// Room returns the room key of an exam.
func Room(examID string) string {
	return "exam_" + examID
}
