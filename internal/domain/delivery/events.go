package delivery

import "time"

type StatusChangedEvent struct {
	DeliveryID string
	OrderID    string
	From       Status
	To         Status
	OccurredAt time.Time
}

func (StatusChangedEvent) EventName() string     { return "delivery.status_changed" }
func (e StatusChangedEvent) AggregateID() string { return e.DeliveryID }

func NewStatusChangedEvent(d *Delivery, from Status) StatusChangedEvent {
	return StatusChangedEvent{
		DeliveryID: d.ID,
		OrderID:    d.OrderID,
		From:       from,
		To:         d.Status,
		OccurredAt: time.Now().UTC(),
	}
}
