package delivery

import "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"

type Status string

const (
	StatusPackaging Status = "packaging"
	StatusPickedUp  Status = "picked up"
	StatusInTransit Status = "in transit"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// transitions lists the legal next states. Delivered and failed are terminal.
var transitions = map[Status][]Status{
	StatusPackaging: {StatusPickedUp},
	StatusPickedUp:  {StatusInTransit},
	StatusInTransit: {StatusDelivered, StatusFailed},
	StatusDelivered: nil,
	StatusFailed:    nil,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", apperr.Validation("unknown delivery status %q", s)
	}
	return st, nil
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}
