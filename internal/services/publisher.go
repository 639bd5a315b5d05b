package services

import (
	"github.com/yukikurage/taskhub-api/internal/metrics"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/realtime"
)

// Publisher delivers realtime events to a user's open connections.
// *realtime.Hub implements it.
type Publisher interface {
	Publish(userID uint64, event realtime.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(uint64, realtime.Event) {}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// announce runs after commit: it counts the written side effects and
// pushes each notification to its recipient.
func announce(p Publisher, activity *models.Activity, notifications []models.Notification) {
	countActivity(activity)
	for _, n := range notifications {
		metrics.Notifications.Inc()
		p.Publish(n.UserID, realtime.Event{Type: realtime.EventNotification, Data: n})
	}
}

func countActivity(activity *models.Activity) {
	if activity != nil {
		metrics.Activities.WithLabelValues(string(activity.Action)).Inc()
	}
}
