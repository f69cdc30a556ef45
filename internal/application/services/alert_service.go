package services

import (
	"context"
	"fmt"
	"log"

	"github.com/banjirlab/relief-assistant/internal/domain/entities"
	"github.com/banjirlab/relief-assistant/internal/domain/providers"
)

// AlertService pages duty staff when a center's consensus status turns
// critical. WARNING transitions stay on the dashboard and the status stream;
// only CRITICAL_ISSUE warrants a message. Events fire on status changes, so
// an alert goes out once per transition, not once per report.
type AlertService struct {
	sender     providers.AlertSender
	eventBus   providers.EventBus
	recipients []string
}

// NewAlertService creates an alert service delivering to the given recipient
// phone numbers.
func NewAlertService(sender providers.AlertSender, eventBus providers.EventBus, recipients []string) *AlertService {
	return &AlertService{
		sender:     sender,
		eventBus:   eventBus,
		recipients: recipients,
	}
}

// Start subscribes to status-change events and dispatches alerts until ctx
// is cancelled.
func (s *AlertService) Start(ctx context.Context) error {
	events, err := s.eventBus.Subscribe(ctx, providers.EventChannelStatusUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to status updates: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if event == nil || event.NewStatus != entities.LiveStatusCriticalIssue {
					continue
				}
				s.dispatch(event)
			}
		}
	}()
	return nil
}

// dispatch sends the alert to every recipient. A failed send is logged and
// does not stop delivery to the remaining recipients.
func (s *AlertService) dispatch(event *entities.CenterStatusEvent) {
	body := renderAlert(event)
	for _, recipient := range s.recipients {
		if _, err := s.sender.SendText(recipient, body); err != nil {
			log.Printf("Failed to send critical alert for %s to %s: %v", event.CenterName, recipient, err)
		}
	}
}

// renderAlert builds a bilingual message body, so one alert serves mixed
// English and Malay duty rosters.
func renderAlert(event *entities.CenterStatusEvent) string {
	body := fmt.Sprintf("PPS %s is now CRITICAL. / PPS %s kini KRITIKAL.", event.CenterName, event.CenterName)
	if event.Reason != "" {
		body += fmt.Sprintf("\nReported: %s", event.Reason)
	}
	return body
}
