package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
)

// ResultFn receives the outcome of each SMS attempt. Used by the notifier
// worker to publish delivery events; may be nil.
type ResultFn func(evt models.DeliveryEvent)

// Dispatcher composes and sends one localized SMS per candidate alert.
// Delivery is best-effort: every failure is logged and absorbed, never
// surfaced to the registration path and never retried inline.
type Dispatcher struct {
	catalog *Catalog
	sender  SmsSender
	baseURL string
	onDone  ResultFn
}

func NewDispatcher(catalog *Catalog, sender SmsSender, publicBaseURL string, onDone ResultFn) *Dispatcher {
	return &Dispatcher{
		catalog: catalog,
		sender:  sender,
		baseURL: publicBaseURL,
		onDone:  onDone,
	}
}

// Dispatch fans out one SMS per alert. Alerts are sent concurrently and
// independently; no ordering is guaranteed and one failure does not affect
// the others. Returns the number of messages the gateway accepted.
func (d *Dispatcher) Dispatch(ctx context.Context, task models.NotificationTask) int {
	if len(task.Alerts) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	delivered := 0

	for _, alert := range task.Alerts {
		wg.Add(1)
		go func(alert models.CandidateAlert) {
			defer wg.Done()
			if err := d.sendOne(ctx, task, alert); err != nil {
				// Loud on purpose: a lost notification needs manual follow-up.
				slog.Error("sms notification failed",
					"person_id", task.PersonID,
					"report_id", alert.ReportID,
					"poster_code", alert.PosterCode,
					"error", err,
				)
				observability.SMSFailed.Inc()
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(alert)
	}
	wg.Wait()
	return delivered
}

func (d *Dispatcher) sendOne(ctx context.Context, task models.NotificationTask, alert models.CandidateAlert) error {
	if alert.ReporterPhone == "" {
		return fmt.Errorf("no reporter phone for report %s", alert.ReportID)
	}

	msgs := d.catalog.Resolve(alert.Locale)

	vars := map[string]string{
		"personName":   task.PersonName,
		"shelterName":  task.ShelterName,
		"shelterPhone": task.ShelterPhone,
		"link":         d.baseURL + "/posters/" + alert.PosterCode,
	}

	var template string
	switch {
	case task.Kind == models.TaskKindConfirmed:
		template = msgs.MatchConfirmed
	case task.ShelterPhone != "":
		template = msgs.MatchFound
	default:
		// Shelters without a public contact number get the variant that
		// carries no phone at all.
		template = msgs.MatchFoundNoContact
	}

	body := Render(template, vars)

	res, err := d.sender.Send(ctx, alert.ReporterPhone, body)
	if err != nil {
		if d.onDone != nil {
			d.onDone(models.DeliveryEvent{
				Kind:     "sms_failed",
				PersonID: task.PersonID,
				ReportID: alert.ReportID,
				Error:    err.Error(),
			})
		}
		return err
	}

	slog.Info("sms notification sent",
		"person_id", task.PersonID,
		"report_id", alert.ReportID,
		"message_id", res.MessageID,
	)
	observability.SMSSent.Inc()

	if d.onDone != nil {
		d.onDone(models.DeliveryEvent{
			Kind:      "sms_delivered",
			PersonID:  task.PersonID,
			ReportID:  alert.ReportID,
			MessageID: res.MessageID,
		})
	}
	return nil
}
