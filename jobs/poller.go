package jobs

import (
	"context"
	"fmt"
	"log"

	"rfp-backend/services"

	"github.com/robfig/cron/v3"
)

// StartEmailPolling schedules the inbox check every intervalMinutes. A
// failing run is logged and the schedule keeps going. The returned cron is
// stopped at shutdown.
func StartEmailPolling(svc *services.ProposalService, intervalMinutes int) (*cron.Cron, error) {
	if intervalMinutes < 1 {
		intervalMinutes = 5
	}

	c := cron.New()
	spec := fmt.Sprintf("*/%d * * * *", intervalMinutes)
	_, err := c.AddFunc(spec, func() {
		result, err := svc.CheckAndProcessEmails(context.Background())
		if err != nil {
			log.Printf("email polling job failed: %v", err)
			return
		}
		log.Printf("email polling completed: %s", result.Message)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule email polling: %w", err)
	}

	log.Printf("starting email polling job (every %d minutes)", intervalMinutes)
	c.Start()
	return c, nil
}
