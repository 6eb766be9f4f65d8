package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"ownership-api/internal/metrics"
	"ownership-api/internal/models"
)

// Batch cap per sweep keeps a huge backlog from holding long transactions
const expiryBatchSize = 500

// InvitationExpirer periodically marks overdue pending invitations as
// expired. The sweep is a hygiene pass: reads always re-check the deadline,
// so a late sweep never lets an overdue token through.
type InvitationExpirer struct {
	db       *gorm.DB
	interval time.Duration
	stopChan chan struct{}
}

// NewInvitationExpirer creates a new invitation expirer job
func NewInvitationExpirer(db *gorm.DB, interval time.Duration) *InvitationExpirer {
	return &InvitationExpirer{
		db:       db,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep loop
func (e *InvitationExpirer) Start() {
	log.Printf("[InvitationExpirer] Starting with interval %v", e.interval)

	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		e.SweepOnce()

		for {
			select {
			case <-ticker.C:
				e.SweepOnce()
			case <-e.stopChan:
				log.Println("[InvitationExpirer] Stopped")
				return
			}
		}
	}()
}

// Stop halts the sweep loop
func (e *InvitationExpirer) Stop() {
	close(e.stopChan)
}

// SweepOnce expires one batch of overdue pending invitations. Each row is
// flipped with a conditional update so a sweep never clobbers an
// acceptance or cancellation that lands mid-batch.
func (e *InvitationExpirer) SweepOnce() {
	now := time.Now()

	var ids []uint
	err := e.db.Model(&models.TenantInvitation{}).
		Where("status = ? AND expires_at <= ?", models.InvitationStatusPending, now).
		Limit(expiryBatchSize).
		Pluck("id", &ids).Error
	if err != nil {
		log.Printf("[InvitationExpirer] Failed to query overdue invitations: %v", err)
		return
	}

	if len(ids) == 0 {
		return
	}

	expired := 0
	for _, id := range ids {
		res := e.db.Model(&models.TenantInvitation{}).
			Where("id = ? AND status = ?", id, models.InvitationStatusPending).
			Update("status", models.InvitationStatusExpired)
		if res.Error != nil {
			log.Printf("[InvitationExpirer] Failed to expire invitation %d: %v", id, res.Error)
			continue
		}
		expired += int(res.RowsAffected)
	}

	if expired > 0 {
		metrics.InvitationsExpired.Add(float64(expired))
		log.Printf("[InvitationExpirer] Expired %d invitation(s)", expired)
	}
}
