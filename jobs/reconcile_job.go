package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"field-service-server/models"
	"field-service-server/services"
)

// ReconcileJob periodically repairs service requests whose status has
// drifted from their task's. Drift should not happen while writes go
// through the transactional paths; this catches anything older or manual.
type ReconcileJob struct {
	db       *gorm.DB
	interval time.Duration
	stopChan chan bool
}

// NewReconcileJob creates a reconcile job. A non-positive interval falls
// back to five minutes.
func NewReconcileJob(db *gorm.DB, interval time.Duration) *ReconcileJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReconcileJob{
		db:       db,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the reconcile loop
func (j *ReconcileJob) Start() {
	go j.run()
	log.Println("🚀 Status reconcile job started")
}

// Stop stops the reconcile loop
func (j *ReconcileJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Status reconcile job stopped")
}

func (j *ReconcileJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.ReconcileOnce(); err != nil {
				log.Printf("❌ Status reconcile failed: %v", err)
			}
		case <-j.stopChan:
			return
		}
	}
}

// ReconcileOnce scans for request/task status mismatches and re-mirrors
// each one, returning how many were repaired.
func (j *ReconcileJob) ReconcileOnce() (int, error) {
	var drifted []models.Task
	err := j.db.Model(&models.Task{}).
		Joins("JOIN service_requests ON service_requests.id = tasks.service_request_id AND service_requests.deleted_at IS NULL").
		Where("service_requests.status <> tasks.status").
		Find(&drifted).Error
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range drifted {
		task := &drifted[i]
		err := j.db.Transaction(func(tx *gorm.DB) error {
			return services.MirrorTaskStatus(tx, task)
		})
		if err != nil {
			log.Printf("❌ Failed to reconcile request %d from task %d: %v", task.ServiceRequestID, task.ID, err)
			continue
		}
		log.Printf("✅ Reconciled request %d to task status %s", task.ServiceRequestID, task.Status)
		repaired++
	}

	return repaired, nil
}
