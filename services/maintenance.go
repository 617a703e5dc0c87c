package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Schedules are the cron specs (with seconds) of the maintenance jobs.
// An empty spec disables the job.
type Schedules struct {
	ExpireSubscriptions string
	GenerateInvoices    string
	FlushLogs           string
	ArchiveLogs         string

	// LogRetentionDays is how long activity logs stay in the database.
	LogRetentionDays int
}

// Maintenance runs the periodic jobs of the center.
type Maintenance struct {
	cron          *cron.Cron
	subscriptions *SubscriptionService
	invoices      *InvoiceService
	logs          *LogArchiveService
	retention     int
	now           func() time.Time
}

func NewMaintenance(subs *SubscriptionService, invoices *InvoiceService, logs *LogArchiveService) *Maintenance {
	return &Maintenance{
		cron:          cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		subscriptions: subs,
		invoices:      invoices,
		logs:          logs,
		now:           time.Now,
	}
}

// Register adds the jobs to the scheduler.
func (m *Maintenance) Register(s Schedules) error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"expire_subscriptions", s.ExpireSubscriptions, m.ExpireSubscriptions},
		{"generate_invoices", s.GenerateInvoices, m.GenerateInvoices},
		{"flush_logs", s.FlushLogs, m.FlushLogs},
		{"archive_logs", s.ArchiveLogs, m.ArchiveLogs},
	}
	m.retention = s.LogRetentionDays
	for _, job := range jobs {
		if job.spec == "" || job.run == nil {
			continue
		}
		if _, err := m.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("invalid schedule for %s: %w", job.name, err)
		}
		logrus.WithFields(logrus.Fields{"job": job.name, "spec": job.spec}).Info("Maintenance job scheduled")
	}
	return nil
}

func (m *Maintenance) Start() { m.cron.Start() }

// Stop waits for running jobs to finish.
func (m *Maintenance) Stop() {
	<-m.cron.Stop().Done()
}

// ExpireSubscriptions deactivates escuelita subscriptions whose month is over.
func (m *Maintenance) ExpireSubscriptions() {
	n, err := m.subscriptions.ExpireEnded(m.now())
	if err != nil {
		logrus.WithError(err).Error("Failed to expire subscriptions")
		return
	}
	logrus.WithField("count", n).Info("Expired subscriptions")
}

// GenerateInvoices bills the current month.
func (m *Maintenance) GenerateInvoices() {
	now := m.now().UTC()
	n, err := m.invoices.GenerateMonthly(int(now.Month()), now.Year())
	if err != nil {
		logrus.WithError(err).Error("Failed to generate invoices")
		return
	}
	logrus.WithFields(logrus.Fields{"count": n, "mes": int(now.Month()), "año": now.Year()}).Info("Generated invoices")
}

// FlushLogs moves cached activity logs to the database.
func (m *Maintenance) FlushLogs() {
	if m.logs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := m.logs.FlushCachedLogsToDatabase(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to flush cached logs")
	}
}

// ArchiveLogs moves activity logs past the retention period to object storage.
func (m *Maintenance) ArchiveLogs() {
	if m.logs == nil || m.retention <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	n, err := m.logs.ArchiveOldLogs(ctx, m.retention)
	if err != nil {
		logrus.WithError(err).Error("Failed to archive activity logs")
		return
	}
	logrus.WithField("count", n).Info("Archived activity logs")
}
