package reminder

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
	"helpdesk-cloud/internal/notify"
	"helpdesk-cloud/internal/observability/metrics"
)

// BranchSource lists branches eligible for reminders.
type BranchSource interface {
	ListActive(ctx context.Context) ([]masterdata.Branch, error)
}

// RecordChecker reports whether a branch already submitted a record on a
// given day.
type RecordChecker interface {
	HasRecordOn(ctx context.Context, branchID string, day time.Time) (bool, error)
}

// Scheduler sends end-of-day reminders to branches that have not submitted
// their daily meter readings yet.
type Scheduler struct {
	branches BranchSource
	records  RecordChecker
	channel  notify.Channel
	spec     string
	logger   *log.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewScheduler constructs a scheduler. The cron spec uses the standard
// five-field format, e.g. "0 17 * * *" for daily at 17:00.
func NewScheduler(branches BranchSource, records RecordChecker, channel notify.Channel, spec string, logger *log.Logger) (*Scheduler, error) {
	if branches == nil {
		return nil, errors.New("reminder: nil branch source")
	}
	if records == nil {
		return nil, errors.New("reminder: nil record checker")
	}
	if channel == nil {
		return nil, errors.New("reminder: nil channel")
	}
	if spec == "" {
		return nil, errors.New("reminder: empty cron spec")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		branches: branches,
		records:  records,
		channel:  channel,
		spec:     spec,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the cron job and begins scheduling.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Printf("reminder: scheduled with spec %q", s.spec)
	return nil
}

// Stop halts scheduling. Already-running jobs finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce performs a single reminder sweep. Failures on one branch never
// block the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	today := s.now().UTC()
	branches, err := s.branches.ListActive(ctx)
	if err != nil {
		s.logger.Printf("reminder: list branches: %v", err)
		return
	}

	for _, branch := range branches {
		submitted, err := s.records.HasRecordOn(ctx, branch.ID, today)
		if err != nil {
			s.logger.Printf("reminder: branch %s: %v", branch.ID, err)
			continue
		}
		if submitted {
			continue
		}
		if branch.Phone == "" {
			s.logger.Printf("reminder: branch %s has no phone, skipping", branch.ID)
			continue
		}
		message := notify.RecordReminderMessage(branch.Name, today)
		result := metrics.ResultSuccess
		if err := s.channel.Send(ctx, branch.Phone, message); err != nil {
			result = metrics.ResultError
			s.logger.Printf("reminder: branch %s: send failed: %v", branch.ID, err)
		}
		metrics.IncNotify("record_reminder", result)
	}
}
