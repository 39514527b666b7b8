// Package scheduler запускает периодические задачи по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCampaignsSpec = "@every 1m"
	sendDueTimeout       = 50 * time.Second
)

type Scheduler struct {
	cron      *cron.Cron
	campaigns CampaignSender
	l         *logrus.Entry
}

// New создает планировщик, который по расписанию spec отправляет запланированные кампании.
func New(campaigns CampaignSender, spec string, l *logrus.Logger) (*Scheduler, error) {
	entry := l.WithFields(logrus.Fields{"component": "scheduler", "module": "cron"})
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(entry)),
			cron.SkipIfStillRunning(cron.PrintfLogger(entry)),
		)),
		campaigns: campaigns,
		l:         entry,
	}
	if spec == "" {
		spec = DefaultCampaignsSpec
	}
	if _, err := s.cron.AddFunc(spec, s.sendDueCampaigns); err != nil {
		return nil, fmt.Errorf("schedule campaigns with spec %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.l.Info("Starting")
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения запущенных задач, но не дольше ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.l.Info("Stopped")
	case <-ctx.Done():
		s.l.Warn("Stop timeout, running jobs abandoned")
	}
}

func (s *Scheduler) sendDueCampaigns() {
	ctx, cancel := context.WithTimeout(context.Background(), sendDueTimeout)
	defer cancel()

	sent, err := s.campaigns.SendDue(ctx)
	if err != nil {
		s.l.WithError(err).WithField("sent", sent).Error("send due campaigns")
		return
	}
	if sent > 0 {
		s.l.WithField("sent", sent).Info("due campaigns sent")
	}
}
