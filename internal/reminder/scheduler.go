// Package reminder sends birthday reminders to the friends of users whose
// birthday is coming up.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/giftlist/internal/metrics"
	"github.com/fkhayef/giftlist/internal/notification"
	"github.com/fkhayef/giftlist/internal/user"
)

type birthdaySource interface {
	ListBirthdaysBetween(ctx context.Context, from, to time.Time) ([]*user.User, error)
}

type friendSource interface {
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
}

type notifier interface {
	CreateOnce(ctx context.Context, recipientID int64, t notification.Type, metadata any, dedupeKey string) (*notification.Notification, bool, error)
}

// Scheduler periodically creates birthday_reminder notifications
type Scheduler struct {
	users    birthdaySource
	friends  friendSource
	notifier notifier
	interval time.Duration
	leadDays []int
	log      *logrus.Entry
	now      func() time.Time
}

// NewScheduler creates a scheduler. leadDays is expected in descending order,
// as config.Load returns it.
func NewScheduler(users birthdaySource, friends friendSource, notifier notifier, interval time.Duration, leadDays []int, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		users:    users,
		friends:  friends,
		notifier: notifier,
		interval: interval,
		leadDays: leadDays,
		log:      log.WithField("service", "reminder"),
		now:      time.Now,
	}
}

// Start runs one pass immediately and then one per interval. It blocks until
// ctx is cancelled, so launch it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval.String()).Info("reminder scheduler started")
	s.run(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	sent, err := s.RunOnce(ctx, s.now())
	if err != nil {
		s.log.WithError(err).Error("reminder run failed")
		return
	}
	if sent > 0 {
		s.log.WithField("sent", sent).Info("birthday reminders sent")
	}
}

// RunOnce creates the reminders due on now's calendar day and returns how many
// were new. Reminders that already exist are skipped through their dedupe
// key, so running twice a day is harmless. Per-recipient failures are logged
// and do not stop the run.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) (int, error) {
	if len(s.leadDays) == 0 {
		return 0, nil
	}

	horizon := now.AddDate(0, 0, s.leadDays[0])
	users, err := s.users.ListBirthdaysBetween(ctx, now, horizon)
	if err != nil {
		metrics.IncReminderRun("error")
		return 0, fmt.Errorf("listing upcoming birthdays: %w", err)
	}

	sent, failed := 0, 0
	for _, u := range users {
		next, ok := u.NextBirthday(now)
		if !ok {
			continue
		}
		days := user.DaysBetween(now, next)
		if !s.isLeadDay(days) {
			continue
		}

		friendIDs, err := s.friends.FriendIDs(ctx, u.ID)
		if err != nil {
			failed++
			s.log.WithError(err).WithField("user_id", u.ID).Error("failed to load friends for reminder")
			continue
		}

		metadata := notification.BirthdayReminderMetadata{
			DaysUntil:  notification.DaysOf(days),
			FriendID:   u.ID,
			FriendName: u.Name(),
			Date:       next.Format(user.DateLayout),
		}
		key := DedupeKey(u.ID, next, days)

		for _, recipientID := range friendIDs {
			_, created, err := s.notifier.CreateOnce(ctx, recipientID, notification.TypeBirthdayReminder, metadata, key)
			if err != nil {
				failed++
				s.log.WithError(err).WithFields(logrus.Fields{
					"user_id":      u.ID,
					"recipient_id": recipientID,
				}).Error("failed to create birthday reminder")
				continue
			}
			if created {
				sent++
			}
		}
	}

	if failed > 0 {
		metrics.IncReminderRun("partial")
	} else {
		metrics.IncReminderRun("success")
	}
	return sent, nil
}

func (s *Scheduler) isLeadDay(days int) bool {
	for _, d := range s.leadDays {
		if d == days {
			return true
		}
	}
	return false
}

// DedupeKey identifies one reminder about one birthday occurrence. It is
// combined with the recipient by the notification store.
func DedupeKey(subjectID int64, occurrence time.Time, days int) string {
	return fmt.Sprintf("birthday:%d:%s:%d", subjectID, occurrence.Format(user.DateLayout), days)
}
