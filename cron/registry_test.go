package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRegistry_Register_Jobs(t *testing.T) {
	ran := false
	Register("testregistryjob", "@every 1h", func(ctx context.Context, db *gorm.DB) error {
		ran = true
		return nil
	})
	defer Unregister("testregistryjob")

	j, ok := Lookup("testregistryjob")
	if !ok {
		t.Fatal("testregistryjob not in Jobs()")
	}
	if j.Schedule != "@every 1h" {
		t.Errorf("Schedule = %q, want @every 1h", j.Schedule)
	}
	j.Run(context.Background(), nil)
	if !ran {
		t.Error("Run did not execute")
	}
}

func TestRegistry_Register_DuplicatePanics(t *testing.T) {
	Register("dupjob", "@hourly", func(context.Context, *gorm.DB) error { return nil })
	defer Unregister("dupjob")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate")
		}
	}()
	Register("dupjob", "@daily", func(context.Context, *gorm.DB) error { return nil })
}

func TestScheduler_AddsJobs(t *testing.T) {
	Register("schedjob", "*/5 * * * *", func(context.Context, *gorm.DB) error { return errors.New("boom") })
	defer Unregister("schedjob")

	s, err := NewScheduler(nil, quietLogger())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if s.Entries() != len(Jobs()) {
		t.Errorf("Entries = %d, want %d", s.Entries(), len(Jobs()))
	}
	j, _ := Lookup("schedjob")
	if err := s.Run(context.Background(), j); err == nil || err.Error() != "boom" {
		t.Errorf("Run err = %v, want boom", err)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	Register("badjob", "not a schedule", func(context.Context, *gorm.DB) error { return nil })
	defer Unregister("badjob")

	if _, err := NewScheduler(nil, quietLogger()); err == nil {
		t.Error("expected error for invalid schedule")
	}
}
