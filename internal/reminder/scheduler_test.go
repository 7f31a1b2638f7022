package reminder

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
)

type stubBranchSource struct {
	branches []masterdata.Branch
}

func (s *stubBranchSource) ListActive(_ context.Context) ([]masterdata.Branch, error) {
	return s.branches, nil
}

type stubRecordChecker struct {
	submitted map[string]bool
	errors    map[string]error
}

func (s *stubRecordChecker) HasRecordOn(_ context.Context, branchID string, _ time.Time) (bool, error) {
	if err := s.errors[branchID]; err != nil {
		return false, err
	}
	return s.submitted[branchID], nil
}

type recordingChannel struct {
	phones   []string
	messages []string
}

func (c *recordingChannel) Send(_ context.Context, phone, message string) error {
	c.phones = append(c.phones, phone)
	c.messages = append(c.messages, message)
	return nil
}

func TestRunOnceRemindsOnlyMissingBranches(t *testing.T) {
	branches := &stubBranchSource{branches: []masterdata.Branch{
		{ID: "br-1", Name: "Branch A", Phone: "+628111", Active: true},
		{ID: "br-2", Name: "Branch B", Phone: "+628222", Active: true},
		{ID: "br-3", Name: "Branch C", Phone: "", Active: true},
	}}
	checker := &stubRecordChecker{submitted: map[string]bool{
		"br-1": true,
		"br-2": false,
		"br-3": false,
	}}
	channel := &recordingChannel{}

	scheduler, err := NewScheduler(branches, checker, channel, "0 17 * * *", log.New(&strings.Builder{}, "", 0))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	scheduler.now = func() time.Time {
		return time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC)
	}

	scheduler.RunOnce(context.Background())

	if len(channel.phones) != 1 || channel.phones[0] != "+628222" {
		t.Fatalf("expected single reminder to br-2 phone, got %v", channel.phones)
	}
	if !strings.Contains(channel.messages[0], "Branch B") {
		t.Fatalf("expected branch name in reminder, got %s", channel.messages[0])
	}
	if !strings.Contains(channel.messages[0], "05-03-2024") {
		t.Fatalf("expected date in reminder, got %s", channel.messages[0])
	}
}

func TestRunOnceSkipsBranchOnCheckError(t *testing.T) {
	branches := &stubBranchSource{branches: []masterdata.Branch{
		{ID: "br-1", Name: "Branch A", Phone: "+628111", Active: true},
		{ID: "br-2", Name: "Branch B", Phone: "+628222", Active: true},
	}}
	checker := &stubRecordChecker{
		submitted: map[string]bool{"br-2": false},
		errors:    map[string]error{"br-1": errors.New("db down")},
	}
	channel := &recordingChannel{}

	scheduler, err := NewScheduler(branches, checker, channel, "0 17 * * *", log.New(&strings.Builder{}, "", 0))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	scheduler.RunOnce(context.Background())

	if len(channel.phones) != 1 || channel.phones[0] != "+628222" {
		t.Fatalf("expected br-2 still reminded after br-1 error, got %v", channel.phones)
	}
}
