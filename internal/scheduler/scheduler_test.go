package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestAddCronJobValidation(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop() })

	cases := []struct {
		name    string
		jobName string
		cron    string
		wantErr bool
	}{
		{"empty name", "", "0 3 * * *", true},
		{"blank name", "   ", "0 3 * * *", true},
		{"empty cron", "sweep", "", true},
		{"bad cron", "sweep", "not-a-cron", true},
		{"valid", "sweep", "0 3 * * *", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddCronJob(tc.jobName, tc.cron, func(context.Context) {})
			if (err != nil) != tc.wantErr {
				t.Fatalf("AddCronJob(%q, %q) err = %v, wantErr = %v", tc.jobName, tc.cron, err, tc.wantErr)
			}
		})
	}
}

func TestRunBoundedSuppliesDeadline(t *testing.T) {
	called := false
	run := runBounded(log.Logger, func(ctx context.Context) {
		called = true
		if _, ok := ctx.Deadline(); !ok {
			t.Error("job context has no deadline")
		}
		if err := ctx.Err(); err != nil {
			t.Errorf("job context already done: %v", err)
		}
	})

	run()
	if !called {
		t.Fatal("task was not invoked")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
