package domain

import "testing"

func TestParseJobStatus(t *testing.T) {
	for _, valid := range []string{"OPEN", "ONGOING", "CLOSED"} {
		if _, err := ParseJobStatus(valid); err != nil {
			t.Errorf("ParseJobStatus(%q) returned error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "open", "DONE", "PENDING"} {
		if _, err := ParseJobStatus(invalid); err == nil {
			t.Errorf("ParseJobStatus(%q) expected error", invalid)
		}
	}
}

func TestJobTransitionAllowed(t *testing.T) {
	cases := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"open to ongoing", JobOpen, JobOngoing, true},
		{"open to closed", JobOpen, JobClosed, true},
		{"ongoing to closed", JobOngoing, JobClosed, true},
		{"ongoing back to open", JobOngoing, JobOpen, false},
		{"closed is terminal", JobClosed, JobOpen, false},
		{"closed to ongoing", JobClosed, JobOngoing, false},
		{"no self loop", JobOpen, JobOpen, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := JobTransitionAllowed(tc.from, tc.to); got != tc.want {
				t.Errorf("JobTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestParseAdoptionFormStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "ACCEPTED", "REJECTED"} {
		if _, err := ParseAdoptionFormStatus(valid); err != nil {
			t.Errorf("ParseAdoptionFormStatus(%q) returned error: %v", valid, err)
		}
	}
	if _, err := ParseAdoptionFormStatus("accepted"); err == nil {
		t.Error("ParseAdoptionFormStatus is case sensitive, expected error")
	}
}
