package model

import (
	"errors"
	"testing"
	"time"
)

func testJob() *Job {
	return NewJob(InboundMessage{ChatID: 1, MessageID: 1, Kind: MessageKindVoice, ReceivedAt: time.Now()})
}

func TestJobWalksPipelineInOrder(t *testing.T) {
	job := testJob()
	want := []JobState{
		JobStateFetching,
		JobStateTranscoding,
		JobStateRecognizing,
		JobStateReplying,
		JobStateDone,
	}
	if job.State() != JobStateReceived {
		t.Fatalf("fresh job state = %s", job.State())
	}
	for _, s := range want {
		if err := job.Advance(); err != nil {
			t.Fatal(err)
		}
		if job.State() != s {
			t.Fatalf("state = %s, want %s", job.State(), s)
		}
	}
	if err := job.Advance(); err == nil {
		t.Fatal("advancing past done must error")
	}
}

func TestTerminalStatesStick(t *testing.T) {
	job := testJob()
	job.Fail(errors.New("boom"))
	if job.State() != JobStateFailed {
		t.Fatalf("state = %s", job.State())
	}
	if job.FailedStage() != JobStateReceived {
		t.Errorf("failed stage = %s, want the stage it died in", job.FailedStage())
	}
	job.Abandon()
	if job.State() != JobStateFailed {
		t.Error("Abandon must not overwrite a terminal state")
	}
	job.Fail(errors.New("again"))
	if !errors.Is(job.LastError(), job.LastError()) || job.LastError().Error() != "boom" {
		t.Errorf("last error = %v, want the first failure kept", job.LastError())
	}

	job = testJob()
	job.Abandon()
	job.Fail(errors.New("late"))
	if job.State() != JobStateAbandoned {
		t.Error("Fail must not overwrite abandoned")
	}
}

func TestAttemptCounterResetsPerStage(t *testing.T) {
	job := testJob()
	if err := job.Advance(); err != nil {
		t.Fatal(err)
	}
	job.RecordAttempt()
	job.RecordAttempt()
	if got := job.Attempts(); got != 2 {
		t.Fatalf("attempts = %d, want 2", got)
	}
	if err := job.Advance(); err != nil {
		t.Fatal(err)
	}
	if got := job.Attempts(); got != 0 {
		t.Fatalf("attempts after transition = %d, want 0", got)
	}
	if got := job.RecordAttempt(); got != 1 {
		t.Fatalf("first attempt in new stage = %d, want 1", got)
	}
}

func TestJobIDsAreUniqueAndSortable(t *testing.T) {
	seen := map[string]bool{}
	var prev string
	for i := 0; i < 1000; i++ {
		j := testJob()
		if seen[j.ID] {
			t.Fatalf("duplicate id %s", j.ID)
		}
		seen[j.ID] = true
		if prev != "" && j.ID < prev {
			t.Fatalf("ids not monotonic: %s after %s", j.ID, prev)
		}
		prev = j.ID
	}
}
