package model

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"telegram-voice-translator/internal/domain"
)

type JobState string

const (
	JobStateReceived    JobState = "received"
	JobStateFetching    JobState = "fetching"
	JobStateTranscoding JobState = "transcoding"
	JobStateRecognizing JobState = "recognizing"
	JobStateReplying    JobState = "replying"
	JobStateDone        JobState = "done"
	JobStateFailed      JobState = "failed"
	JobStateAbandoned   JobState = "abandoned"
)

// next maps each non-terminal state to its only legal successor.
var next = map[JobState]JobState{
	JobStateReceived:    JobStateFetching,
	JobStateFetching:    JobStateTranscoding,
	JobStateTranscoding: JobStateRecognizing,
	JobStateRecognizing: JobStateReplying,
	JobStateReplying:    JobStateDone,
}

// Job tracks one inbound message through the pipeline. It is owned
// exclusively by the dispatcher worker processing it; only state inspection
// from tests/metrics goes through the mutex.
type Job struct {
	ID      string
	TraceID string
	Message InboundMessage

	mu          sync.Mutex
	state       JobState
	failedStage JobState
	attempt     int // per-stage, reset on transition
	lastErr     error
	createdAt   time.Time
}

var ulidEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
var ulidMu sync.Mutex

func newJobID(t time.Time) string {
	ulidMu.Lock()
	defer ulidMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), ulidEntropy).String()
}

func NewJob(msg InboundMessage) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(now),
		TraceID:   uuid.NewString(),
		Message:   msg,
		state:     JobStateReceived,
		createdAt: now,
	}
}

func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) CreatedAt() time.Time { return j.createdAt }

// Advance moves the job to the next pipeline state. Jobs never regress and
// never leave a terminal state.
func (j *Job) Advance() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	to, ok := next[j.state]
	if !ok {
		return fmt.Errorf("job %s: no transition from terminal state %s", j.ID, j.state)
	}
	j.state = to
	j.attempt = 0
	return nil
}

// Fail marks the job terminally failed, recording the stage it died in.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.terminalLocked() {
		return
	}
	j.failedStage = j.state
	j.state = JobStateFailed
	j.lastErr = err
}

// Abandon marks a stale job dropped without user-visible effect.
func (j *Job) Abandon() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.terminalLocked() {
		return
	}
	j.state = JobStateAbandoned
	if j.lastErr == nil {
		j.lastErr = domain.ErrJobTimeout
	}
}

func (j *Job) terminalLocked() bool {
	switch j.state {
	case JobStateDone, JobStateFailed, JobStateAbandoned:
		return true
	}
	return false
}

func (j *Job) Terminal() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.terminalLocked()
}

// RecordAttempt bumps the current stage's attempt counter and returns it.
func (j *Job) RecordAttempt() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.attempt++
	return j.attempt
}

func (j *Job) Attempts() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.attempt
}

// FailedStage reports which stage a failed job died in, empty otherwise.
func (j *Job) FailedStage() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.failedStage
}

func (j *Job) LastError() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastErr
}
