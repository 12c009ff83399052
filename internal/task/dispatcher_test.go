package task

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/hibiken/asynq"
)

type fakeEnqueuer struct {
	errs   []error
	calls  int
	task   *asynq.Task
	opts   []asynq.Option
	closed bool
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.task = task
	f.opts = opts
	f.calls++
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return nil, f.errs[f.calls-1]
	}
	return &asynq.TaskInfo{ID: "x"}, nil
}

func (f *fakeEnqueuer) Close() error {
	f.closed = true
	return nil
}

type fakeInspector struct {
	info      *asynq.TaskInfo
	infoErr   error
	deleteErr error
	deleted   string
	closed    bool
}

func (f *fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeInspector) DeleteTask(queue, id string) error {
	f.deleted = id
	return f.deleteErr
}

func (f *fakeInspector) Close() error {
	f.closed = true
	return nil
}

func TestDispatcher_SubmitTranscode(t *testing.T) {
	fake := &fakeEnqueuer{}
	d := &Dispatcher{client: fake, inspector: &fakeInspector{}}

	in := port.TranscodeInput{Bucket: "raw", Object: "intro.mp4"}
	if err := d.SubmitTranscode(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.task == nil || fake.task.Type() != TypeTranscodeAsset {
		t.Fatalf("unexpected task %+v", fake.task)
	}

	var maxRetry, id any
	for _, o := range fake.opts {
		switch o.Type() {
		case asynq.MaxRetryOpt:
			maxRetry = o.Value()
		case asynq.TaskIDOpt:
			id = o.Value()
		}
	}
	if maxRetry != 0 {
		t.Errorf("max retry = %v; want 0", maxRetry)
	}
	if id != "transcode:raw/intro.mp4" {
		t.Errorf("task id = %v", id)
	}
}

func TestDispatcher_Conflict(t *testing.T) {
	tests := []struct {
		name        string
		inspector   *fakeInspector
		enqueueErrs []error
		wantErr     bool
		wantCalls   int
		wantDeleted string
	}{
		{
			name:        "still pending",
			inspector:   &fakeInspector{info: &asynq.TaskInfo{State: asynq.TaskStatePending}},
			enqueueErrs: []error{asynq.ErrTaskIDConflict},
			wantCalls:   1,
		},
		{
			name:        "running",
			inspector:   &fakeInspector{info: &asynq.TaskInfo{State: asynq.TaskStateActive}},
			enqueueErrs: []error{asynq.ErrTaskIDConflict},
			wantCalls:   1,
		},
		{
			name:        "archived after failure",
			inspector:   &fakeInspector{info: &asynq.TaskInfo{State: asynq.TaskStateArchived}},
			enqueueErrs: []error{asynq.ErrTaskIDConflict},
			wantCalls:   2,
			wantDeleted: "transcode:raw/a.mp4",
		},
		{
			name:        "completed",
			inspector:   &fakeInspector{info: &asynq.TaskInfo{State: asynq.TaskStateCompleted}},
			enqueueErrs: []error{asynq.ErrTaskIDConflict},
			wantCalls:   2,
			wantDeleted: "transcode:raw/a.mp4",
		},
		{
			name:        "gone in between",
			inspector:   &fakeInspector{infoErr: asynq.ErrTaskNotFound},
			enqueueErrs: []error{asynq.ErrTaskIDConflict},
			wantCalls:   2,
		},
		{
			name:        "requeued by someone else",
			inspector:   &fakeInspector{info: &asynq.TaskInfo{State: asynq.TaskStateArchived}},
			enqueueErrs: []error{asynq.ErrTaskIDConflict, asynq.ErrTaskIDConflict},
			wantCalls:   2,
			wantDeleted: "transcode:raw/a.mp4",
		},
		{
			name:        "inspect fails",
			inspector:   &fakeInspector{infoErr: errors.New("i/o timeout")},
			enqueueErrs: []error{asynq.ErrTaskIDConflict},
			wantErr:     true,
			wantCalls:   1,
		},
		{
			name: "delete fails",
			inspector: &fakeInspector{
				info:      &asynq.TaskInfo{State: asynq.TaskStateArchived},
				deleteErr: errors.New("i/o timeout"),
			},
			enqueueErrs: []error{asynq.ErrTaskIDConflict},
			wantErr:     true,
			wantCalls:   1,
			wantDeleted: "transcode:raw/a.mp4",
		},
		{
			name:        "redis down",
			inspector:   &fakeInspector{},
			enqueueErrs: []error{errors.New("dial tcp: connection refused")},
			wantErr:     true,
			wantCalls:   1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enq := &fakeEnqueuer{errs: tc.enqueueErrs}
			d := &Dispatcher{client: enq, inspector: tc.inspector}
			err := d.SubmitTranscode(context.Background(), port.TranscodeInput{Bucket: "raw", Object: "a.mp4"})
			if (err != nil) != tc.wantErr {
				t.Errorf("err = %v; wantErr %v", err, tc.wantErr)
			}
			if enq.calls != tc.wantCalls {
				t.Errorf("enqueue calls = %d; want %d", enq.calls, tc.wantCalls)
			}
			if tc.inspector.deleted != tc.wantDeleted {
				t.Errorf("deleted = %q; want %q", tc.inspector.deleted, tc.wantDeleted)
			}
		})
	}
}

func TestDispatcher_ResubmitAfterFailure(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	d := NewDispatcher(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = d.Close() })
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = inspector.Close() })

	ctx := context.Background()
	in := port.TranscodeInput{Bucket: "raw", Object: "a.mp4"}
	id := "transcode:raw/a.mp4"

	if err := d.SubmitTranscode(ctx, in); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	// a second submit while pending keeps the single queued job
	if err := d.SubmitTranscode(ctx, in); err != nil {
		t.Fatalf("submit while pending: %v", err)
	}

	// the worker gives up on a failed job without retrying, leaving it archived
	if err := inspector.ArchiveTask(queueName, id); err != nil {
		t.Fatalf("ArchiveTask: %v", err)
	}
	info, err := inspector.GetTaskInfo(queueName, id)
	if err != nil || info.State != asynq.TaskStateArchived {
		t.Fatalf("task info = %+v, %v; want archived", info, err)
	}

	if err := d.SubmitTranscode(ctx, in); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	info, err = inspector.GetTaskInfo(queueName, id)
	if err != nil {
		t.Fatalf("GetTaskInfo: %v", err)
	}
	if info.State != asynq.TaskStatePending {
		t.Errorf("state after resubmit = %v; want pending", info.State)
	}
}

func TestDispatcher_Close(t *testing.T) {
	enq, insp := &fakeEnqueuer{}, &fakeInspector{}
	if err := (&Dispatcher{client: enq, inspector: insp}).Close(); err != nil || !enq.closed || !insp.closed {
		t.Errorf("close = %v, client closed = %v, inspector closed = %v", err, enq.closed, insp.closed)
	}
}
