package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
	"github.com/hibiken/asynq"
)

// queueName is the asynq queue transcode tasks go to.
const queueName = "default"

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

// Dispatcher submits transcode jobs to the Redis-backed asynq queue.
type Dispatcher struct {
	client    enqueuer
	inspector taskInspector
}

// compile-time check: *Dispatcher must satisfy port.TranscodeSubmitter
var _ port.TranscodeSubmitter = (*Dispatcher)(nil)

func NewDispatcher(addr, password string, db int) *Dispatcher {
	opt := asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}
	return &Dispatcher{client: asynq.NewClient(opt), inspector: asynq.NewInspector(opt)}
}

// SubmitTranscode enqueues the job once. A job still pending or running for
// the same object counts as submitted; a finished or failed one is replaced.
func (d *Dispatcher) SubmitTranscode(ctx context.Context, in port.TranscodeInput) error {
	t, err := NewTranscodeAssetTask(in)
	if err != nil {
		return err
	}
	id := taskID(in)

	err = d.enqueue(ctx, t, id)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		released, rErr := d.releaseFinished(id)
		if rErr != nil {
			return rErr
		}
		if !released {
			logger.Infof(ctx, "transcode of %s/%s already queued", in.Bucket, in.Object)
			return nil
		}
		logger.Infof(ctx, "previous transcode of %s/%s is over, queuing a new one", in.Bucket, in.Object)
		err = d.enqueue(ctx, t, id)
	}
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// another submitter re-queued it in between
		logger.Infof(ctx, "transcode of %s/%s already queued", in.Bucket, in.Object)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Infof(ctx, "queued transcode of %s/%s", in.Bucket, in.Object)
	return nil
}

func (d *Dispatcher) enqueue(ctx context.Context, t *asynq.Task, id string) error {
	_, err := d.client.EnqueueContext(ctx, t, asynq.Queue(queueName), asynq.MaxRetry(0), asynq.TaskID(id))
	return err
}

// releaseFinished deletes the task holding id when it is archived or
// completed, and reports whether the id is free again.
func (d *Dispatcher) releaseFinished(id string) (bool, error) {
	info, err := d.inspector.GetTaskInfo(queueName, id)
	if errors.Is(err, asynq.ErrTaskNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect task %q: %w", id, err)
	}

	switch info.State {
	case asynq.TaskStateArchived, asynq.TaskStateCompleted:
		if err := d.inspector.DeleteTask(queueName, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return false, fmt.Errorf("delete finished task %q: %w", id, err)
		}
		return true, nil
	default:
		return false, nil
	}
}

func (d *Dispatcher) Close() error {
	return errors.Join(d.client.Close(), d.inspector.Close())
}
