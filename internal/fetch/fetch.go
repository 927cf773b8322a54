package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/revanced-builder/internal/httpclient"
)

// Resolver produces the concrete download URL for an artifact.
type Resolver func(ctx context.Context) (string, error)

// Task describes one artifact to download.
type Task struct {
	// Artifact names the download in completion reports and errors.
	Artifact string
	// FileName is the file inside the queue directory the body is written to.
	FileName string
	// Resolve returns the URL to download from.
	Resolve Resolver
}

// Result reports one finished download.
type Result struct {
	// Artifact is the name the task was submitted under.
	Artifact string
	// Elapsed is the transfer time.
	Elapsed time.Duration
}

// Error ties a download failure to the artifact it belongs to.
type Error struct {
	Artifact string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Artifact, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// resultsCapacity must hold every undrained completion so that finished
// downloads never block. A session stages four artifacts.
const resultsCapacity = 8

// Queue downloads artifacts concurrently into a single directory.
type Queue struct {
	client      *httpclient.Client
	dir         string
	group       *errgroup.Group
	ctx         context.Context
	results     chan Result
	outstanding atomic.Int64
}

// NewQueue returns a queue whose downloads are bound to ctx
// and written into dir.
func NewQueue(ctx context.Context, client *httpclient.Client, dir string) *Queue {
	group, groupCtx := errgroup.WithContext(ctx)

	return &Queue{
		client:  client,
		dir:     dir,
		group:   group,
		ctx:     groupCtx,
		results: make(chan Result, resultsCapacity),
	}
}

// Submit schedules the task and returns immediately.
func (q *Queue) Submit(task Task) {
	q.outstanding.Add(1)

	q.group.Go(func() error {
		elapsed, err := q.download(task)
		if err != nil {
			return &Error{Artifact: task.Artifact, Err: err}
		}

		select {
		case q.results <- Result{Artifact: task.Artifact, Elapsed: elapsed}:
			return nil
		case <-q.ctx.Done():
			return q.ctx.Err()
		}
	})
}

// Outstanding reports how many submitted tasks have not been drained yet.
func (q *Queue) Outstanding() int64 {
	return q.outstanding.Load()
}

// DrainAll blocks until every submitted task has completed and returns the
// reports ordered by transfer time, fastest first.
// The first failed download aborts the wait and is returned instead.
func (q *Queue) DrainAll() ([]Result, error) {
	results := make([]Result, 0, q.outstanding.Load())

	for q.outstanding.Load() > 0 {
		select {
		case result := <-q.results:
			q.outstanding.Add(-1)
			results = append(results, result)
		case <-q.ctx.Done():
			if err := q.group.Wait(); err != nil {
				return nil, err
			}

			return nil, q.ctx.Err()
		}
	}

	if err := q.group.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Elapsed < results[j].Elapsed
	})

	return results, nil
}

// Wait blocks until every submitted download goroutine has returned.
// It is meant for abandoning the queue after its context was canceled.
func (q *Queue) Wait() error {
	return q.group.Wait()
}

// download resolves the task's URL and streams the body into the task's
// file. The clock starts after resolution so reports reflect transfer time.
func (q *Queue) download(task Task) (time.Duration, error) {
	url, err := task.Resolve(q.ctx)
	if err != nil {
		return 0, err
	}

	start := time.Now()

	response, err := q.client.Get(q.ctx, url)
	if err != nil {
		return 0, err
	}

	file, err := os.Create(filepath.Join(q.dir, task.FileName))
	if err != nil {
		_ = response.Body.Close()

		return 0, err
	}

	_, err = io.Copy(file, response.Body)

	closeErr := errors.Join(response.Body.Close(), file.Close())
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", task.FileName, err)
	}

	if closeErr != nil {
		return 0, closeErr
	}

	return time.Since(start), nil
}
