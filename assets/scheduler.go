// Package assets acquires the visual material for a run: one generated
// image per script section, or one stock clip per section, fetched under
// a small dependency-aware task scheduler with separate concurrency
// limits for API calls and bulk downloads.
package assets

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ResourceType classifies what a task consumes while it runs.
type ResourceType string

const (
	ResourceAPI      ResourceType = "api"      // rate-limited remote calls (generate, search)
	ResourceDownload ResourceType = "download" // bulk file transfers
)

// TaskStatus represents the current state of a task.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskReady              // dependencies met, waiting for a resource slot
	TaskRunning
	TaskCompleted
	TaskFailed
)

// Task is a unit of acquisition work with dependencies and a resource
// requirement. Run receives the scheduler's context and must honor its
// cancellation.
type Task struct {
	ID           string
	Run          func(ctx context.Context) error
	Dependencies []string // IDs of tasks that must complete before this one
	Resource     ResourceType
	Status       TaskStatus
	Err          error
	StartTime    time.Time
	EndTime      time.Time
}

// ResourceConstraint caps concurrent tasks for one resource type.
type ResourceConstraint struct {
	Type     ResourceType
	MaxSlots int
}

const schedulerTick = 10 * time.Millisecond

// Scheduler executes tasks respecting dependency order, per-resource
// slot limits and context cancellation. A scheduler is single-use:
// add tasks, call Execute once, then inspect the task pointers.
type Scheduler struct {
	tasks       map[string]*Task
	constraints map[ResourceType]*ResourceConstraint

	// Resource tracking
	activeSlots map[ResourceType]int
	slotsMutex  sync.Mutex

	// Task state and completion tracking
	tasksMutex sync.RWMutex
	completeCh chan string

	// Progress tracking
	onProgress func(completed, total int, task *Task)
}

// NewScheduler creates a scheduler with the given resource constraints.
// Tasks whose resource has no constraint run without a slot limit.
func NewScheduler(constraints []ResourceConstraint) *Scheduler {
	constraintMap := make(map[ResourceType]*ResourceConstraint)
	for i := range constraints {
		constraintMap[constraints[i].Type] = &constraints[i]
	}

	return &Scheduler{
		tasks:       make(map[string]*Task),
		constraints: constraintMap,
		activeSlots: make(map[ResourceType]int),
		completeCh:  make(chan string, 128),
	}
}

// Add registers a task. IDs must be unique.
func (s *Scheduler) Add(task *Task) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if task.ID == "" {
		return fmt.Errorf("task id cannot be empty")
	}
	if task.Run == nil {
		return fmt.Errorf("task %s has no run function", task.ID)
	}
	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already exists", task.ID)
	}

	task.Status = TaskPending
	s.tasks[task.ID] = task
	return nil
}

// SetProgressCallback sets a callback invoked after each task settles.
func (s *Scheduler) SetProgressCallback(callback func(completed, total int, task *Task)) {
	s.onProgress = callback
}

// Execute runs all tasks and blocks until every one of them reaches a
// terminal state. Task failures are not an Execute error: they stay on
// the task (Status, Err) so callers can degrade per task. The returned
// error covers structural problems only (unknown dependency, cycle).
//
// Cancelling the context stops new tasks from being issued; tasks
// already running are left to observe the context themselves, and
// everything not yet started is marked failed.
func (s *Scheduler) Execute(ctx context.Context) error {
	if err := s.validate(); err != nil {
		return err
	}

	s.tasksMutex.RLock()
	total := len(s.tasks)
	s.tasksMutex.RUnlock()
	if total == 0 {
		return nil
	}

	completed := 0
	doneCh := make(chan bool)

	// Completion handler: counts settled tasks and reports progress.
	go func() {
		for taskID := range s.completeCh {
			completed++

			s.tasksMutex.RLock()
			task := s.tasks[taskID]
			s.tasksMutex.RUnlock()

			if s.onProgress != nil {
				s.onProgress(completed, total, task)
			}

			if completed == total {
				doneCh <- true
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.schedule(ctx)
	}()

	<-doneCh
	wg.Wait()

	return nil
}

// schedule is the issue loop: claim runnable tasks, launch them, sleep,
// repeat until everything settled.
func (s *Scheduler) schedule(ctx context.Context) {
	for {
		if s.settled(ctx) {
			return
		}

		if ctx.Err() == nil {
			for _, task := range s.claimReady() {
				go s.run(ctx, task)
			}
		}

		time.Sleep(schedulerTick)
	}
}

// claimReady atomically selects runnable tasks and reserves their
// resource slots. Marking a task Running inside the same critical
// section guarantees it can never be launched twice.
func (s *Scheduler) claimReady() []*Task {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	var claimed []*Task
	for _, task := range s.tasks {
		if task.Status == TaskPending && s.dependenciesMet(task) {
			task.Status = TaskReady
		}
		if task.Status != TaskReady {
			continue
		}
		if s.tryAcquire(task.Resource) {
			task.Status = TaskRunning
			task.StartTime = time.Now()
			claimed = append(claimed, task)
		}
	}
	return claimed
}

// dependenciesMet checks if all dependencies of a task are completed.
// Callers hold tasksMutex.
func (s *Scheduler) dependenciesMet(task *Task) bool {
	for _, depID := range task.Dependencies {
		depTask, exists := s.tasks[depID]
		if !exists {
			return false
		}
		if depTask.Status != TaskCompleted {
			return false
		}
	}
	return true
}

// tryAcquire attempts to reserve a resource slot.
func (s *Scheduler) tryAcquire(resourceType ResourceType) bool {
	s.slotsMutex.Lock()
	defer s.slotsMutex.Unlock()

	constraint, exists := s.constraints[resourceType]
	if !exists {
		// No constraint, allow execution
		return true
	}

	if s.activeSlots[resourceType] < constraint.MaxSlots {
		s.activeSlots[resourceType]++
		return true
	}

	return false
}

// release returns a resource slot.
func (s *Scheduler) release(resourceType ResourceType) {
	s.slotsMutex.Lock()
	defer s.slotsMutex.Unlock()

	if s.activeSlots[resourceType] > 0 {
		s.activeSlots[resourceType]--
	}
}

// run executes a single claimed task.
func (s *Scheduler) run(ctx context.Context, task *Task) {
	defer s.release(task.Resource)

	err := task.Run(ctx)

	s.tasksMutex.Lock()
	task.EndTime = time.Now()
	if err != nil {
		task.Status = TaskFailed
		task.Err = err
	} else {
		task.Status = TaskCompleted
	}
	s.tasksMutex.Unlock()

	s.completeCh <- task.ID
}

// settled reports whether every task reached a terminal state. It also
// fails tasks that can never run: those behind a failed dependency,
// and after cancellation everything not already running.
func (s *Scheduler) settled(ctx context.Context) bool {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	settled := true
	for _, task := range s.tasks {
		switch task.Status {
		case TaskCompleted, TaskFailed:
			continue

		case TaskRunning:
			settled = false

		case TaskPending, TaskReady:
			if ctx.Err() != nil {
				s.fail(task, fmt.Errorf("acquisition canceled: %w", ctx.Err()))
				continue
			}
			if s.hasFailedDependency(task) {
				s.fail(task, fmt.Errorf("dependency failed"))
				continue
			}
			settled = false
		}
	}
	return settled
}

// fail marks a task failed and notifies completion asynchronously so
// the channel send cannot block while tasksMutex is held. Callers hold
// tasksMutex; the status flip under the lock makes the notification
// fire at most once per task.
func (s *Scheduler) fail(task *Task, err error) {
	task.Status = TaskFailed
	task.Err = err
	task.EndTime = time.Now()
	go func(id string) { s.completeCh <- id }(task.ID)
}

// hasFailedDependency checks if any dependency, direct or transitive,
// has failed. Callers hold tasksMutex.
func (s *Scheduler) hasFailedDependency(task *Task) bool {
	for _, depID := range task.Dependencies {
		if depTask, exists := s.tasks[depID]; exists {
			if depTask.Status == TaskFailed {
				return true
			}
			if s.hasFailedDependency(depTask) {
				return true
			}
		}
	}
	return false
}

// validate checks the task graph before execution.
func (s *Scheduler) validate() error {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	// Check all dependencies exist
	for _, task := range s.tasks {
		for _, depID := range task.Dependencies {
			if _, exists := s.tasks[depID]; !exists {
				return fmt.Errorf("task %s depends on non-existent task %s", task.ID, depID)
			}
		}
	}

	// Check for cycles (DFS-based cycle detection)
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var hasCycle func(taskID string) bool
	hasCycle = func(taskID string) bool {
		visited[taskID] = true
		recStack[taskID] = true

		task := s.tasks[taskID]
		for _, depID := range task.Dependencies {
			if !visited[depID] {
				if hasCycle(depID) {
					return true
				}
			} else if recStack[depID] {
				return true
			}
		}

		recStack[taskID] = false
		return false
	}

	for taskID := range s.tasks {
		if !visited[taskID] {
			if hasCycle(taskID) {
				return fmt.Errorf("cycle detected in task dependencies")
			}
		}
	}

	return nil
}

// Failed returns the failed tasks sorted by ID, for error reporting.
func (s *Scheduler) Failed() []*Task {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	var failed []*Task
	for _, task := range s.tasks {
		if task.Status == TaskFailed {
			failed = append(failed, task)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].ID < failed[j].ID })
	return failed
}

// Stats returns counts of tasks per state.
func (s *Scheduler) Stats() map[string]int {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	stats := map[string]int{
		"total":     len(s.tasks),
		"pending":   0,
		"ready":     0,
		"running":   0,
		"completed": 0,
		"failed":    0,
	}

	for _, task := range s.tasks {
		switch task.Status {
		case TaskPending:
			stats["pending"]++
		case TaskReady:
			stats["ready"]++
		case TaskRunning:
			stats["running"]++
		case TaskCompleted:
			stats["completed"]++
		case TaskFailed:
			stats["failed"]++
		}
	}

	return stats
}
