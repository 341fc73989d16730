package sched

import "github.com/pkg/errors"

// Registry is the fixed-capacity task table.
type Registry struct {
	tasks    []*Task
	capacity int
}

// NewRegistry creates a table holding at most capacity tasks.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultMaxTasks
	}
	return &Registry{
		tasks:    make([]*Task, 0, capacity),
		capacity: capacity,
	}
}

// Add stores t and assigns its ID.
func (r *Registry) Add(t *Task) (TaskID, error) {
	if t.Period == 0 {
		return IdleID, errors.Wrapf(ErrBadPeriod, "task %q", t.Name)
	}
	if len(r.tasks) >= r.capacity {
		return IdleID, errors.Wrapf(ErrRegistryFull, "registering %q (capacity %d)", t.Name, r.capacity)
	}
	if _, ok := r.Lookup(t.Name); ok {
		return IdleID, errors.Wrapf(ErrDuplicateName, "%q", t.Name)
	}

	t.ID = TaskID(len(r.tasks))
	r.tasks = append(r.tasks, t)
	return t.ID, nil
}

// Get returns the task with the given ID, or nil.
func (r *Registry) Get(id TaskID) *Task {
	if id < 0 || int(id) >= len(r.tasks) {
		return nil
	}
	return r.tasks[id]
}

// Lookup finds a task by name.
func (r *Registry) Lookup(name string) (*Task, bool) {
	for _, t := range r.tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int { return len(r.tasks) }

func (r *Registry) Cap() int { return r.capacity }

// All returns the tasks in registration order. The slice must not be modified.
func (r *Registry) All() []*Task { return r.tasks }
