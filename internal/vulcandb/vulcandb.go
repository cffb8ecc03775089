package vulcandb

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"vulcanhr/internal/broadcast"
	"vulcanhr/internal/cloud"
	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/evaluation"
	"vulcanhr/internal/domain/user"
	"vulcanhr/internal/localstore"
)

var (
	ErrInvalidPayload = errors.New("payload must be a list")
	ErrInvalidUser    = errors.New("user requires a username and a known role")
	ErrBadBackupCode  = errors.New("backup code is not valid")
)

// Mirror is the best-effort cloud side of the store. A nil Mirror means
// the deployment runs local-only.
type Mirror interface {
	Push(ctx context.Context, collection string, data any) bool
	Pull(ctx context.Context) (cloud.Snapshot, bool)
	Delete(ctx context.Context, collection string, keys []string) bool
	LastError() string
	Status(ctx context.Context) cloud.Report
}

// DB composes the local durable store, the cloud mirror and the sync
// broadcaster. Every mutation is local-first: the local write completes
// before the call returns and its outcome alone decides success. The cloud
// push runs under a bounded deadline and reports failures only through
// LastCloudError. Conflict policy on both sides is last write wins, keyed
// by the collection's natural unique column; there are no version tokens.
type DB struct {
	local   *localstore.Store
	mirror  Mirror
	hub     *broadcast.Hub
	timeout time.Duration

	// One logical writer: mutations within the process are serialized,
	// matching the single-writer model of the collections.
	mu sync.Mutex
}

func New(local *localstore.Store, mirror Mirror, hub *broadcast.Hub, timeout time.Duration) *DB {
	if timeout <= 0 {
		timeout = cloud.DefaultTimeout
	}
	return &DB{local: local, mirror: mirror, hub: hub, timeout: timeout}
}

func (d *DB) Employees() []employee.Employee {
	return d.local.Employees()
}

func (d *DB) Evaluations() []evaluation.FullEvaluation {
	return d.local.Evaluations()
}

func (d *DB) Users() []user.User {
	return d.local.Users()
}

// Ready reports whether the local store is reachable. The cloud mirror
// is deliberately excluded; the app serves without it.
func (d *DB) Ready(ctx context.Context) bool {
	return d.local.Ping(ctx) == nil
}

// LastCloudError returns the advisory last cloud failure, "" when the
// mirror is healthy or not configured.
func (d *DB) LastCloudError() string {
	if d.mirror == nil {
		return ""
	}
	return d.mirror.LastError()
}

func (d *DB) SaveEmployees(ctx context.Context, list []employee.Employee) error {
	if list == nil {
		return ErrInvalidPayload
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveEmployeesLocked(ctx, list, true)
}

func (d *DB) SaveEvaluations(ctx context.Context, list []evaluation.FullEvaluation) error {
	if list == nil {
		return ErrInvalidPayload
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveEvaluationsLocked(ctx, list, true)
}

func (d *DB) SaveUsers(ctx context.Context, list []user.User) error {
	if list == nil {
		return ErrInvalidPayload
	}
	for _, u := range list {
		if u.Username == "" || !user.ValidRole(u.Role) {
			return ErrInvalidUser
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveUsersLocked(ctx, list, true)
}

// UpdateUser replaces the record matching the username, or appends a new
// one, and persists the whole collection.
func (d *DB) UpdateUser(ctx context.Context, u user.User) error {
	if u.Username == "" || !user.ValidRole(u.Role) {
		return ErrInvalidUser
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	users := d.local.Users()
	replaced := false
	for i := range users {
		if users[i].Username == u.Username {
			users[i] = u
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, u)
	}
	return d.saveUsersLocked(ctx, users, true)
}

// DeleteEmployee removes the employee and cascades to every evaluation
// referencing it, locally first and best-effort in the cloud. A cloud
// failure never rolls the local delete back; the next successful push
// reconciles. The operation is idempotent for unknown ids.
func (d *DB) DeleteEmployee(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	employees := d.local.Employees()
	kept := make([]employee.Employee, 0, len(employees))
	for _, e := range employees {
		if e.ID != id {
			kept = append(kept, e)
		}
	}

	evaluations := d.local.Evaluations()
	keptEvals := make([]evaluation.FullEvaluation, 0, len(evaluations))
	var removedEvalIDs []string
	for _, e := range evaluations {
		if e.EmployeeID == id {
			removedEvalIDs = append(removedEvalIDs, e.ID)
			continue
		}
		keptEvals = append(keptEvals, e)
	}

	if err := d.local.SaveEmployees(ctx, kept); err != nil {
		return err
	}
	if err := d.local.SaveEvaluations(ctx, keptEvals); err != nil {
		return err
	}

	if d.mirror != nil {
		d.withDeadline(ctx, func(opCtx context.Context) bool {
			ok := d.mirror.Delete(opCtx, localstore.CollectionEmployees, []string{id})
			return d.mirror.Delete(opCtx, localstore.CollectionEvaluations, removedEvalIDs) && ok
		})
	}

	d.announce(broadcast.EventEmployees, kept)
	d.announce(broadcast.EventEvaluations, keptEvals)
	return nil
}

// ForceCloudSync pushes all three collections and reports whether every
// push succeeded. Unlike ordinary mutations this is a user-initiated sync,
// so the outcome is surfaced directly.
func (d *DB) ForceCloudSync(ctx context.Context) bool {
	if d.mirror == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.withDeadline(ctx, func(opCtx context.Context) bool {
		ok := d.mirror.Push(opCtx, localstore.CollectionEmployees, d.local.Employees())
		ok = d.mirror.Push(opCtx, localstore.CollectionEvaluations, d.local.Evaluations()) && ok
		return d.mirror.Push(opCtx, localstore.CollectionUsers, d.local.Users()) && ok
	})
}

// CloudStatus runs the diagnostic probe against the mirror.
func (d *DB) CloudStatus(ctx context.Context) cloud.Report {
	if d.mirror == nil {
		msg := "cloud mirror not configured"
		return cloud.Report{Error: &msg}
	}
	return d.mirror.Status(ctx)
}

func (d *DB) saveEmployeesLocked(ctx context.Context, list []employee.Employee, notify bool) error {
	if err := d.local.SaveEmployees(ctx, list); err != nil {
		return err
	}
	d.push(ctx, localstore.CollectionEmployees, list)
	if notify {
		d.announce(broadcast.EventEmployees, list)
	}
	return nil
}

func (d *DB) saveEvaluationsLocked(ctx context.Context, list []evaluation.FullEvaluation, notify bool) error {
	if err := d.local.SaveEvaluations(ctx, list); err != nil {
		return err
	}
	d.push(ctx, localstore.CollectionEvaluations, list)
	if notify {
		d.announce(broadcast.EventEvaluations, list)
	}
	return nil
}

func (d *DB) saveUsersLocked(ctx context.Context, list []user.User, notify bool) error {
	if err := d.local.SaveUsers(ctx, list); err != nil {
		return err
	}
	d.push(ctx, localstore.CollectionUsers, list)
	if notify {
		d.announce(broadcast.EventUsers, list)
	}
	return nil
}

// push mirrors to the cloud under the configured deadline. The outcome
// never affects the caller's success: a failure lands in LastCloudError.
func (d *DB) push(ctx context.Context, collection string, data any) {
	if d.mirror == nil {
		return
	}
	if !d.withDeadline(ctx, func(opCtx context.Context) bool {
		return d.mirror.Push(opCtx, collection, data)
	}) {
		slog.Debug("cloud mirror lagging", "collection", collection, "err", d.mirror.LastError())
	}
}

// withDeadline races a mirror operation against the configured timeout so
// that even a mirror that ignores its context cannot stall a mutation.
func (d *DB) withDeadline(ctx context.Context, op func(context.Context) bool) bool {
	opCtx, cancel := d.bound(ctx)
	defer cancel()

	done := make(chan bool, 1)
	go func() { done <- op(opCtx) }()
	select {
	case ok := <-done:
		return ok
	case <-opCtx.Done():
		return false
	}
}

func (d *DB) announce(eventType string, payload any) {
	if d.hub == nil {
		return
	}
	d.hub.Publish(broadcast.Event{Type: eventType, Data: payload}, nil)
}

func (d *DB) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}
