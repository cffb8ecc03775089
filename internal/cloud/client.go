package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"

	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/evaluation"
	"vulcanhr/internal/domain/user"
)

// Database is the slice of pgxpool.Pool the client uses. Narrowed to an
// interface so the probe and push paths can be driven against a fake
// backend in tests.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const DefaultTimeout = 5 * time.Second

// keyColumns maps each mirrored collection to its natural unique column.
var keyColumns = map[string]string{
	"employees":   "id",
	"evaluations": "id",
	"users":       "username",
}

// Snapshot is the result of a pull. A nil slice means that collection had
// no rows in the cloud and must not overwrite the local copy.
type Snapshot struct {
	Employees   []employee.Employee
	Evaluations []evaluation.FullEvaluation
	Users       []user.User
}

// Client mirrors the three collections into Postgres tables. Every call is
// bounded by the configured timeout and never lets a cloud fault escape:
// failures collapse into a boolean plus a retrievable last-error string.
type Client struct {
	pool    Database
	timeout time.Duration

	mu      sync.Mutex
	lastErr string
}

func NewClient(pool Database, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{pool: pool, timeout: timeout}
}

// LastError returns the most recent human-readable cloud failure, or ""
// if no cloud call has failed yet.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) recordError(collection string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", c.timeout, err)
	}
	c.mu.Lock()
	c.lastErr = collection + ": " + err.Error()
	c.mu.Unlock()
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Push upserts the full collection payload keyed by its natural unique
// column; rows already in the cloud are overwritten on key match. Returns
// false on any failure, with the cause kept for LastError.
func (c *Client) Push(ctx context.Context, collection string, data any) bool {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	var err error
	switch payload := data.(type) {
	case []employee.Employee:
		err = c.pushEmployees(ctx, payload)
	case []evaluation.FullEvaluation:
		err = c.pushEvaluations(ctx, payload)
	case []user.User:
		err = c.pushUsers(ctx, payload)
	default:
		err = fmt.Errorf("unsupported payload type %T", data)
	}
	if err != nil {
		c.recordError(collection, err)
		slog.Warn("cloud push failed", "collection", collection, "err", err)
		return false
	}
	return true
}

func (c *Client) pushEmployees(ctx context.Context, list []employee.Employee) error {
	for _, e := range list {
		record, err := newEmployeeRecord(e)
		if err != nil {
			return err
		}
		_, err = c.pool.Exec(ctx, `
      INSERT INTO employees (id, id_number, name, role, department, manager_name, last_evaluation, kpis, notifications, updated_at)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
      ON CONFLICT (id) DO UPDATE SET
        id_number = EXCLUDED.id_number,
        name = EXCLUDED.name,
        role = EXCLUDED.role,
        department = EXCLUDED.department,
        manager_name = EXCLUDED.manager_name,
        last_evaluation = EXCLUDED.last_evaluation,
        kpis = EXCLUDED.kpis,
        notifications = EXCLUDED.notifications,
        updated_at = now()
    `, record.ID, record.IDNumber, record.Name, record.Role, record.Department,
			record.ManagerName, record.LastEvaluation, record.KPIs, record.Notifications)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) pushEvaluations(ctx context.Context, list []evaluation.FullEvaluation) error {
	for _, e := range list {
		record, err := newEvaluationRecord(e)
		if err != nil {
			return err
		}
		_, err = c.pool.Exec(ctx, `
      INSERT INTO evaluations (id, employee_id, month, year, criteria, observations, total_puntos, promedio_final, condicion_bono, authorized_by, incremento_salarial, updated_at)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
      ON CONFLICT (id) DO UPDATE SET
        employee_id = EXCLUDED.employee_id,
        month = EXCLUDED.month,
        year = EXCLUDED.year,
        criteria = EXCLUDED.criteria,
        observations = EXCLUDED.observations,
        total_puntos = EXCLUDED.total_puntos,
        promedio_final = EXCLUDED.promedio_final,
        condicion_bono = EXCLUDED.condicion_bono,
        authorized_by = EXCLUDED.authorized_by,
        incremento_salarial = EXCLUDED.incremento_salarial,
        updated_at = now()
    `, record.ID, record.EmployeeID, record.Month, record.Year, record.Criteria,
			record.Observations, record.TotalPoints, record.FinalAverage,
			record.BonusCondition, record.AuthorizedBy, record.SalaryIncrease)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) pushUsers(ctx context.Context, list []user.User) error {
	for _, u := range list {
		record := newUserRecord(u)
		_, err := c.pool.Exec(ctx, `
      INSERT INTO users (username, role, password, updated_at)
      VALUES ($1,$2,$3,now())
      ON CONFLICT (username) DO UPDATE SET
        role = EXCLUDED.role,
        password = EXCLUDED.password,
        updated_at = now()
    `, record.Username, record.Role, record.Password)
		if err != nil {
			return err
		}
	}
	return nil
}

// Pull reads all three collections in parallel. Any failure swallows the
// whole pull and reports nothing imported; the caller keeps whatever is
// already local.
func (c *Client) Pull(ctx context.Context) (Snapshot, bool) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	var snapshot Snapshot
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		list, err := c.pullEmployees(ctx)
		snapshot.Employees = list
		return err
	})
	group.Go(func() error {
		list, err := c.pullEvaluations(ctx)
		snapshot.Evaluations = list
		return err
	})
	group.Go(func() error {
		list, err := c.pullUsers(ctx)
		snapshot.Users = list
		return err
	})
	if err := group.Wait(); err != nil {
		c.recordError("pull", err)
		slog.Warn("cloud pull failed", "err", err)
		return Snapshot{}, false
	}

	imported := snapshot.Employees != nil || snapshot.Evaluations != nil || snapshot.Users != nil
	return snapshot, imported
}

func (c *Client) pullEmployees(ctx context.Context) ([]employee.Employee, error) {
	rows, err := c.pool.Query(ctx, `
    SELECT id, id_number, name, role, department, manager_name, last_evaluation, kpis, notifications
    FROM employees
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		var record employeeRecord
		if err := rows.Scan(&record.ID, &record.IDNumber, &record.Name, &record.Role, &record.Department,
			&record.ManagerName, &record.LastEvaluation, &record.KPIs, &record.Notifications); err != nil {
			return nil, err
		}
		model, err := record.model()
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	return out, rows.Err()
}

func (c *Client) pullEvaluations(ctx context.Context) ([]evaluation.FullEvaluation, error) {
	rows, err := c.pool.Query(ctx, `
    SELECT id, employee_id, month, year, criteria, observations, total_puntos, promedio_final, condicion_bono, authorized_by, incremento_salarial
    FROM evaluations
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []evaluation.FullEvaluation
	for rows.Next() {
		var record evaluationRecord
		if err := rows.Scan(&record.ID, &record.EmployeeID, &record.Month, &record.Year, &record.Criteria,
			&record.Observations, &record.TotalPoints, &record.FinalAverage, &record.BonusCondition,
			&record.AuthorizedBy, &record.SalaryIncrease); err != nil {
			return nil, err
		}
		model, err := record.model()
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	return out, rows.Err()
}

func (c *Client) pullUsers(ctx context.Context) ([]user.User, error) {
	rows, err := c.pool.Query(ctx, "SELECT username, role, password FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var record userRecord
		if err := rows.Scan(&record.Username, &record.Role, &record.Password); err != nil {
			return nil, err
		}
		out = append(out, record.model())
	}
	return out, rows.Err()
}

// Delete removes mirrored rows by natural key. Best-effort: failure is
// recorded and reported through the boolean, never raised.
func (c *Client) Delete(ctx context.Context, collection string, keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	column, ok := keyColumns[collection]
	if !ok {
		c.recordError(collection, errors.New("unknown collection"))
		return false
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	_, err := c.pool.Exec(ctx, "DELETE FROM "+collection+" WHERE "+column+" = ANY($1)", keys)
	if err != nil {
		c.recordError(collection, err)
		slog.Warn("cloud delete failed", "collection", collection, "err", err)
		return false
	}
	return true
}
