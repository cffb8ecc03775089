package cloud

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Report is the structured result of the diagnostic probe.
type Report struct {
	Connection     bool    `json:"connection"`
	EmployeesRead  bool    `json:"employeesRead"`
	EmployeesWrite bool    `json:"employeesWrite"`
	AuthValid      bool    `json:"authValid"`
	Latency        int64   `json:"latency"`
	Error          *string `json:"error"`
}

// Status probes the cloud mirror: one read from the employee table, then
// an upsert-and-delete of a throwaway diagnostic row. The probe is
// idempotent and leaves no residue whether or not it succeeds.
func (c *Client) Status(ctx context.Context) Report {
	start := time.Now()
	report := Report{AuthValid: true}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	var id string
	err := c.pool.QueryRow(ctx, "SELECT id FROM employees LIMIT 1").Scan(&id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		report.AuthValid = !isAuthError(err)
		report.Error = probeError("employees read", err)
		report.Latency = time.Since(start).Milliseconds()
		return report
	}
	report.Connection = true
	report.EmployeesRead = true

	probeID := "diagnostic-" + uuid.NewString()
	_, err = c.pool.Exec(ctx, `
    INSERT INTO employees (id, id_number, name, role, department)
    VALUES ($1, '', 'diagnostic probe', '', '')
    ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
  `, probeID)
	if err != nil {
		if isAuthError(err) {
			report.AuthValid = false
		}
		report.Error = probeError("employees write", err)
	} else {
		report.EmployeesWrite = true
	}

	// Cleanup runs even after a failed insert; a half-applied probe row
	// must never survive.
	_, _ = c.pool.Exec(ctx, "DELETE FROM employees WHERE id = $1", probeID)

	report.Latency = time.Since(start).Milliseconds()
	return report
}

func probeError(stage string, err error) *string {
	msg := stage + ": " + err.Error()
	return &msg
}

// isAuthError separates invalid-credential failures from generic
// unavailability. Permission-denied on a single table is a write-capability
// problem, not a credential one, and is reported through the write flag.
func isAuthError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "28000", "28P01": // invalid_authorization, invalid_password
		return true
	}
	return false
}
