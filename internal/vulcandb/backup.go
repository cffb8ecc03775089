package vulcandb

import (
	"context"
	"fmt"

	"vulcanhr/internal/backup"
)

// ExportBackup serializes the full snapshot of all three collections into
// one printable code for manual device-to-device transfer.
func (d *DB) ExportBackup() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return backup.Encode(backup.Snapshot{
		Employees:   d.local.Employees(),
		Evaluations: d.local.Evaluations(),
		Users:       d.local.Users(),
	})
}

// ImportBackup restores a snapshot produced by ExportBackup. The decode is
// all-or-nothing: a code that cannot be decoded writes nothing. Each
// collection present in the snapshot overwrites local storage, mirrors to
// the cloud and is broadcast.
func (d *DB) ImportBackup(ctx context.Context, code string) error {
	snapshot, err := backup.Decode(code)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadBackupCode, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if snapshot.Employees != nil {
		if err := d.saveEmployeesLocked(ctx, snapshot.Employees, true); err != nil {
			return err
		}
	}
	if snapshot.Evaluations != nil {
		if err := d.saveEvaluationsLocked(ctx, snapshot.Evaluations, true); err != nil {
			return err
		}
	}
	if snapshot.Users != nil {
		if err := d.saveUsersLocked(ctx, snapshot.Users, true); err != nil {
			return err
		}
	}
	return nil
}
