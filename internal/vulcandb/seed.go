package vulcandb

import (
	"context"
	"log/slog"

	"vulcanhr/internal/cloud"
	"vulcanhr/internal/domain/employee"
	"vulcanhr/internal/domain/user"
	"vulcanhr/internal/localstore"
)

// Authorized evaluator roster seeded on first start. Roles come from fixed
// name membership: approvers get gerente, the HR contact gets rrhh,
// everyone else evaluates as supervisor. Passwords start empty so the
// first login sets them.
var defaultEvaluators = []string{
	"Carlos Mendoza",
	"Ana Torres",
	"Jorge Ramirez",
	"Lucia Herrera",
	"Miguel Soto",
}

var approverNames = map[string]bool{
	"Carlos Mendoza": true,
}

const hrContactName = "Ana Torres"

func seedRoster() []user.User {
	roster := make([]user.User, 0, len(defaultEvaluators))
	for _, name := range defaultEvaluators {
		role := user.RoleSupervisor
		switch {
		case approverNames[name]:
			role = user.RoleGerente
		case name == hrContactName:
			role = user.RoleRRHH
		}
		roster = append(roster, user.User{Username: name, Role: role})
	}
	return roster
}

// Initialize hydrates the local store from the cloud under a bounded
// deadline and seeds defaults where nothing exists yet. Startup is
// offline-first: any cloud failure is logged and ignored, the app must
// become usable with zero connectivity.
func (d *DB) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mirror != nil {
		d.hydrateFromCloud(ctx)
	}

	if len(d.local.Users()) == 0 {
		roster := seedRoster()
		if err := d.local.SaveUsers(ctx, roster); err != nil {
			return err
		}
		d.push(ctx, localstore.CollectionUsers, roster)
		slog.Info("seeded default evaluator roster", "count", len(roster))
	}

	// An employees collection that was never written is different from one
	// intentionally cleared; only the former gets the default seed.
	if !d.local.HasCollection(localstore.CollectionEmployees) {
		seed := defaultEmployees()
		if err := d.local.SaveEmployees(ctx, seed); err != nil {
			return err
		}
		if len(seed) > 0 {
			d.push(ctx, localstore.CollectionEmployees, seed)
		}
	}
	return nil
}

func (d *DB) hydrateFromCloud(ctx context.Context) {
	type pullResult struct {
		snapshot cloud.Snapshot
		imported bool
	}

	opCtx, cancel := d.bound(ctx)
	defer cancel()
	done := make(chan pullResult, 1)
	go func() {
		snapshot, imported := d.mirror.Pull(opCtx)
		done <- pullResult{snapshot, imported}
	}()

	var result pullResult
	select {
	case result = <-done:
	case <-opCtx.Done():
		slog.Warn("cloud hydration timed out, starting from local data")
		return
	}
	if !result.imported {
		slog.Info("cloud returned no data, starting from local data")
		return
	}

	// Only collections with at least one cloud row overwrite local.
	if result.snapshot.Employees != nil {
		if err := d.local.SaveEmployees(ctx, result.snapshot.Employees); err != nil {
			slog.Warn("hydrating employees failed", "err", err)
		}
	}
	if result.snapshot.Evaluations != nil {
		if err := d.local.SaveEvaluations(ctx, result.snapshot.Evaluations); err != nil {
			slog.Warn("hydrating evaluations failed", "err", err)
		}
	}
	if result.snapshot.Users != nil {
		if err := d.local.SaveUsers(ctx, result.snapshot.Users); err != nil {
			slog.Warn("hydrating users failed", "err", err)
		}
	}
}

func defaultEmployees() []employee.Employee {
	return []employee.Employee{}
}
