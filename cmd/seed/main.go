// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"taskwell/internal/core/id"
	"taskwell/internal/storage/postgres"
	"taskwell/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedRolesAndPermissions(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed roles", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoTenant(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo tenant", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// rolePermissions maps seeded roles to their permission codes.
var rolePermissions = map[string][]string{
	"USER": {
		"TASK_READ", "TASK_CREATE", "TASK_UPDATE",
		"PROJECT_READ", "FILE_UPLOAD",
	},
	"ADMIN": {
		"TASK_READ", "TASK_CREATE", "TASK_UPDATE", "TASK_DELETE",
		"PROJECT_READ", "PROJECT_MANAGE",
		"EMPLOYEE_MANAGE", "TENANT_MANAGE", "FILE_UPLOAD",
	},
}

var permissionNames = map[string]string{
	"TASK_READ":       "Read tasks",
	"TASK_CREATE":     "Create tasks",
	"TASK_UPDATE":     "Update tasks",
	"TASK_DELETE":     "Delete tasks",
	"PROJECT_READ":    "Read projects and boards",
	"PROJECT_MANAGE":  "Manage projects and boards",
	"EMPLOYEE_MANAGE": "Manage employees",
	"TENANT_MANAGE":   "Manage tenant settings",
	"FILE_UPLOAD":     "Upload files",
}

var roleNames = map[string]string{
	"USER":  "Registered user",
	"ADMIN": "Administrator",
}

func seedRolesAndPermissions(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	permIDs := make(map[string]id.ID)
	for code, name := range permissionNames {
		permID := id.New()
		err := pool.QueryRow(ctx, `
			INSERT INTO permissions (id, code, name, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, permID, code, name, time.Now().UTC()).Scan(&permID)
		if err != nil {
			return fmt.Errorf("seed permission %s: %w", code, err)
		}
		permIDs[code] = permID
	}

	for code, name := range roleNames {
		roleID := id.New()
		err := pool.QueryRow(ctx, `
			INSERT INTO roles (id, code, name, is_system, created_at)
			VALUES ($1, $2, $3, true, $4)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, roleID, code, name, time.Now().UTC()).Scan(&roleID)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", code, err)
		}

		for _, permCode := range rolePermissions[code] {
			_, err := pool.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				VALUES ($1, $2)
				ON CONFLICT (role_id, permission_id) DO NOTHING
			`, roleID, permIDs[permCode])
			if err != nil {
				return fmt.Errorf("bind %s to %s: %w", permCode, code, err)
			}
		}
		log.Infow("role seeded", "code", code, "permissions", len(rolePermissions[code]))
	}
	return nil
}

// seedDemoTenant creates a demo tenant with an owner account so a fresh
// environment is usable right after seeding.
func seedDemoTenant(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	phone := os.Getenv("DEMO_OWNER_PHONE")
	if phone == "" {
		phone = "+10000000001"
	}
	password := os.Getenv("DEMO_OWNER_PASSWORD")
	if password == "" {
		password = "Owner123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM accounts WHERE phone = $1 AND NOT deletion_mark`,
		phone,
	).Scan(&existingID)
	if err == nil {
		log.Infow("demo owner already exists", "phone", phone, "account_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check demo owner: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	accountID := id.New()
	tenantID := id.New()
	employeeID := id.New()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (
			id, phone, password_hash, first_name, last_name,
			is_active, created_at, updated_at, deletion_mark, version
		) VALUES ($1, $2, $3, 'Demo', 'Owner', true, $4, $4, false, 1)
	`, accountID, phone, string(passwordHash), now)
	if err != nil {
		return fmt.Errorf("insert demo owner: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO account_roles (account_id, role_id)
		SELECT $1, id FROM roles WHERE code IN ('USER', 'ADMIN')
	`, accountID)
	if err != nil {
		return fmt.Errorf("assign roles: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO tenants (
			id, name, plan, max_users, is_active,
			created_at, updated_at, deletion_mark, version
		) VALUES ($1, 'Demo Workspace', 'FREE', 3, true, $2, $2, false, 1)
	`, tenantID, now)
	if err != nil {
		return fmt.Errorf("insert demo tenant: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO employees (
			id, code, account_id, position, is_active,
			created_at, updated_at, deletion_mark, version
		) VALUES ($1, 'EMP-000001', $2, 'OWNER', true, $3, $3, false, 1)
	`, employeeID, accountID, now)
	if err != nil {
		return fmt.Errorf("insert demo employee: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO employee_tenants (employee_id, tenant_id) VALUES ($1, $2)
	`, employeeID, tenantID)
	if err != nil {
		return fmt.Errorf("bind demo employee: %w", err)
	}

	// Keep the numerator ahead of the hand-inserted employee code.
	_, err = tx.Exec(ctx, `
		INSERT INTO sys_sequences (key, current_val) VALUES ('EMP', 1)
		ON CONFLICT (key) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Infow("demo tenant seeded",
		"tenant_id", tenantID, "account_id", accountID, "phone", phone)
	return nil
}
