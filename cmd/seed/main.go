// seed inserts the permission catalog, the admin role, and a dev admin user
// for local testing. Run via ./scripts/seed.sh. Idempotent: existing rows are
// left alone.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"user-management-backend/internal/config"
	"user-management-backend/internal/db"
	roledomain "user-management-backend/internal/role/domain"
	rolerepo "user-management-backend/internal/role/repository"
	"user-management-backend/internal/security"
	userdomain "user-management-backend/internal/user/domain"
	userrepo "user-management-backend/internal/user/repository"
)

const (
	adminRoleName = "admin"
	devAdminEmail = "admin@example.com"
	devPassword   = "Admin123!"
)

var permissionCatalog = []struct {
	name        string
	description string
}{
	{"manage_users", "Create, update, and delete any user"},
	{"manage_roles", "Create, update, delete, and assign roles"},
	{"view_users", "List and read any user"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	roles := rolerepo.NewPostgresRepository(conn)
	users := userrepo.NewPostgresRepository(conn)
	now := time.Now().UTC()

	existing, err := roles.ListPermissions(ctx)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	have := make(map[string]string, len(existing))
	for _, p := range existing {
		have[p.Name] = p.ID
	}

	permIDs := make([]string, 0, len(permissionCatalog))
	for _, pc := range permissionCatalog {
		if id, ok := have[pc.name]; ok {
			permIDs = append(permIDs, id)
			continue
		}
		p := &roledomain.Permission{
			ID:          uuid.New().String(),
			Name:        pc.name,
			Description: pc.description,
		}
		if err := roles.CreatePermission(ctx, p); err != nil {
			log.Fatalf("create permission %s: %v", pc.name, err)
		}
		permIDs = append(permIDs, p.ID)
	}

	adminRole, err := roles.GetByName(ctx, adminRoleName)
	if err != nil {
		log.Fatalf("get admin role: %v", err)
	}
	if adminRole == nil {
		adminRole = &roledomain.Role{
			ID:          uuid.New().String(),
			Name:        adminRoleName,
			Description: "Full administrative access",
			CreatedAt:   now,
		}
		if err := roles.Create(ctx, adminRole); err != nil {
			log.Fatalf("create admin role: %v", err)
		}
		if err := roles.SetPermissions(ctx, adminRole.ID, permIDs); err != nil {
			log.Fatalf("set admin permissions: %v", err)
		}
	}

	admin, err := users.GetByEmail(ctx, devAdminEmail)
	if err != nil {
		log.Fatalf("get admin user: %v", err)
	}
	if admin != nil {
		log.Println("Seed already applied (admin@example.com exists). Skipping.")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin = &userdomain.User{
		ID:           uuid.New().String(),
		Email:        devAdminEmail,
		PasswordHash: passwordHash,
		Name:         "Admin",
		Lastname:     "User",
		RoleID:       &adminRole.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("create admin user: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", devAdminEmail, devPassword)
}
