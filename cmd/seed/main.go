// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev tenant (dev-tenant-001) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"workeye/backend/internal/config"
	"workeye/backend/internal/db"
	devicedomain "workeye/backend/internal/device/domain"
	devicerepo "workeye/backend/internal/device/repository"
	memberdomain "workeye/backend/internal/member/domain"
	memberrepo "workeye/backend/internal/member/repository"
	"workeye/backend/internal/presence"
	"workeye/backend/internal/security"
	tenantdomain "workeye/backend/internal/tenant/domain"
	tenantrepo "workeye/backend/internal/tenant/repository"
	configdomain "workeye/backend/internal/trackingconfig/domain"
	configrepo "workeye/backend/internal/trackingconfig/repository"
)

const (
	devTenantID      = "dev-tenant-001"
	devTenantName    = "Dev Workspace"
	devTrackerSecret = "dev-tracker-secret"
	devMemberID      = "dev-member-001"
	devMemberEmail   = "dev@example.com"
	devDeviceID      = "dev-device-001"
	devFingerprint   = "dev-fingerprint-001"
)

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
	tenants := tenantrepo.NewPostgresRepository(conn)

	existing, err := tenants.GetByID(ctx, devTenantID)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev-tenant-001 exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(0)
	tokenHash, err := hasher.Hash([]byte(devTrackerSecret))
	if err != nil {
		log.Fatalf("hash tracker token: %v", err)
	}

	now := time.Now().UTC()
	if err := tenants.Create(ctx, &tenantdomain.Tenant{
		ID:               devTenantID,
		Name:             devTenantName,
		TrackerTokenHash: tokenHash,
		CreatedAt:        now,
	}); err != nil {
		log.Fatalf("create tenant: %v", err)
	}

	members := memberrepo.NewPostgresRepository(conn)
	if err := members.Create(ctx, &memberdomain.Member{
		ID:        devMemberID,
		TenantID:  devTenantID,
		Email:     devMemberEmail,
		Name:      "Dev Member",
		Status:    presence.StatusOffline,
		CreatedAt: now,
	}); err != nil {
		log.Fatalf("create member: %v", err)
	}

	devices := devicerepo.NewPostgresRepository(conn)
	if err := devices.Create(ctx, &devicedomain.Device{
		ID:          devDeviceID,
		TenantID:    devTenantID,
		MemberID:    devMemberID,
		Fingerprint: devFingerprint,
		Status:      devicedomain.StatusOffline,
		CreatedAt:   now,
	}); err != nil {
		log.Fatalf("create device: %v", err)
	}

	configs := configrepo.NewPostgresRepository(conn)
	devConfig := configdomain.Default(devTenantID)
	devConfig.UpdatedAt = now
	if err := configs.Upsert(ctx, devConfig); err != nil {
		log.Fatalf("create tracking config: %v", err)
	}

	fmt.Println("Seed applied.")
	fmt.Printf("Tracker token:   %s.%s\n", devTenantID, devTrackerSecret)

	if cfg.JWTSecret != "" {
		token, err := security.IssueDashboardToken(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, devTenantID, devMemberEmail, 24*time.Hour)
		if err != nil {
			log.Fatalf("issue dashboard token: %v", err)
		}
		fmt.Printf("Dashboard token: %s\n", token)
	} else {
		fmt.Println("Dashboard token: set JWT_SECRET and re-run to get one")
	}
}
