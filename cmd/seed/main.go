// Package main seeds the careers database with reference data, a starter
// role catalog and demo accounts.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/talenthub/careers-api/internal/app/domain/jobrole"
	"github.com/talenthub/careers-api/internal/app/domain/user"
	"github.com/talenthub/careers-api/internal/app/services/auth"
	"github.com/talenthub/careers-api/internal/app/storage"
	"github.com/talenthub/careers-api/internal/app/storage/postgres"
	"github.com/talenthub/careers-api/internal/platform/migrations"
	"github.com/talenthub/careers-api/pkg/logger"
)

func main() {
	var (
		adminEmail        = flag.String("admin-email", "admin@talenthub.local", "Demo admin account email")
		adminPassword     = flag.String("admin-password", "AdminPass1!", "Demo admin account password")
		applicantEmail    = flag.String("applicant-email", "applicant@talenthub.local", "Demo applicant account email")
		applicantPassword = flag.String("applicant-password", "ApplicantPass1!", "Demo applicant account password")
	)
	flag.Parse()

	log := logger.NewDefault("seed")
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.WithError(err).Error("open database")
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Error("ping database")
		os.Exit(1)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		log.WithError(err).Error("apply migrations")
		os.Exit(1)
	}

	store := postgres.New(db)

	if err := seedCatalog(ctx, store); err != nil {
		log.WithError(err).Error("seed catalog")
		os.Exit(1)
	}

	if err := seedUser(ctx, store, *adminEmail, *adminPassword, user.RoleAdmin); err != nil {
		log.WithError(err).Error("seed admin user")
		os.Exit(1)
	}
	if err := seedUser(ctx, store, *applicantEmail, *applicantPassword, user.RoleApplicant); err != nil {
		log.WithError(err).Error("seed applicant user")
		os.Exit(1)
	}

	log.Info("seed complete")
}

func seedCatalog(ctx context.Context, store *postgres.Store) error {
	capabilities := make(map[string]int64)
	for _, name := range []string{"Engineering", "Data", "Product", "Design"} {
		id, err := store.UpsertCapability(ctx, name)
		if err != nil {
			return err
		}
		capabilities[name] = id
	}

	bands := make(map[string]int64)
	for _, name := range []string{"Apprentice", "Associate", "Senior Associate", "Consultant", "Manager", "Lead"} {
		id, err := store.UpsertBand(ctx, name)
		if err != nil {
			return err
		}
		bands[name] = id
	}

	statuses := make(map[string]int64)
	for _, name := range []string{"Open", "Closed"} {
		id, err := store.UpsertStatus(ctx, name)
		if err != nil {
			return err
		}
		statuses[name] = id
	}

	closing := time.Now().UTC().AddDate(0, 2, 0)
	roles := []jobrole.Role{
		{
			Name:             "Software Engineer",
			Location:         "Belfast",
			ClosingDate:      closing,
			Description:      "Build and run customer-facing services across the full stack.",
			Responsibilities: "Design, develop, test and support production software.",
			InfoURL:          "https://careers.talenthub.local/roles/software-engineer",
			OpenPositions:    3,
			CapabilityID:     capabilities["Engineering"],
			BandID:           bands["Associate"],
			StatusID:         statuses["Open"],
		},
		{
			Name:             "Senior Data Engineer",
			Location:         "London",
			ClosingDate:      closing,
			Description:      "Own data pipelines and the analytics platform.",
			Responsibilities: "Design data models, build ingestion pipelines, mentor engineers.",
			InfoURL:          "https://careers.talenthub.local/roles/senior-data-engineer",
			OpenPositions:    1,
			CapabilityID:     capabilities["Data"],
			BandID:           bands["Senior Associate"],
			StatusID:         statuses["Open"],
		},
		{
			Name:             "Product Manager",
			Location:         "Manchester",
			ClosingDate:      closing,
			Description:      "Shape the roadmap for the hiring platform.",
			Responsibilities: "Gather requirements, prioritise delivery, work with stakeholders.",
			InfoURL:          "https://careers.talenthub.local/roles/product-manager",
			OpenPositions:    1,
			CapabilityID:     capabilities["Product"],
			BandID:           bands["Manager"],
			StatusID:         statuses["Open"],
		},
		{
			Name:             "UX Designer",
			Location:         "Belfast",
			ClosingDate:      closing.AddDate(0, -3, 0),
			Description:      "Design the applicant experience end to end.",
			Responsibilities: "Run research, produce prototypes, validate designs with users.",
			InfoURL:          "https://careers.talenthub.local/roles/ux-designer",
			OpenPositions:    0,
			CapabilityID:     capabilities["Design"],
			BandID:           bands["Consultant"],
			StatusID:         statuses["Closed"],
		},
	}

	for _, role := range roles {
		if _, err := store.UpsertJobRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

func seedUser(ctx context.Context, store *postgres.Store, email, password string, role user.Role) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = store.CreateUser(ctx, user.User{
		Email:        auth.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return nil
	}
	return err
}
