// Command seed provisions the first admin, a sample employee and customer and
// a welcome promotion. Existing accounts are left untouched.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/stayandpark/service-frontdesk/internal/adapter"
	"github.com/stayandpark/service-frontdesk/internal/application"
	"github.com/stayandpark/service-frontdesk/internal/config"
	"github.com/stayandpark/service-frontdesk/internal/domain"
	"github.com/stayandpark/service-frontdesk/internal/domain/identity"
	"github.com/stayandpark/service-frontdesk/internal/platform/auth"
	"github.com/stayandpark/service-frontdesk/internal/platform/database"
	"github.com/stayandpark/service-frontdesk/internal/platform/logger"
	"github.com/stayandpark/service-frontdesk/internal/repository"
)

type account struct {
	req  application.RegisterRequest
	role identity.Role
}

func main() {
	adminPassword := flag.String("admin-password", "admin123", "password of the seeded admin")
	samples := flag.Bool("samples", true, "also seed a sample employee, customer and promotion")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "frontdesk-seed")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), cfg.MigrationsDir, zapLogger); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	hasher, err := adapter.NewPasswordHasher(cfg.PasswordHasher, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize password hasher", zap.Error(err))
	}

	clock := domain.SystemClock{}
	persons := repository.NewPersonRepository(db)
	identityService := application.NewIdentityService(
		persons,
		hasher,
		auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL),
		repository.NewTxManager(db),
		clock,
		application.NoopPublisher{},
		nil,
		zapLogger,
	)
	promotionService := application.NewPromotionService(repository.NewGormPromotionRepository(db), persons, clock, zapLogger)

	ctx := context.Background()
	accounts := []account{{
		req: application.RegisterRequest{
			Name: "Administrator", Email: "admin@frontdesk.local", NationalID: "000.000.000-01",
			Password: *adminPassword,
		},
		role: identity.RoleAdmin,
	}}
	if *samples {
		accounts = append(accounts,
			account{
				req: application.RegisterRequest{
					Name: "João Silva", Email: "joao@frontdesk.local", NationalID: "111.111.111-11",
					Phone: "(11) 1111-1111", Password: "func123",
				},
				role: identity.RoleEmployee,
			},
			account{
				req: application.RegisterRequest{
					Name: "Maria Santos", Email: "maria@email.com", NationalID: "222.222.222-22",
					Phone: "(22) 2222-2222", Password: "cliente123",
				},
				role: identity.RoleCustomer,
			},
		)
	}

	for _, a := range accounts {
		p, err := identityService.Provision(ctx, a.req, a.role)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			zapLogger.Info("account already exists, skipping", zap.String("email", a.req.Email))
		case err != nil:
			zapLogger.Fatal("failed to seed account", zap.String("email", a.req.Email), zap.Error(err))
		default:
			zapLogger.Info("account seeded", zap.String("email", p.Email), zap.String("role", p.Role))
		}
	}

	if !*samples {
		return
	}
	admin, err := persons.FindByEmail(ctx, "admin@frontdesk.local")
	if err != nil {
		zapLogger.Fatal("failed to load seeded admin", zap.Error(err))
	}
	now := clock.Now()
	promo, err := promotionService.CreatePromotion(ctx, admin.ID(), application.CreatePromotionRequest{
		Name:            "Welcome",
		Description:     "10% off for returning guests",
		DiscountPercent: "10",
		AppliesTo:       "BOTH",
		StartsAt:        now,
		EndsAt:          now.Add(90 * 24 * time.Hour),
		MinimumVisits:   2,
	})
	if err != nil {
		zapLogger.Fatal("failed to seed promotion", zap.Error(err))
	}
	zapLogger.Info("promotion seeded", zap.String("promotion_id", promo.ID.String()))
}
