package app

import (
	"context"
	"errors"
	"time"

	"hr-portal/internal/config"
	"hr-portal/internal/domain"
	"hr-portal/internal/events"
	"hr-portal/internal/messaging/kafka"
	"hr-portal/internal/reimbursement"
	"hr-portal/internal/roster"
	"hr-portal/internal/shared/connection"
	"hr-portal/internal/shared/dbtx"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	name       string
	email      string
	role       domain.Role
	department string
	manager    string
}

var demoRoster = []seedUser{
	{"System Admin", "admin@hrportal.local", domain.RoleAdmin, "Management", ""},
	{"Rina Engineering", "eng.manager@hrportal.local", domain.RoleManager, "Engineering", ""},
	{"Budi HR", "hr.manager@hrportal.local", domain.RoleManager, "HR", ""},
	{"Alice", "alice@hrportal.local", domain.RoleEmployee, "Engineering", "eng.manager@hrportal.local"},
	{"Bob", "bob@hrportal.local", domain.RoleEmployee, "Engineering", "eng.manager@hrportal.local"},
	{"Citra", "citra@hrportal.local", domain.RoleEmployee, "HR", "hr.manager@hrportal.local"},
}

type seedCategory struct {
	name            string
	maxLimit        string
	requiresReceipt bool
}

var defaultCategories = []seedCategory{
	{"Travel", "5000", true},
	{"Food", "1000", true},
	{"Medical", "10000", true},
	{"Internet", "1500", false},
	{"Other", "", true},
}

// RunSeed inserts the demo roster and default categories in one transaction.
// Existing emails and category names are left alone.
func RunSeed(cfg *config.Config, password string) error {
	logger := zap.L().Named("app.seed")
	if len(password) < 8 {
		return errors.New("seed password must be at least 8 characters")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	users, err := seedUsers(ctx, dbtx.Bind(gormDB, tx), kafka.NewOutboxRepository(sqlDB).WithTx(tx), string(hash), logger)
	if err != nil {
		return err
	}
	categories, err := seedCategories(ctx, reimbursement.NewCategoryRepository(gormDB).WithTx(tx), logger)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Info("seed completed", zap.Int("users", users), zap.Int("categories", categories))
	return nil
}

func seedUsers(ctx context.Context, db *gorm.DB, outbox kafka.OutboxRepository, passwordHash string, logger *zap.Logger) (int, error) {
	repo := roster.NewRepository(db)
	ids := map[string]uuid.UUID{}
	created := 0

	for _, su := range demoRoster {
		var existing roster.User
		err := db.WithContext(ctx).Where("email = ?", su.email).Take(&existing).Error
		if err == nil {
			ids[su.email] = existing.ID
			logger.Debug("seed user exists", zap.String("email", su.email))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		u := roster.User{
			ID:            uuid.New(),
			Name:          su.name,
			Email:         su.email,
			PasswordHash:  passwordHash,
			Role:          string(su.role),
			Department:    su.department,
			SalaryBalance: decimal.Zero,
		}
		if mgr, ok := ids[su.manager]; ok {
			u.ManagerID = &mgr
		}
		if err := repo.Create(ctx, &u); err != nil {
			return created, err
		}
		ids[su.email] = u.ID

		ev, err := kafka.NewPendingEvent(ctx, "employee", u.ID.String(), events.EmployeeCreatedType, events.EmployeeLifecycleTopic,
			events.EmployeeCreatedEvent{
				EventType:  events.EmployeeCreatedType,
				EmployeeID: u.ID.String(),
				Role:       u.Role,
				Department: u.Department,
				OccurredAt: time.Now().UTC(),
			})
		if err != nil {
			return created, err
		}
		if err := outbox.Create(ctx, ev); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func seedCategories(ctx context.Context, repo reimbursement.CategoryRepository, logger *zap.Logger) (int, error) {
	created := 0
	for _, sc := range defaultCategories {
		_, err := repo.FindByName(ctx, sc.name)
		if err == nil {
			logger.Debug("seed category exists", zap.String("name", sc.name))
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		c := reimbursement.Category{
			ID:              uuid.New(),
			Name:            sc.name,
			RequiresReceipt: sc.requiresReceipt,
			IsActive:        true,
		}
		if sc.maxLimit != "" {
			c.MaxLimit = decimal.NewNullDecimal(decimal.RequireFromString(sc.maxLimit))
		}
		if err := repo.Create(ctx, &c); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
