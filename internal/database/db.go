package database

import (
	"fmt"
	"time"

	"casebook/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

// время в базе храним в UTC, фильтры по датам тоже в UTC
func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:  newGormLogger(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "":
		return postgres.Open(dsn), nil
	case "sqlite":
		return openSQLite(dsn), nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}

// Open подключается к БД, повторяя попытки: контейнер с postgres может подниматься дольше приложения.
func Open(driver, dsn string) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	for i := 1; i <= connectAttempts; i++ {
		log.Info().Int("attempt", i).Int("max", connectAttempts).Msg("connecting to DB")

		db, err = gorm.Open(d, gormConfig(logger.Warn))
		if err == nil {
			log.Info().Str("driver", driver).Msg("connected to DB")
			return db, nil
		}

		log.Warn().Err(err).Msg("failed to connect to DB")
		if i < connectAttempts {
			time.Sleep(connectDelay)
		}
	}
	return nil, fmt.Errorf("connect to db after %d attempts: %w", connectAttempts, err)
}

// Init открывает БД, выполняет миграции и сидинг.
func Init(driver, dsn, adminEmail, adminPassword string) (*gorm.DB, error) {
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := Seed(db, adminEmail, adminPassword); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.ClientCase{},
		&models.DealType{},
		&models.IncomeType{},
		&models.PaymentSource{},
		&models.PaymentStatus{},
		&models.Payment{},
		&models.ActivityLogEntry{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	if err := createDefaultAdmin(db, adminEmail, adminPassword); err != nil {
		return err
	}
	return seedIncomeTypes(db)
}

// админ создаётся только если в базе нет ни одного
func createDefaultAdmin(db *gorm.DB, email, password string) error {
	if email == "" {
		email = "admin@casebook.local"
	}
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Email:        email,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	log.Info().Str("email", email).Msg("created default admin user")
	return nil
}

func seedIncomeTypes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.IncomeType{}).Count(&count).Error; err != nil {
		return fmt.Errorf("check income types: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []models.IncomeType{
		{Name: "Legal fee", PaymentType: models.PaymentIncome},
		{Name: "Success fee", PaymentType: models.PaymentIncome},
		{Name: "Court fee", PaymentType: models.PaymentExpense},
		{Name: "Office expenses", PaymentType: models.PaymentExpense},
	}
	if err := db.Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed income types: %w", err)
	}
	return nil
}
