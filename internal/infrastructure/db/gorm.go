package db

import (
	"time"

	"device-approval-backend/internal/domain/approval"
	"device-approval-backend/internal/domain/device"
	"device-approval-backend/internal/domain/directory"
	"device-approval-backend/internal/domain/notification"

	gorm_logrus "github.com/onrik/gorm-logrus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

// OpenGormWithDialector opens the pool and pings it once.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:                 gorm_logrus.New(),
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}
	log.Info("gorm: connected")
	return db, nil
}

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&directory.User{},
		&device.Project{},
		&device.Department{},
		&device.Device{},
		&approval.Request{},
		&approval.Step{},
		&approval.DeviceDetail{},
		&approval.Comment{},
		&notification.Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	log.Info("gorm: schema migrated")
	return nil
}
