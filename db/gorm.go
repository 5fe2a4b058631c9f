package db

import (
	"fmt"
	"log"
	"time"

	"resona/config"
	"resona/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormDB coexists with DB (*sql.DB): GORM owns schema migration, the
// repositories stay on database/sql.
var GormDB *gorm.DB

// ConnectGormDB establishes the GORM connection used for migrations.
func ConnectGormDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// Dependent rows are deleted explicitly inside transactions, not
		// by database-level cascades.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	sqlDB, err := GormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to the database with GORM.")
	return nil
}

// CloseGormDB closes the GORM connection.
func CloseGormDB() error {
	if GormDB == nil {
		return nil
	}

	sqlDB, err := GormDB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// MigrateSchema creates or updates all application tables. The composite
// primary keys on likes and playlist_tracks are the storage-level guard
// against duplicate likes and duplicate playlist membership.
func MigrateSchema() error {
	if GormDB == nil {
		return fmt.Errorf("GORM database not initialized")
	}

	err := GormDB.AutoMigrate(
		&model.User{},
		&model.Track{},
		&model.Playlist{},
		&model.PlaylistTrack{},
		&model.Comment{},
		&model.Like{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Println("Database schema migrated successfully.")
	return nil
}
