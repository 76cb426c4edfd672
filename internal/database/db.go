package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"magaza-backend/internal/config"
	"magaza-backend/internal/logger"
	"magaza-backend/internal/models"
)

var DB *gorm.DB

// Options veritabanı bağlantı parametreleri.
type Options struct {
	Driver   string
	DSN      string
	LogLevel string
}

// Init konfigürasyona göre bağlantıyı açar, migration'ları çalıştırır ve global DB'yi ayarlar.
func Init(cfg *config.Config) (*gorm.DB, error) {
	opts := Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN, LogLevel: cfg.DBLogLevel}
	if cfg.DBDriver == config.DriverSQLite {
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite klasörü oluşturulamadı: %w", err)
			}
		}
		opts.DSN = cfg.SQLitePath
	}

	db, err := Open(opts)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	DB = db
	log.Info().Str("driver", opts.Driver).Msg("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db, nil
}

// Open sürücüye göre GORM bağlantısı açar. Testler de bu fonksiyonu SQLite ile kullanır.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("desteklenmeyen veritabanı sürücüsü: %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(opts.LogLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().Local() },
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB alınamadı: %w", err)
	}

	if opts.Driver == config.DriverSQLite {
		// SQLite tek yazıcıya izin verir; tek bağlantı "database is locked" hatalarını önler
		sqlDB.SetMaxOpenConns(1)
		_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")
		_, _ = sqlDB.Exec("PRAGMA busy_timeout = 5000;")
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Migrate tüm tabloları oluşturur/günceller.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Sale{},
		&models.SaleItem{},
		&models.BalanceTransaction{},
		&models.StockMovement{},
		&models.Invoice{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}
	return nil
}
