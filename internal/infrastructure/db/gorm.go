package db

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

// OpenGorm connects to MySQL and applies pool settings. Defaults are tuned
// for a single API instance.
func OpenGorm(opts Options, log *logrus.Logger) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(opts.DSN), opts, log)
}

// OpenGormWithDialector is the injectable seam behind OpenGorm.
func OpenGormWithDialector(dial gorm.Dialector, opts Options, log *logrus.Logger) (*gorm.DB, error) {
	mode := gormlogger.Warn
	if opts.LogQueries {
		mode = gormlogger.Info
	}
	gdb, err := gorm.Open(dial, &gorm.Config{
		Logger: gormlogger.Default.LogMode(mode),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 30
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 10
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = 30 * time.Minute
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Info("mysql connected")
	return gdb, nil
}
