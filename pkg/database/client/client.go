/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"

	"github.com/openkcloud/kcloud-manage/pkg/config"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
)

// DBConfig holds the database connection parameters.
type DBConfig struct {
	DBName       string
	Username     string
	Password     string
	Host         string
	Port         int
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
}

// Client wraps the gorm database handle and exposes the per-table
// facade methods defined in the sibling files. A Client obtained from
// Transaction is scoped to that transaction.
type Client struct {
	db *gorm.DB
}

// NewClient establishes the PostgreSQL connection from the loaded
// configuration and returns a ready-to-use Client.
func NewClient() (*Client, error) {
	cfg := &DBConfig{
		DBName:      config.GetDBName(),
		Username:    config.GetDBUser(),
		Password:    config.GetDBPassword(),
		Host:        config.GetDBHost(),
		Port:        config.GetDBPort(),
		SSLMode:     config.GetDBSslMode(),
		MaxOpenConns: config.GetDBMaxOpenConns(),
		MaxIdleConns: config.GetDBMaxIdleConns(),
		MaxLifetime: time.Duration(config.GetDBMaxLifetimeSecond()) * time.Second,
		MaxIdleTime: time.Duration(config.GetDBMaxIdleTimeSecond()) * time.Second,
	}
	if err := checkParams(cfg); err != nil {
		klog.ErrorS(err, "failed to check db params")
		return nil, err
	}
	gormDb, err := connectGorm(cfg)
	if err != nil {
		klog.ErrorS(err, "failed to connect db", "name", cfg.DBName)
		return nil, err
	}
	sqlDb, err := gormDb.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDb.Ping(); err != nil {
		klog.ErrorS(err, "failed to ping db")
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDb.SetConnMaxIdleTime(cfg.MaxIdleTime)
	sqlDb.SetConnMaxLifetime(cfg.MaxLifetime)
	klog.Infof("init db-client successfully! host: %s, db: %s", cfg.Host, cfg.DBName)
	return &Client{db: gormDb}, nil
}

// NewClientWithDB wraps an existing gorm handle. Used by tests and by
// Transaction to produce a transaction-scoped Client.
func NewClientWithDB(db *gorm.DB) *Client {
	return &Client{db: db}
}

// AutoMigrate creates or updates the portal tables.
func (c *Client) AutoMigrate() error {
	return c.db.AutoMigrate(
		&model.User{},
		&model.Flavor{},
		&model.Server{},
		&model.ServerGpuMapping{},
		&model.Pvc{},
	)
}

// Transaction runs fn inside a single database transaction. The Client
// passed to fn is scoped to that transaction; returning an error rolls
// back every write made through it.
func (c *Client) Transaction(ctx context.Context, fn func(tx *Client) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Client{db: tx})
	})
}

// Close closes the underlying connection pool.
func (c *Client) Close() {
	sqlDb, err := c.db.DB()
	if err == nil {
		if err = sqlDb.Close(); err != nil {
			klog.ErrorS(err, "failed to close db connection")
		}
	}
}

func connectGorm(cfg *DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%v user=%s dbname=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DBName, cfg.Password, cfg.SSLMode)
	dialector := postgres.Dialector{
		Config: &postgres.Config{
			DSN: dsn,
		},
	}
	return gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
}

func checkParams(cfg *DBConfig) error {
	var errs []error
	if cfg.DBName == "" {
		errs = append(errs, fmt.Errorf("dbname not found"))
	}
	if cfg.Username == "" {
		errs = append(errs, fmt.Errorf("username not found"))
	}
	if cfg.Password == "" {
		errs = append(errs, fmt.Errorf("password not found"))
	}
	if cfg.Host == "" {
		errs = append(errs, fmt.Errorf("host not found"))
	}
	if cfg.Port == 0 {
		errs = append(errs, fmt.Errorf("port not found"))
	}
	return utilerrors.NewAggregate(errs)
}
