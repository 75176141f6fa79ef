/*
 * Copyright 2023 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverMysql    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	SQLiteMemory = ":memory:"

	mysqlStringSize = 256
)

type Config struct {
	Driver   string `json:"driver"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     uint   `json:"port,omitempty"`
	// DBName is the file path for sqlite
	DBName string `json:"dbname"`
	// MaxOpenConns zero for unlimited
	MaxOpenConns int `json:"max_open_conns,omitempty"`
	MaxIdleConns int `json:"max_idle_conns,omitempty"`
}

func (c Config) isSQLiteMemory() bool {
	return c.Driver == DriverSQLite && c.DBName == SQLiteMemory
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverMysql:
		precision := 0
		return mysql.New(mysql.Config{
			DSN: fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True",
				c.User, c.Password, c.Host, c.Port, c.DBName),
			DefaultStringSize:        mysqlStringSize,
			DisableDatetimePrecision: true,
			DefaultDatetimePrecision: &precision,
			DontSupportRenameIndex:   true,
			DontSupportRenameColumn:  true,
		}), nil
	case DriverPostgres:
		return postgres.Open(fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s sslmode=disable",
			c.User, c.Password, c.Host, c.Port, c.DBName)), nil
	case DriverSQLite:
		dsn := "file:" + c.DBName
		if len(c.User) > 0 {
			dsn += fmt.Sprintf("?_auth&_auth_user=%s&_auth_pass=%s", c.User, c.Password)
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, errors.IllegalArgumentError.Errorf("not support db driver:%s", c.Driver)
	}
}

// OpenDatabase connects to the database of cfg, logging queries to l at trace level.
func OpenDatabase(cfg Config, l log.Logger) (*gorm.DB, error) {
	d, err := cfg.dialector()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger: newGormLogger(l.WithFields(log.Fields{log.FieldKeyModule: "database"})),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fail to open driver:%s err:%s", cfg.Driver, err.Error())
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.isSQLiteMemory():
		// every connection has its own in-memory database
		sqlDB.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	return db, nil
}
