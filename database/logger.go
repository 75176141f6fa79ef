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
	"context"
	"errors"
	"time"

	"github.com/icon-project/btp2/common/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DefaultLogSlowThreshold = 200 * time.Millisecond
)

var gormLevels = map[logger.LogLevel]log.Level{
	logger.Silent: log.PanicLevel,
	logger.Error:  log.ErrorLevel,
	logger.Warn:   log.WarnLevel,
	logger.Info:   log.InfoLevel,
}

// gormLogger writes gorm logs to a btp2 logger. Queries are traced, slow ones warned.
type gormLogger struct {
	l log.Logger
}

func newGormLogger(l log.Logger) *gormLogger {
	return &gormLogger{l: l}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	if lv, ok := gormLevels[level]; ok {
		g.l.SetLevel(lv)
	}
	return g
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	g.l.Infof(msg, data...)
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	g.l.Warnf(msg, data...)
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	g.l.Errorf(msg, data...)
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	lv := g.l.GetLevel()
	if lv <= log.PanicLevel {
		return
	}
	elapsed := time.Since(begin)
	ms := float64(elapsed.Microseconds()) / 1e3
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && lv >= log.ErrorLevel:
		sql, rows := fc()
		g.l.Errorf("err:%s [%.3fms] [rows:%d] %s", err, ms, rows, sql)
	case elapsed > DefaultLogSlowThreshold && lv >= log.WarnLevel:
		sql, rows := fc()
		g.l.Warnf("slow query >= %v [%.3fms] [rows:%d] %s", DefaultLogSlowThreshold, ms, rows, sql)
	case lv >= log.TraceLevel:
		sql, rows := fc()
		g.l.Tracef("[%.3fms] [rows:%d] %s", ms, rows, sql)
	}
}
