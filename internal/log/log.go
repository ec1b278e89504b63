/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package log

import (
	"context"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	rootLogger = logrus.NewEntry(logrus.StandardLogger())

	// L accesses the current logger from the context
	L = loggerFromContext

	initAtLeastOnce atomic.Bool
)

type ctxLogKey struct{}

const maxFieldLength = 61

func InitConfig(conf *goldconf.LogConfig) {
	initAtLeastOnce.Store(true) // must store before SetLevel
	def := goldconf.LogDefaults

	SetLevel(confutil.StringNotEmpty(conf.Level, *def.Level))

	switch confutil.StringNotEmpty(conf.Output, *def.Output) {
	case "file":
		filename := confutil.StringNotEmpty(conf.File.Filename, *def.File.Filename)
		rootLogger.Infof("Logs diverted to %s", filename)
		maxSizeBytes := confutil.ByteSize(conf.File.MaxSize, 0, *def.File.MaxSize)
		maxAge := confutil.DurationMin(conf.File.MaxAge, 0, *def.File.MaxAge)
		logrus.SetOutput(&lumberjack.Logger{
			Filename:   filename,
			MaxSize:    int(math.Ceil(float64(maxSizeBytes) / 1024 / 1024)), // megabytes, rounded up
			MaxBackups: confutil.IntMin(conf.File.MaxBackups, 0, *def.File.MaxBackups),
			MaxAge:     int(math.Ceil(float64(maxAge) / float64(24*time.Hour))), // days, rounded up
			Compress:   confutil.Bool(conf.File.Compress, *def.File.Compress),
		})
	case "stdout":
		logrus.SetOutput(os.Stdout)
	default:
		logrus.SetOutput(os.Stderr)
	}

	setFormatting(&formatting{
		format:             confutil.StringNotEmpty(conf.Format, *def.Format),
		disableColor:       confutil.Bool(conf.DisableColor, *def.DisableColor),
		forceColor:         confutil.Bool(conf.ForceColor, *def.ForceColor),
		timestampFormat:    confutil.StringNotEmpty(conf.TimeFormat, *def.TimeFormat),
		utc:                confutil.Bool(conf.UTC, *def.UTC),
		jsonTimestampField: confutil.StringNotEmpty(conf.JSON.TimestampField, *def.JSON.TimestampField),
		jsonLevelField:     confutil.StringNotEmpty(conf.JSON.LevelField, *def.JSON.LevelField),
		jsonMessageField:   confutil.StringNotEmpty(conf.JSON.MessageField, *def.JSON.MessageField),
		jsonFuncField:      confutil.StringNotEmpty(conf.JSON.FuncField, *def.JSON.FuncField),
		jsonFileField:      confutil.StringNotEmpty(conf.JSON.FileField, *def.JSON.FileField),
	})
}

func IsDebugEnabled() bool {
	return logrus.IsLevelEnabled(logrus.DebugLevel)
}

func IsTraceEnabled() bool {
	return logrus.IsLevelEnabled(logrus.TraceLevel)
}

// EnsureInit gives unit tests a sane logger without requiring InitConfig.
// Not called on every log line.
func EnsureInit() {
	if !initAtLeastOnce.Load() {
		InitConfig(&goldconf.LogConfig{})
	}
}

// WithLogger adds the specified logger to the context
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	EnsureInit()
	return context.WithValue(ctx, ctxLogKey{}, logger)
}

// WithLogField adds the specified field to the logger in the context
func WithLogField(ctx context.Context, key, value string) context.Context {
	EnsureInit()
	if len(value) > maxFieldLength {
		value = value[0:maxFieldLength] + "..."
	}
	return WithLogger(ctx, loggerFromContext(ctx).WithField(key, value))
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(ctxLogKey{})
	if logger == nil {
		return rootLogger
	}
	return logger.(*logrus.Entry)
}

func GetLevel() string {
	switch logrus.GetLevel() {
	case logrus.ErrorLevel:
		return "error"
	case logrus.WarnLevel:
		return "warn"
	case logrus.DebugLevel:
		return "debug"
	case logrus.TraceLevel:
		return "trace"
	default:
		return "info"
	}
}

func SetLevel(level string) {
	var l logrus.Level
	switch strings.ToLower(level) {
	case "error":
		l = logrus.ErrorLevel
	case "warn", "warning":
		l = logrus.WarnLevel
	case "debug":
		l = logrus.DebugLevel
	case "trace":
		l = logrus.TraceLevel
	default:
		l = logrus.InfoLevel
	}
	logrus.SetLevel(l)
}

type formatting struct {
	format             string
	disableColor       bool
	forceColor         bool
	timestampFormat    string
	utc                bool
	jsonTimestampField string
	jsonLevelField     string
	jsonMessageField   string
	jsonFuncField      string
	jsonFileField      string
}

type utcFormat struct {
	f logrus.Formatter
}

func (utc *utcFormat) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return utc.f.Format(e)
}

func setFormatting(f *formatting) {
	var formatter logrus.Formatter
	logrus.SetReportCaller(false)
	switch f.format {
	case "json":
		formatter = &logrus.JSONFormatter{
			TimestampFormat: f.timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  f.jsonTimestampField,
				logrus.FieldKeyLevel: f.jsonLevelField,
				logrus.FieldKeyMsg:   f.jsonMessageField,
				logrus.FieldKeyFunc:  f.jsonFuncField,
				logrus.FieldKeyFile:  f.jsonFileField,
			},
		}
	case "detailed":
		formatter = &logrus.TextFormatter{
			DisableColors:   f.disableColor,
			ForceColors:     f.forceColor,
			TimestampFormat: f.timestampFormat,
			FullTimestamp:   true,
		}
		logrus.SetReportCaller(true)
	default:
		formatter = &prefixed.TextFormatter{
			DisableColors:   f.disableColor,
			ForceColors:     f.forceColor,
			TimestampFormat: f.timestampFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
	}
	if f.utc {
		formatter = &utcFormat{f: formatter}
	}
	logrus.SetFormatter(formatter)
}
