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

package goldconf

import "github.com/rashidtv/gold-platform-demo/pkg/confutil"

type LogConfig struct {
	Level        *string       `json:"level,omitempty"`
	Format       *string       `json:"format,omitempty"`
	Output       *string       `json:"output,omitempty"`
	ForceColor   *bool         `json:"forceColor,omitempty"`
	DisableColor *bool         `json:"disableColor,omitempty"`
	TimeFormat   *string       `json:"timeFormat,omitempty"`
	UTC          *bool         `json:"utc,omitempty"`
	File         LogFileConfig `json:"file,omitempty"`
	JSON         JSONLogConfig `json:"json,omitempty"`
}

type LogFileConfig struct {
	Filename   *string `json:"filename,omitempty"`
	MaxSize    *string `json:"maxSize,omitempty"`
	MaxBackups *int    `json:"maxBackups,omitempty"`
	MaxAge     *string `json:"maxAge,omitempty"`
	Compress   *bool   `json:"compress,omitempty"`
}

type JSONLogConfig struct {
	TimestampField *string `json:"timestampField,omitempty"`
	LevelField     *string `json:"levelField,omitempty"`
	MessageField   *string `json:"messageField,omitempty"`
	FuncField      *string `json:"funcField,omitempty"`
	FileField      *string `json:"fileField,omitempty"`
}

var LogDefaults = &LogConfig{
	Level:        confutil.P("info"),
	Output:       confutil.P("stderr"),
	Format:       confutil.P("simple"),
	TimeFormat:   confutil.P("2006-01-02T15:04:05.000Z07:00"),
	UTC:          confutil.P(false),
	ForceColor:   confutil.P(false),
	DisableColor: confutil.P(false),
	File: LogFileConfig{
		Filename:   confutil.P("goldcert.log"),
		MaxSize:    confutil.P("100Mb"),
		MaxBackups: confutil.P(2),
		MaxAge:     confutil.P("24h"),
		Compress:   confutil.P(true),
	},
	JSON: JSONLogConfig{
		TimestampField: confutil.P("@timestamp"),
		LevelField:     confutil.P("level"),
		MessageField:   confutil.P("message"),
		FuncField:      confutil.P("func"),
		FileField:      confutil.P("file"),
	},
}
