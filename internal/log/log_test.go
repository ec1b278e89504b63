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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogging() {
	InitConfig(&goldconf.LogConfig{})
}

func TestLogFieldOnContext(t *testing.T) {
	ctx := WithLogField(context.Background(), "cert", "42")
	assert.Equal(t, "42", L(ctx).Data["cert"])
	assert.Empty(t, L(context.Background()).Data)
}

func TestLogFieldTruncated(t *testing.T) {
	addr := "0x5FbDB2315678afecb367f032d93F642f64180aa35FbDB2315678afecb367f032d93F642f64180aa3"
	ctx := WithLogField(context.Background(), "addr", addr)
	assert.Equal(t, addr[0:61]+"...", L(ctx).Data["addr"])
}

func TestLevels(t *testing.T) {
	defer resetLogging()

	SetLevel("eRrOr")
	assert.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
	assert.Equal(t, "error", GetLevel())

	SetLevel("WARNING")
	assert.Equal(t, "warn", GetLevel())

	SetLevel("debug")
	assert.True(t, IsDebugEnabled())
	assert.Equal(t, "debug", GetLevel())

	SetLevel("trace")
	assert.True(t, IsTraceEnabled())
	assert.Equal(t, "trace", GetLevel())

	SetLevel("anything")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.Equal(t, "info", GetLevel())
}

func TestFormatsAndOutputs(t *testing.T) {
	defer resetLogging()

	for _, conf := range []*goldconf.LogConfig{
		{DisableColor: confutil.P(true), UTC: confutil.P(true)},
		{Output: confutil.P("stdout")},
		{Format: confutil.P("detailed")},
		{Format: confutil.P("json")},
	} {
		InitConfig(conf)
		L(context.Background()).Infof("format=%v", conf.Format)
	}
}

func TestJSONToFile(t *testing.T) {
	defer resetLogging()

	logFile := filepath.Join(t.TempDir(), "goldcert.log")
	InitConfig(&goldconf.LogConfig{
		Output: confutil.P("file"),
		Format: confutil.P("json"),
		File: goldconf.LogFileConfig{
			Filename: confutil.P(logFile),
		},
		JSON: goldconf.JSONLogConfig{
			MessageField: confutil.P("msg"),
		},
	})
	L(context.Background()).Infof("minted certificate")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "minted certificate", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}
