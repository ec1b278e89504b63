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

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndParseYAMLFile(t *testing.T) {
	dir := t.TempDir()
	confFile := filepath.Join(dir, "conf.yaml")
	err := os.WriteFile(confFile, []byte(`
log:
  level: debug
ledger:
  contractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
  http:
    url: http://localhost:8545
  ws:
    url: ws://localhost:8546
    readBufferSize: 32Kb
wallet:
  type: static
  static:
    keys:
    - "0x0123"
sync:
  maxConcurrentFetches: 4
rpcServer:
  http:
    port: 9000
  ws:
    disabled: true
`), 0600)
	require.NoError(t, err)

	var conf GoldConfig
	err = ReadAndParseYAMLFile(context.Background(), confFile, &conf)
	require.NoError(t, err)
	assert.Equal(t, "debug", *conf.Log.Level)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", *conf.Ledger.ContractAddress)
	assert.Equal(t, "http://localhost:8545", conf.Ledger.HTTP.URL)
	assert.Equal(t, "ws://localhost:8546", conf.Ledger.WS.URL)
	assert.Equal(t, "32Kb", *conf.Ledger.WS.ReadBufferSize)
	assert.Equal(t, WalletTypeStatic, *conf.Wallet.Type)
	assert.Equal(t, []string{"0x0123"}, conf.Wallet.Static.Keys)
	assert.Equal(t, 4, *conf.Sync.MaxConcurrentFetches)
	assert.Equal(t, 9000, *conf.RPCServer.HTTP.Port)
	assert.True(t, conf.RPCServer.WS.Disabled)
}

func TestReadAndParseYAMLFileMissing(t *testing.T) {
	var conf GoldConfig
	err := ReadAndParseYAMLFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), &conf)
	assert.Regexp(t, "GP010000", err)
}

func TestReadAndParseYAMLFileBadYAML(t *testing.T) {
	confFile := filepath.Join(t.TempDir(), "conf.yaml")
	err := os.WriteFile(confFile, []byte(`{ !!! not yaml`), 0600)
	require.NoError(t, err)

	var conf GoldConfig
	err = ReadAndParseYAMLFile(context.Background(), confFile, &conf)
	assert.Regexp(t, "GP010002", err)
}
