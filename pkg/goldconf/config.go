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

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"sigs.k8s.io/yaml"
)

// GoldConfig is the root of the YAML configuration file
type GoldConfig struct {
	Log           LogConfig           `json:"log"`
	Ledger        LedgerConfig        `json:"ledger"`
	Wallet        WalletConfig        `json:"wallet"`
	Confirmation  ConfirmationConfig  `json:"confirmation"`
	Sync          SyncConfig          `json:"sync"`
	RPCServer     RPCServerConfig     `json:"rpcServer"`
	MetricsServer MetricsServerConfig `json:"metricsServer"`
	Simulator     SimulatorConfig     `json:"simulator"`
}

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config interface{}) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err.Error())
	}

	if err = yaml.Unmarshal(data, config); err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, filePath, err.Error())
	}

	return nil
}
