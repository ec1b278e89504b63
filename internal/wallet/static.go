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

package wallet

import (
	"context"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

type staticKeys struct {
	keyPairs []*secp256k1.KeyPair
}

func newStaticKeys(ctx context.Context, conf *goldconf.StaticWalletConfig) (*staticKeys, error) {
	sk := &staticKeys{}
	for i, keyHex := range conf.Keys {
		keyBytes, err := ethtypes.NewHexBytes0xPrefix(strings.TrimSpace(keyHex))
		if err != nil || len(keyBytes) != 32 {
			// never log the key itself
			return nil, i18n.WrapError(ctx, err, msgs.MsgWalletInvalidPrivateKey, i)
		}
		sk.keyPairs = append(sk.keyPairs, secp256k1.KeyPairFromBytes(keyBytes))
	}
	return sk, nil
}

func (sk *staticKeys) loadKeys(ctx context.Context) ([]*secp256k1.KeyPair, error) {
	return sk.keyPairs, nil
}
