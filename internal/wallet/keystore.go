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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/keystorev3"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/rashidtv/gold-platform-demo/internal/cache"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

const (
	keyFileSuffix      = ".key"
	passwordFileSuffix = ".pwd"
)

// keystore reads V3 wallet files from a directory. Each "<name>.key" file
// is unlocked with the password held in the sibling "<name>.pwd" file.
type keystore struct {
	cache cache.Cache[string, keystorev3.WalletFile]
	path  string
}

func newKeystore(ctx context.Context, conf *goldconf.KeystoreWalletConfig) (*keystore, error) {
	var pathInfo os.FileInfo
	path, err := filepath.Abs(confutil.StringNotEmpty(conf.Path, *goldconf.WalletDefaults.Keystore.Path))
	if err == nil {
		pathInfo, err = os.Stat(path)
	}
	if err != nil || !pathInfo.IsDir() {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletBadKeystorePath, path)
	}
	return &keystore{
		cache: cache.NewCache[string, keystorev3.WalletFile](&conf.Cache, &goldconf.WalletDefaults.Keystore.Cache),
		path:  path,
	}, nil
}

func (ks *keystore) loadKeys(ctx context.Context) ([]*secp256k1.KeyPair, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletBadKeystorePath, ks.path)
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), keyFileSuffix) {
			names = append(names, strings.TrimSuffix(e.Name(), keyFileSuffix))
		}
	}
	sort.Strings(names)

	keyPairs := make([]*secp256k1.KeyPair, 0, len(names))
	for _, name := range names {
		wf, err := ks.getWalletFile(ctx, name)
		if err != nil {
			return nil, err
		}
		keyPairs = append(keyPairs, secp256k1.KeyPairFromBytes(wf.PrivateKey()))
	}
	return keyPairs, nil
}

func (ks *keystore) getWalletFile(ctx context.Context, name string) (keystorev3.WalletFile, error) {
	if cached, _ := ks.cache.Get(name); cached != nil {
		return cached, nil
	}
	keyFilePath := filepath.Join(ks.path, name+keyFileSuffix)
	passwordFilePath := filepath.Join(ks.path, name+passwordFileSuffix)

	keyData, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletBadKeyFile, keyFilePath)
	}
	passData, err := os.ReadFile(passwordFilePath)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletBadPassFile, passwordFilePath)
	}
	wf, err := keystorev3.ReadWalletFile(keyData, []byte(strings.TrimSpace(string(passData))))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletKeystoreReadFailed, keyFilePath)
	}
	log.L(ctx).Debugf("Loaded keystore file %s", keyFilePath)
	ks.cache.Set(name, wf)
	return wf, nil
}
