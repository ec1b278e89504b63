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
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/ethclient"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

// Wallet is the account and signing provider the session connects through
type Wallet interface {
	RequestAccounts(ctx context.Context) ([]ethtypes.Address0xHex, error)
	SigningCapability(ctx context.Context, account ethtypes.Address0xHex) (ethclient.Signer, error)
}

// keySource loads the key pairs a wallet holds
type keySource interface {
	loadKeys(ctx context.Context) ([]*secp256k1.KeyPair, error)
}

type wallet struct {
	source      keySource
	autoApprove bool

	lock sync.Mutex
	keys map[ethtypes.Address0xHex]*secp256k1.KeyPair
}

type keySigner struct {
	kp *secp256k1.KeyPair
}

func NewWallet(ctx context.Context, conf *goldconf.WalletConfig) (Wallet, error) {
	var source keySource
	var err error
	walletType := confutil.StringNotEmpty(conf.Type, *goldconf.WalletDefaults.Type)
	switch walletType {
	case goldconf.WalletTypeNone:
		return &noWallet{}, nil
	case goldconf.WalletTypeStatic:
		source, err = newStaticKeys(ctx, &conf.Static)
	case goldconf.WalletTypeKeystore:
		source, err = newKeystore(ctx, &conf.Keystore)
	default:
		return nil, i18n.NewError(ctx, msgs.MsgWalletUnknownType, walletType)
	}
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Wallet type=%s initialized", walletType)
	return &wallet{
		source:      source,
		autoApprove: confutil.Bool(conf.AutoApprove, *goldconf.WalletDefaults.AutoApprove),
		keys:        map[ethtypes.Address0xHex]*secp256k1.KeyPair{},
	}, nil
}

// RequestAccounts reloads the keys on every call, so keys added to a
// keystore are picked up on the next connect. Accounts are returned in the
// order the source lists them.
func (w *wallet) RequestAccounts(ctx context.Context) ([]ethtypes.Address0xHex, error) {
	if !w.autoApprove {
		return nil, goldapi.NewError(ctx, goldapi.ErrUserRejected, msgs.MsgWalletAccountsDeclined)
	}
	keyPairs, err := w.source.loadKeys(ctx)
	if err != nil {
		return nil, err
	}
	if len(keyPairs) == 0 {
		return nil, goldapi.NewError(ctx, goldapi.ErrNoWalletProvider, msgs.MsgWalletNoAccounts)
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	accounts := make([]ethtypes.Address0xHex, len(keyPairs))
	for i, kp := range keyPairs {
		w.keys[kp.Address] = kp
		accounts[i] = kp.Address
	}
	return accounts, nil
}

func (w *wallet) SigningCapability(ctx context.Context, account ethtypes.Address0xHex) (ethclient.Signer, error) {
	w.lock.Lock()
	kp := w.keys[account]
	w.lock.Unlock()
	if kp == nil {
		return nil, goldapi.NewError(ctx, goldapi.ErrNoWalletProvider, msgs.MsgWalletUnknownAccount, account)
	}
	if !w.autoApprove {
		return nil, goldapi.NewError(ctx, goldapi.ErrTransactionRejected, msgs.MsgWalletSigningDeclined, account)
	}
	return &keySigner{kp: kp}, nil
}

func (s *keySigner) Address() ethtypes.Address0xHex {
	return s.kp.Address
}

func (s *keySigner) SignHash(ctx context.Context, hash []byte) (*secp256k1.SignatureData, error) {
	sig, err := s.kp.SignDirect(hash)
	if err != nil {
		return nil, goldapi.WrapError(ctx, goldapi.ErrTransactionRejected, err, msgs.MsgEthClientSignatureFailed, s.kp.Address)
	}
	return sig, nil
}

type noWallet struct{}

func (nw *noWallet) RequestAccounts(ctx context.Context) ([]ethtypes.Address0xHex, error) {
	return nil, goldapi.NewError(ctx, goldapi.ErrNoWalletProvider, msgs.MsgWalletNoProvider)
}

func (nw *noWallet) SigningCapability(ctx context.Context, account ethtypes.Address0xHex) (ethclient.Signer, error) {
	return nil, goldapi.NewError(ctx, goldapi.ErrNoWalletProvider, msgs.MsgWalletNoProvider)
}
