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

package ledgersim

import (
	"context"
	"encoding/hex"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
)

const maxPurityBasisPoints = 10000

type goldBar struct {
	weight        *big.Int
	purity        *big.Int
	mineOrigin    string
	refinery      string
	mintDate      *big.Int
	owner         ethtypes.Address0xHex
	vaultLocation string
}

// goldPlatform holds the contract state. Callers hold the node lock.
type goldPlatform struct {
	functions map[string]*abi.Entry
	bars      []*goldBar
}

// revert is a contract-level failure, reported as "execution reverted"
type revert struct {
	reason string
}

func (r *revert) Error() string {
	return "execution reverted: " + r.reason
}

func newGoldPlatform(contractABI abi.ABI) *goldPlatform {
	gp := &goldPlatform{functions: map[string]*abi.Entry{}}
	for _, e := range contractABI {
		if e.IsFunction() {
			gp.functions[hex.EncodeToString(e.FunctionSelectorBytes())] = e
		}
	}
	return gp
}

// execute runs a call against the contract. When commit is false all
// validation runs, but the state is left untouched.
func (gp *goldPlatform) execute(ctx context.Context, from ethtypes.Address0xHex, data []byte, now int64, commit bool) ([]byte, error) {
	if len(data) < 4 {
		return nil, i18n.NewError(ctx, msgs.MsgSimUnknownSelector, ethtypes.HexBytes0xPrefix(data))
	}
	fn := gp.functions[hex.EncodeToString(data[0:4])]
	if fn == nil {
		return nil, i18n.NewError(ctx, msgs.MsgSimUnknownSelector, ethtypes.HexBytes0xPrefix(data[0:4]))
	}
	cv, err := fn.DecodeCallDataCtx(ctx, data)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSimInvalidTX, fn.Name)
	}
	args := make([]any, len(cv.Children))
	for i, c := range cv.Children {
		args[i] = c.Value
	}

	var outputs []any
	switch fn.Name {
	case "getTotalGoldBars":
		outputs = []any{big.NewInt(int64(len(gp.bars)))}
	case "getGoldBarDetails":
		bar, err := gp.bar(args[0])
		if err != nil {
			return nil, err
		}
		outputs = []any{bar.weight, bar.purity, bar.mineOrigin, bar.refinery, bar.mintDate, bar.owner.String(), bar.vaultLocation}
	case "certificateOwners":
		owner := ethtypes.Address0xHex{}
		if bar, err := gp.bar(args[0]); err == nil {
			owner = bar.owner
		}
		outputs = []any{owner.String()}
	case "mintGoldCertificate":
		tokenID, err := gp.mint(from, args, now, commit)
		if err != nil {
			return nil, err
		}
		outputs = []any{tokenID}
	case "transferCertificate":
		if err := gp.transfer(from, args, commit); err != nil {
			return nil, err
		}
	default:
		return nil, i18n.NewError(ctx, msgs.MsgSimUnknownSelector, fn.Name)
	}
	return fn.Outputs.EncodeABIDataValuesCtx(ctx, outputs)
}

func (gp *goldPlatform) bar(idArg any) (*goldBar, error) {
	id, _ := idArg.(*big.Int)
	if id == nil || !id.IsInt64() || id.Int64() >= int64(len(gp.bars)) {
		return nil, &revert{reason: "Invalid certificate ID"}
	}
	return gp.bars[id.Int64()], nil
}

func (gp *goldPlatform) mint(from ethtypes.Address0xHex, args []any, now int64, commit bool) (*big.Int, error) {
	weight, _ := args[0].(*big.Int)
	purity, _ := args[1].(*big.Int)
	mineOrigin, _ := args[2].(string)
	refinery, _ := args[3].(string)
	vaultLocation, _ := args[4].(string)
	switch {
	case weight == nil || weight.Sign() <= 0:
		return nil, &revert{reason: "Weight must be positive"}
	case purity == nil || purity.Sign() <= 0 || purity.Cmp(big.NewInt(maxPurityBasisPoints)) > 0:
		return nil, &revert{reason: "Invalid purity"}
	case mineOrigin == "":
		return nil, &revert{reason: "Mine origin required"}
	case refinery == "":
		return nil, &revert{reason: "Refinery required"}
	case vaultLocation == "":
		return nil, &revert{reason: "Vault location required"}
	}
	tokenID := big.NewInt(int64(len(gp.bars)))
	if commit {
		gp.bars = append(gp.bars, &goldBar{
			weight:        weight,
			purity:        purity,
			mineOrigin:    mineOrigin,
			refinery:      refinery,
			mintDate:      big.NewInt(now),
			owner:         from,
			vaultLocation: vaultLocation,
		})
	}
	return tokenID, nil
}

func (gp *goldPlatform) transfer(from ethtypes.Address0xHex, args []any, commit bool) error {
	bar, err := gp.bar(args[0])
	if err != nil {
		return err
	}
	to := toAddress(args[1])
	switch {
	case bar.owner != from:
		return &revert{reason: "Not the certificate owner"}
	case to == nil || *to == (ethtypes.Address0xHex{}):
		return &revert{reason: "Invalid recipient"}
	}
	if commit {
		bar.owner = *to
	}
	return nil
}

// toAddress accepts the decoded form of an address parameter
func toAddress(v any) *ethtypes.Address0xHex {
	switch a := v.(type) {
	case *big.Int:
		var addr ethtypes.Address0xHex
		if a.Sign() < 0 || a.BitLen() > 160 {
			return nil
		}
		a.FillBytes(addr[:])
		return &addr
	case ethtypes.Address0xHex:
		return &a
	case *ethtypes.Address0xHex:
		return a
	case string:
		addr, err := ethtypes.NewAddress(a)
		if err != nil {
			return nil
		}
		return addr
	default:
		return nil
	}
}
