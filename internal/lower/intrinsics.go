/*
 * Copyright 2025 Graphir Authors
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

package lower

import (
    `fmt`
    `sync`

    `github.com/graphir/graphir/internal/ir`
    `github.com/graphir/graphir/internal/types`
)

// IntrinsicFactory provides the runtime emulation entity of the given
// name and signature. The lowering caches the result per (op, imode,
// omode) triple, so repeated lookups never create duplicates.
type IntrinsicFactory func(name string, mtp *types.Type) *types.Entity

type _IntrinsicKey struct {
    op    ir.Op
    imode *ir.Mode
    omode *ir.Mode
}

var (
    intrinsicMutex sync.Mutex
    intrinsicCache = make(map[_IntrinsicKey]*types.Entity)
    convTypeCache  = make(map[_IntrinsicKey]*types.Type)
)

func opSuffix(op ir.Op) string {
    switch op {
        case ir.OpAdd   : return "add"
        case ir.OpSub   : return "sub"
        case ir.OpMul   : return "mul"
        case ir.OpDiv   : return "div"
        case ir.OpMod   : return "mod"
        case ir.OpShl   : return "shl"
        case ir.OpShr   : return "shr"
        case ir.OpShrs  : return "shrs"
        case ir.OpMinus : return "minus"
        case ir.OpConv  : return "conv"
        default         : panic(fmt.Sprintf("lower: no intrinsic for %v", op))
    }
}

func (self *_Env) modeChar(m *ir.Mode) string {
    switch {
        case self.isDoubleword(m) : return "l"
        case m.IsFloat()          : return "f"
        default                   : return "i"
    }
}

func (self *_Env) intrinsicName(op ir.Op, imode *ir.Mode, omode *ir.Mode) string {
    return fmt.Sprintf("__l%s_%s%s", opSuffix(op), self.modeChar(imode), self.modeChar(omode))
}

/* intrinsic resolves the emulation entity for the triple, consulting the
 * process-global cache first */
func (self *_Env) intrinsic(op ir.Op, imode *ir.Mode, omode *ir.Mode) *types.Entity {
    key := _IntrinsicKey { op: op, imode: imode, omode: omode }

    intrinsicMutex.Lock()
    defer intrinsicMutex.Unlock()

    if ent, ok := intrinsicCache[key]; ok {
        return ent
    }

    name := self.intrinsicName(op, imode, omode)
    mtp := self.intrinsicTypeLocked(op, imode, omode)

    var ent *types.Entity
    if self.p.Intrinsic != nil {
        ent = self.p.Intrinsic(name, mtp)
    } else {
        ent = types.NewEntity(types.EntMethod, name, mtp, nil)
        ent.SetVisibility(types.VisExternal)
    }

    intrinsicCache[key] = ent
    return ent
}

// intrinsicType builds the signature the emulation function of op is
// called with: doubleword operands are passed as (low, high) pairs and a
// doubleword result is returned the same way.
func (self *_Env) intrinsicType(op ir.Op, mode *ir.Mode) *types.Type {
    intrinsicMutex.Lock()
    defer intrinsicMutex.Unlock()
    return self.intrinsicTypeLocked(op, mode, mode)
}

func (self *_Env) intrinsicTypeLocked(op ir.Op, imode *ir.Mode, omode *ir.Mode) *types.Type {
    key := _IntrinsicKey { op: op, imode: imode, omode: omode }
    if t, ok := convTypeCache[key]; ok {
        return t
    }

    var params []*types.Type
    var results []*types.Type

    pair := func(m *ir.Mode) []*types.Type {
        lo, hi := self.halfModes(m)
        return []*types.Type { types.NewPrimitive(lo), types.NewPrimitive(hi) }
    }

    switch op {
        case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
            params = append(pair(imode), pair(imode)...)
            results = pair(omode)

        case ir.OpShl, ir.OpShr, ir.OpShrs:
            params = append(pair(imode), types.NewPrimitive(self.lu))
            results = pair(omode)

        case ir.OpMinus:
            params = pair(imode)
            results = pair(omode)

        case ir.OpConv:
            if self.isDoubleword(imode) {
                params = pair(imode)
                results = []*types.Type { types.NewPrimitive(omode) }
            } else {
                params = []*types.Type { types.NewPrimitive(imode) }
                results = pair(omode)
            }

        default:
            panic("unreachable")
    }

    t := types.NewMethod(params, results)
    t.MarkLowered()
    convTypeCache[key] = t
    return t
}
