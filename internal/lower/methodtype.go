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
    `sync`

    `github.com/graphir/graphir/internal/ir`
    `github.com/graphir/graphir/internal/types`
)

var (
    mtpMutex sync.Mutex
    mtpCache = make(map[*types.Type]*types.Type)
)

func isDoublewordType(t *types.Type, p *Params) bool {
    if t == nil || t.Kind() != types.KindPrimitive || t.Mode() == nil {
        return false
    }
    m := t.Mode()
    return m.IsInt() && m.Bits() == p.Bits
}

/* expand substitutes every doubleword entry by (unsigned-low, high),
 * preserving order; the high half keeps the signedness */
func expand(list []*types.Type, p *Params) ([]*types.Type, bool) {
    var out []*types.Type
    changed := false

    for _, t := range list {
        if !isDoublewordType(t, p) {
            out = append(out, t)
            continue
        }

        lo := ir.IntMode(p.Bits / 2, false)
        hi := ir.IntMode(p.Bits / 2, t.Mode().Signed())
        out = append(out, types.NewPrimitive(lo), types.NewPrimitive(hi))
        changed = true
    }
    return out, changed
}

// LowerMethodType produces the lowered form of a method type: every
// doubleword parameter or result becomes two consecutive half-width
// entries. Lowered types carry a marker, making the transformation
// idempotent; the original-to-lowered mapping is process-global.
func LowerMethodType(mtp *types.Type, p *Params) *types.Type {
    if mtp == nil || mtp.Kind() != types.KindMethod || mtp.Lowered() {
        return mtp
    }

    mtpMutex.Lock()
    defer mtpMutex.Unlock()

    if t, ok := mtpCache[mtp]; ok {
        return t
    }

    var params, results []*types.Type
    for i := 0; i < mtp.ParamCount(); i++ {
        params = append(params, mtp.Param(i))
    }
    for i := 0; i < mtp.ResCount(); i++ {
        results = append(results, mtp.Res(i))
    }

    ps, pc := expand(params, p)
    rs, rc := expand(results, p)

    if !pc && !rc {
        mtpCache[mtp] = mtp
        return mtp
    }

    t := types.NewMethod(ps, rs)
    t.MarkLowered()
    mtpCache[mtp] = t
    return t
}

/* indexMap gives, per original entry, its index in the expanded list and
 * whether it was split */
func indexMap(list []*types.Type, p *Params) ([]int, []bool) {
    idx := make([]int, len(list))
    dbl := make([]bool, len(list))
    pos := 0

    for i, t := range list {
        idx[i] = pos
        if isDoublewordType(t, p) {
            dbl[i] = true
            pos += 2
        } else {
            pos++
        }
    }
    return idx, dbl
}

func (self *_Env) paramIndices(mtp *types.Type) ([]int, []bool) {
    list := make([]*types.Type, mtp.ParamCount())
    for i := range list {
        list[i] = mtp.Param(i)
    }
    return indexMap(list, self.p)
}

func (self *_Env) resultIndices(mtp *types.Type) ([]int, []bool) {
    list := make([]*types.Type, mtp.ResCount())
    for i := range list {
        list[i] = mtp.Res(i)
    }
    return indexMap(list, self.p)
}
