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
    `github.com/graphir/graphir/internal/ir`
    `github.com/graphir/graphir/internal/types`
)

/* Start: parameter Projs are renumbered against the lowered method type;
 * a doubleword parameter fans out into two Projs (low at the new index,
 * high right after it). */
func (self *_Env) lowerStart(n *ir.Node) bool {
    mtp, ok := self.g.MethodType().(*types.Type)
    if !ok || mtp == nil || mtp.Kind() != types.KindMethod || mtp.Lowered() {
        return true
    }

    idx, dbl := self.paramIndices(mtp)

    /* locate the argument tuple */
    var args *ir.Node
    for _, p := range self.projsOf(n) {
        if p.ProjNum() == ir.PnStartTArgs {
            args = p
            break
        }
    }
    if args == nil {
        return true
    }

    for _, q := range self.projsOf(args) {
        j := q.ProjNum()
        if j >= len(idx) {
            unexpectedProj(q)
        }

        if !dbl[j] {
            q.SetProjNum(idx[j])
            continue
        }

        lo, hi := self.halfModes(mtp.Param(j).Mode())
        low := self.g.NewProj(args, lo, idx[j])
        high := self.g.NewProj(args, hi, idx[j] + 1)
        self.entries.set(q, low, high)
    }
    return true
}

/* Call: doubleword arguments are passed as (low, high) pairs, the method
 * type is replaced by its lowered form, and result Projs are renumbered
 * the same way as Start parameters. */
func (self *_Env) lowerCall(n *ir.Node) bool {
    mtp, ok := n.CallType().(*types.Type)
    if !ok || mtp == nil || mtp.Kind() != types.KindMethod || mtp.Lowered() {
        return true
    }

    _, pdbl := self.paramIndices(mtp)
    ridx, rdbl := self.resultIndices(mtp)

    /* rebuild the argument list */
    newIns := []*ir.Node { n.In(0), n.In(1) }
    for i := 2; i < n.Arity(); i++ {
        j := i - 2
        if j < len(pdbl) && pdbl[j] {
            e, ok := self.operand(n.In(i))
            if !ok {
                return false
            }
            newIns = append(newIns, e.low, e.high)
        } else {
            newIns = append(newIns, n.In(i))
        }
    }

    n.SetIns(newIns)
    n.SetCallType(LowerMethodType(mtp, self.p))

    /* renumber the result Projs */
    for _, p := range self.projsOf(n) {
        if p.ProjNum() != ir.PnCallTResult {
            continue
        }
        for _, q := range self.projsOf(p) {
            j := q.ProjNum()
            if j >= len(ridx) {
                unexpectedProj(q)
            }

            if !rdbl[j] {
                q.SetProjNum(ridx[j])
                continue
            }

            lo, hi := self.halfModes(mtp.Res(j).Mode())
            low := self.g.NewProj(p, lo, ridx[j])
            high := self.g.NewProj(p, hi, ridx[j] + 1)
            self.entries.set(q, low, high)
        }
    }
    return true
}

/* Return: doubleword results are returned as (low, high) pairs */
func (self *_Env) lowerReturn(n *ir.Node) bool {
    mtp, ok := self.g.MethodType().(*types.Type)
    if !ok || mtp == nil || mtp.Kind() != types.KindMethod || mtp.Lowered() {
        return true
    }

    _, rdbl := self.resultIndices(mtp)

    newIns := []*ir.Node { n.In(0) }
    for i := 1; i < n.Arity(); i++ {
        j := i - 1
        if j < len(rdbl) && rdbl[j] {
            e, ok := self.operand(n.In(i))
            if !ok {
                return false
            }
            newIns = append(newIns, e.low, e.high)
        } else {
            newIns = append(newIns, n.In(i))
        }
    }

    n.SetIns(newIns)
    return true
}

/* Sel: a reference to a value-parameter entity follows the parameter
 * renumbering of the lowered method type */
func (self *_Env) lowerSel(n *ir.Node) bool {
    ent, ok := n.Entity().(*types.Entity)
    if !ok || ent == nil || ent.Kind() != types.EntParameter {
        return true
    }

    mtp, ok := self.g.MethodType().(*types.Type)
    if !ok || mtp == nil || mtp.Kind() != types.KindMethod || mtp.Lowered() {
        return true
    }

    if self.selDone[ent] {
        return true
    }

    idx, _ := self.paramIndices(mtp)
    if j := ent.ParamPos(); j < len(idx) && idx[j] != j {
        ent.SetParamPos(idx[j])
    }

    if self.selDone == nil {
        self.selDone = make(map[*types.Entity]bool)
    }
    self.selDone[ent] = true
    return true
}
