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

package unroll

import (
    `github.com/graphir/graphir/internal/ir`
)

/* a recognized linear induction: phi is stepped once per round trip by
 * inc and compared against bound in the header, normalized so the
 * relation reads "phi REL bound" */
type _Induction struct {
    phi   *ir.Node
    inc   *ir.Node
    step  *ir.Node
    bound *ir.Node
    rel   ir.Relation
}

func orderedRel(r ir.Relation) bool {
    switch r {
        case ir.RelLess, ir.RelLessEqual, ir.RelGreater, ir.RelGreaterEqual:
            return true
        default:
            return false
    }
}

/* chooseFactor picks the unroll factor. A statically counted induction
 * of N iterations yields the largest power-of-two divisor of N within
 * the configured maximum, and a full unroll when it equals N. A linear
 * but uncounted induction is unrolled by 2 with the header retained. */
func (self *_LoopEnv) chooseFactor() (uint, bool) {
    ind := self.findInduction()
    if ind == nil {
        return 0, false
    }

    n, ok := self.tripCount(ind)
    if !ok {
        return 2, false
    }

    f := uint64(1)
    for n % (f * 2) == 0 && f * 2 <= uint64(self.p.Factor) {
        f *= 2
    }
    if f < 2 {
        return 0, false
    }
    return uint(f), f == n
}

func (self *_LoopEnv) findInduction() *_Induction {
    if len(self.backs) != 1 {
        return nil
    }

    for _, n := range self.nodes[self.header] {
        if n.Op() != ir.OpCond {
            continue
        }

        sel := n.In(0)
        if sel.Op() != ir.OpCmp || !orderedRel(sel.CmpRelation()) {
            continue
        }

        if ind := self.counter(sel.In(0), sel.In(1), sel.CmpRelation()); ind != nil {
            return ind
        }
        if ind := self.counter(sel.In(1), sel.In(0), sel.CmpRelation().Inversed()); ind != nil {
            return ind
        }
    }
    return nil
}

/* counter checks one operand assignment of the header comparison: phi
 * must be a header Phi whose single back edge carries exactly one
 * increment binop, and every other value involved must be a static base */
func (self *_LoopEnv) counter(phi *ir.Node, bound *ir.Node, rel ir.Relation) *_Induction {
    if phi.Op() != ir.OpPhi || phi.Block() != self.header {
        return nil
    }

    budget := 1
    if !self.isStaticBase(bound, &budget) {
        return nil
    }

    inc := phi.In(self.backs[0])
    switch inc.Op() {
        case ir.OpAdd, ir.OpSub, ir.OpMul:
        default:
            return nil
    }

    var step *ir.Node
    switch {
        case inc.In(0) == phi : step = inc.In(1)
        case inc.In(1) == phi : step = inc.In(0)
        default               : return nil
    }

    budget = 1
    if !self.isStaticBase(step, &budget) {
        return nil
    }

    for i := 0; i < phi.Arity(); i++ {
        if i == self.backs[0] {
            continue
        }
        budget = 1
        if !self.isStaticBase(phi.In(i), &budget) {
            return nil
        }
    }

    return &_Induction { phi: phi, inc: inc, step: step, bound: bound, rel: rel }
}

/* static bases: constants, converted bases, argument Projs, pure Loads
 * when no Store can interfere, Phis of bases crossing at most one back
 * edge, and anything defined outside the loop */
func (self *_LoopEnv) isStaticBase(n *ir.Node, backs *int) bool {
    switch n.Op() {
        case ir.OpConst:
            return true

        case ir.OpConv:
            return self.isStaticBase(n.In(0), backs)

        case ir.OpProj:
            return self.pureProj(n)

        case ir.OpPhi:
            for i := 0; i < n.Arity(); i++ {
                if self.inLoop(n) && self.l.Contains(ir.CFGPredBlock(n.Block(), i)) {
                    if *backs == 0 {
                        return false
                    }
                    *backs--
                    continue
                }
                if !self.isStaticBase(n.In(i), backs) {
                    return false
                }
            }
            return true

        default:
            return !self.inLoop(n)
    }
}

/* pureProj accepts Projs that bottom out at Start and results of Loads
 * outside the loop when the loop stores nothing */
func (self *_LoopEnv) pureProj(n *ir.Node) bool {
    pred := n.ProjPred()
    switch pred.Op() {
        case ir.OpStart : return true
        case ir.OpProj  : return self.pureProj(pred)
        case ir.OpLoad  : return !self.hasStore && !self.inLoop(pred)
        default         : return false
    }
}

func constInt(n *ir.Node) (int64, bool) {
    for n.Op() == ir.OpConv {
        n = n.In(0)
    }
    if n.Op() != ir.OpConst {
        return 0, false
    }
    return n.ConstValue().Int(), true
}

/* tripCount derives the static iteration count of a counted loop: a
 * constant start value on the single entry edge, a constant step and a
 * constant bound */
func (self *_LoopEnv) tripCount(ind *_Induction) (uint64, bool) {
    var init int64
    found := false

    for i := 0; i < ind.phi.Arity(); i++ {
        if i == self.backs[0] {
            continue
        }
        if found {
            return 0, false
        }
        v, ok := constInt(ind.phi.In(i))
        if !ok {
            return 0, false
        }
        init, found = v, true
    }
    if !found {
        return 0, false
    }

    step, ok := constInt(ind.step)
    if !ok {
        return 0, false
    }
    bound, ok := constInt(ind.bound)
    if !ok {
        return 0, false
    }

    switch ind.inc.Op() {
        case ir.OpAdd:
        case ir.OpSub: step = -step
        default: return 0, false
    }
    if step == 0 {
        return 0, false
    }

    var span int64
    switch {
        case step > 0 && ind.rel == ir.RelLess:
            span = bound - init
        case step > 0 && ind.rel == ir.RelLessEqual:
            span = bound - init + 1
        case step < 0 && ind.rel == ir.RelGreater:
            span, step = init - bound, -step
        case step < 0 && ind.rel == ir.RelGreaterEqual:
            span, step = init - bound + 1, -step
        default:
            return 0, false
    }

    if span <= 0 {
        return 0, false
    }
    return uint64((span + step - 1) / step), true
}
