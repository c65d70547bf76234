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
)

func (self *_Env) usersOf(n *ir.Node) []*ir.Node {
    var ret []*ir.Node
    for _, m := range self.g.Nodes() {
        for _, in := range m.Ins() {
            if in == n {
                ret = append(ret, m)
                break
            }
        }
    }
    return ret
}

func (self *_Env) phisOf(blk *ir.Node) []*ir.Node {
    var ret []*ir.Node
    for _, m := range self.g.Nodes() {
        if m.Op() == ir.OpPhi && m.Block() == blk {
            ret = append(ret, m)
        }
    }
    return ret
}

/* Cmp of doubleword operands. Equality and inequality become boolean
 * trees over the halves, with the zero comparison folded to a single test
 * of (low | high). Ordered relations are handled here only when the Cmp
 * has a non-Cond user; a Cmp feeding Conds exclusively is rewritten as
 * short-circuit control flow by lowerCond. */
func (self *_Env) lowerCmp(n *ir.Node) bool {
    if !self.isDoubleword(n.In(0).Mode()) {
        return true
    }

    a, oka := self.operand(n.In(0))
    b, okb := self.operand(n.In(1))
    if !oka || !okb {
        return false
    }

    rel := n.CmpRelation()

    if rel == ir.RelEqual || rel == ir.RelLessGreater {
        self.g.Exchange(n, self.equalityTree(n, a, b, rel))
        return true
    }

    /* leave pure Cond selectors for the control flow rewrite */
    users := self.usersOf(n)
    conds := 0
    for _, u := range users {
        if u.Op() == ir.OpCond {
            conds++
        }
    }
    if conds == len(users) && conds > 0 {
        return true
    }

    self.g.Exchange(n, self.orderedTree(n, a, b, rel))
    return true
}

func (self *_Env) equalityTree(n *ir.Node, a *_Entry, b *_Entry, rel ir.Relation) *ir.Node {
    g := self.g
    blk := n.Block()

    /* comparison against zero tests the union of the halves */
    if rhs := n.In(1); rhs.Op() == ir.OpConst && rhs.ConstValue().IsNull() {
        or := g.NewBinop(ir.OpOr, blk, a.low, a.high, self.lu)
        return g.NewCmp(blk, or, self.constZero(self.lu), rel)
    }

    cl := g.NewCmp(blk, a.low, b.low, rel)
    ch := g.NewCmp(blk, a.high, b.high, rel)

    if rel == ir.RelEqual {
        return g.NewBinop(ir.OpAnd, blk, cl, ch, ir.ModeB)
    } else {
        return g.NewBinop(ir.OpOr, blk, cl, ch, ir.ModeB)
    }
}

/* high REL high || (high == high && low rel low), the low comparison
 * unsigned */
func (self *_Env) orderedTree(n *ir.Node, a *_Entry, b *_Entry, rel ir.Relation) *ir.Node {
    g := self.g
    blk := n.Block()

    ch := g.NewCmp(blk, a.high, b.high, rel.WithoutEqual())
    eh := g.NewCmp(blk, a.high, b.high, ir.RelEqual)
    cl := g.NewCmp(blk, a.low, b.low, rel)

    and := g.NewBinop(ir.OpAnd, blk, eh, cl, ir.ModeB)
    return g.NewBinop(ir.OpOr, blk, ch, and, ir.ModeB)
}

/* Cond whose selector is an ordered Cmp of doubleword operands becomes a
 * three-test short-circuit cascade:
 *
 *     high REL'   -> taken
 *     high != rhs -> not taken
 *     low rel     -> decides
 *
 * The branch target Blocks gain one predecessor each; their Phis mirror
 * the duplicated edge. This rewrites control flow. */
func (self *_Env) lowerCond(n *ir.Node) bool {
    sel := n.In(0)

    if sel.Op() != ir.OpCmp || !self.isDoubleword(sel.In(0).Mode()) {
        return true
    }

    rel := sel.CmpRelation()
    if rel == ir.RelEqual || rel == ir.RelLessGreater {
        /* already rewritten into a boolean tree by lowerCmp */
        return true
    }

    a, oka := self.operand(sel.In(0))
    b, okb := self.operand(sel.In(1))
    if !oka || !okb {
        return false
    }

    g := self.g
    blk := n.Block()

    /* locate the branch Projs and their target edges */
    var pT, pF *ir.Node
    for _, p := range self.projsOf(n) {
        switch p.ProjNum() {
            case ir.PnCondTrue  : pT = p
            case ir.PnCondFalse : pF = p
            default             : unexpectedProj(p)
        }
    }
    if pT == nil || pF == nil {
        self.fatal("Cond %v lacks a branch Proj", n)
    }

    /* first test: strict relation of the high words */
    condH := g.NewCond(blk, g.NewCmp(blk, a.high, b.high, rel.WithoutEqual()))
    pHT := g.NewProj(condH, ir.ModeX, ir.PnCondTrue)
    pHF := g.NewProj(condH, ir.ModeX, ir.PnCondFalse)

    /* second test: are the high words equal at all */
    blkE := g.NewBlock([]*ir.Node { pHF })
    condE := g.NewCond(blkE, g.NewCmp(blkE, a.high, b.high, ir.RelEqual))
    pET := g.NewProj(condE, ir.ModeX, ir.PnCondTrue)
    pEF := g.NewProj(condE, ir.ModeX, ir.PnCondFalse)

    /* third test: the low words decide, unsigned */
    blkL := g.NewBlock([]*ir.Node { pET })
    condL := g.NewCond(blkL, g.NewCmp(blkL, a.low, b.low, rel))
    pLT := g.NewProj(condL, ir.ModeX, ir.PnCondTrue)
    pLF := g.NewProj(condL, ir.ModeX, ir.PnCondFalse)

    self.retargetBranch(pT, pHT, pLT)
    self.retargetBranch(pF, pEF, pLF)

    self.cf = true
    return true
}

/* retargetBranch replaces the original branch edge by the first new edge
 * and appends the second, keeping the target's Phis aligned. */
func (self *_Env) retargetBranch(orig *ir.Node, first *ir.Node, second *ir.Node) {
    for _, blk := range self.g.Blocks() {
        for i := 0; i < blk.Arity(); i++ {
            if blk.In(i) != orig {
                continue
            }

            blk.SetIn(i, first)
            blk.AddIn(second)

            for _, phi := range self.phisOf(blk) {
                phi.AddIn(phi.In(i))
            }
            return
        }
    }
}

/* Phi: one Phi per half with Dummy placeholders, finalized once every
 * input pair is resolved. The pair is published immediately so cycles
 * through back edges terminate. */
func (self *_Env) lowerPhi(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    g := self.g
    lo, hi := self.halfModes(n.Mode())

    lowIns := make([]*ir.Node, n.Arity())
    highIns := make([]*ir.Node, n.Arity())
    for i := range lowIns {
        lowIns[i] = g.NewDummy(lo)
        highIns[i] = g.NewDummy(hi)
    }

    low := g.NewPhi(n.Block(), lowIns, lo)
    high := g.NewPhi(n.Block(), highIns, hi)

    self.entries.set(n, low, high)
    self.phis = append(self.phis, n)
    return true
}

/* finalizePhis rewires the Dummy placeholders to the resolved pairs */
func (self *_Env) finalizePhis() {
    for _, n := range self.phis {
        e := self.entries.get(n)

        for i := 0; i < n.Arity(); i++ {
            in, ok := self.operand(n.In(i))
            if !ok {
                self.fatal("Phi %v input %d is not ready after drain", n, i)
            }
            e.low.SetIn(i, in.low)
            e.high.SetIn(i, in.high)
        }
    }
}

/* Mux: two Muxes sharing the selector */
func (self *_Env) lowerMux(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    f, okf := self.operand(n.In(1))
    t, okt := self.operand(n.In(2))
    if !okf || !okt {
        return false
    }

    g := self.g
    lo, hi := self.halfModes(n.Mode())
    sel := n.In(0)

    low := g.NewMux(n.Block(), sel, f.low, t.low, lo)
    high := g.NewMux(n.Block(), sel, f.high, t.high, hi)

    self.entries.set(n, low, high)
    return true
}
