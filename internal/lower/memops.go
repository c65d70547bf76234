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

/* halfOffset is the byte distance between the two half words in memory */
func (self *_Env) halfOffset() uint64 {
    return uint64(self.p.Bits / 16)
}

/* addrPlus builds address + off */
func (self *_Env) addrPlus(blk *ir.Node, addr *ir.Node, off uint64) *ir.Node {
    c := self.g.NewConst(ir.MakeInt(ir.ModeP, off))
    return self.g.NewBinop(ir.OpAdd, blk, addr, c, ir.ModeP)
}

/* Load: two loads share the memory chain. The half at the lower address
 * is the low word for little-endian layouts and the high word otherwise.
 * The memory Proj moves to the second load, the result Proj fans out into
 * the two half Projs, an exception Proj stays on the first load. */
func (self *_Env) lowerLoad(n *ir.Node) bool {
    if !self.isDoubleword(n.LoadMode()) {
        return true
    }

    g := self.g
    blk := n.Block()
    mem := n.In(0)
    ptr := n.In(1)
    lo, hi := self.halfModes(n.LoadMode())

    m0, m1 := lo, hi
    if self.p.BigEndian {
        m0, m1 = hi, lo
    }

    load1 := g.NewLoad(blk, mem, ptr, m0)
    mid := g.NewProj(load1, ir.ModeM, ir.PnLoadM)
    load2 := g.NewLoad(blk, mid, self.addrPlus(blk, ptr, self.halfOffset()), m1)

    res1 := g.NewProj(load1, m0, ir.PnLoadRes)
    res2 := g.NewProj(load2, m1, ir.PnLoadRes)

    low, high := res1, res2
    if self.p.BigEndian {
        low, high = res2, res1
    }

    for _, p := range self.projsOf(n) {
        switch p.ProjNum() {
            case ir.PnLoadM:
                g.Exchange(p, g.NewProj(load2, ir.ModeM, ir.PnLoadM))
            case ir.PnLoadRes:
                self.entries.set(p, low, high)
            case ir.PnLoadXExcept:
                g.Exchange(p, g.NewProj(load1, ir.ModeX, ir.PnLoadXExcept))
            default:
                unexpectedProj(p)
        }
    }
    return true
}

/* Store: two dependent stores. The memory Proj moves to the second store,
 * an exception Proj stays on the first. */
func (self *_Env) lowerStore(n *ir.Node) bool {
    if !self.isDoubleword(n.StoreMode()) {
        return true
    }

    val, ok := self.operand(n.In(2))
    if !ok {
        return false
    }

    g := self.g
    blk := n.Block()
    mem := n.In(0)
    ptr := n.In(1)

    v0, v1 := val.low, val.high
    if self.p.BigEndian {
        v0, v1 = val.high, val.low
    }

    store1 := g.NewStore(blk, mem, ptr, v0)
    mid := g.NewProj(store1, ir.ModeM, ir.PnStoreM)
    store2 := g.NewStore(blk, mid, self.addrPlus(blk, ptr, self.halfOffset()), v1)

    for _, p := range self.projsOf(n) {
        switch p.ProjNum() {
            case ir.PnStoreM:
                g.Exchange(p, g.NewProj(store2, ir.ModeM, ir.PnStoreM))
            case ir.PnStoreXExcept:
                g.Exchange(p, g.NewProj(store1, ir.ModeX, ir.PnStoreXExcept))
            default:
                unexpectedProj(p)
        }
    }
    return true
}

/* Div, Mod and DivMod are routed through memory. The combined DivMod form
 * emits one or two calls depending on which result Projs are observed. */
func (self *_Env) lowerDivMod(n *ir.Node) bool {
    if !self.isDoubleword(n.ResMode()) {
        return true
    }

    a, oka := self.operand(n.In(1))
    b, okb := self.operand(n.In(2))
    if !oka || !okb {
        return false
    }

    switch n.Op() {
        case ir.OpDiv    : self.emitDivCall(n, ir.OpDiv, a, b, ir.PnDivRes)
        case ir.OpMod    : self.emitDivCall(n, ir.OpMod, a, b, ir.PnModRes)
        case ir.OpDivMod : self.emitDivModCalls(n, a, b)
        default          : panic("unreachable")
    }
    return true
}

func (self *_Env) emitDivCall(n *ir.Node, op ir.Op, a *_Entry, b *_Entry, resPn int) {
    g := self.g
    blk := n.Block()
    mode := n.ResMode()
    lo, hi := self.halfModes(mode)

    ent := self.intrinsic(op, mode, mode)
    sym := g.NewSymConv(ent)
    call := g.NewCall(blk, n.In(0), sym, []*ir.Node { a.low, a.high, b.low, b.high }, self.intrinsicType(op, mode))
    tres := g.NewProj(call, ir.ModeT, ir.PnCallTResult)

    low := g.NewProj(tres, lo, 0)
    high := g.NewProj(tres, hi, 1)

    for _, p := range self.projsOf(n) {
        switch p.ProjNum() {
            case ir.PnDivM:
                g.Exchange(p, g.NewProj(call, ir.ModeM, ir.PnCallM))
            case resPn:
                self.entries.set(p, low, high)
            default:
                unexpectedProj(p)
        }
    }
}

func (self *_Env) emitDivModCalls(n *ir.Node, a *_Entry, b *_Entry) {
    g := self.g
    blk := n.Block()
    mode := n.ResMode()
    lo, hi := self.halfModes(mode)
    projs := self.projsOf(n)

    hasDiv, hasMod := false, false
    for _, p := range projs {
        switch p.ProjNum() {
            case ir.PnDivModResDiv : hasDiv = true
            case ir.PnDivModResMod : hasMod = true
        }
    }

    make1 := func(op ir.Op) (*ir.Node, *ir.Node, *ir.Node) {
        ent := self.intrinsic(op, mode, mode)
        sym := g.NewSymConv(ent)
        call := g.NewCall(blk, n.In(0), sym, []*ir.Node { a.low, a.high, b.low, b.high }, self.intrinsicType(op, mode))
        tres := g.NewProj(call, ir.ModeT, ir.PnCallTResult)
        return call, g.NewProj(tres, lo, 0), g.NewProj(tres, hi, 1)
    }

    var divCall, modCall *ir.Node
    var divLow, divHigh, modLow, modHigh *ir.Node

    if hasDiv || !hasMod {
        divCall, divLow, divHigh = make1(ir.OpDiv)
    }
    if hasMod {
        modCall, modLow, modHigh = make1(ir.OpMod)
    }

    /* the memory result joins both calls when both exist */
    memOf := func() *ir.Node {
        switch {
            case divCall != nil && modCall != nil:
                m1 := g.NewProj(divCall, ir.ModeM, ir.PnCallM)
                m2 := g.NewProj(modCall, ir.ModeM, ir.PnCallM)
                return g.NewSync(blk, []*ir.Node { m1, m2 })
            case modCall != nil:
                return g.NewProj(modCall, ir.ModeM, ir.PnCallM)
            default:
                return g.NewProj(divCall, ir.ModeM, ir.PnCallM)
        }
    }

    for _, p := range projs {
        switch p.ProjNum() {
            case ir.PnDivModM:
                g.Exchange(p, memOf())
            case ir.PnDivModResDiv:
                self.entries.set(p, divLow, divHigh)
            case ir.PnDivModResMod:
                self.entries.set(p, modLow, modHigh)
            default:
                unexpectedProj(p)
        }
    }
}
