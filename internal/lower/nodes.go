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

/* Const: split the tarval. The low half is the truncation to the unsigned
 * half mode; the high half is the arithmetic shift by W/2, sign-extended
 * for signed values. */
func (self *_Env) lowerConst(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    tv := n.ConstValue()
    lo, hi := self.halfModes(n.Mode())

    shift := ir.MakeInt(n.Mode(), uint64(self.p.Bits / 2))
    low := self.g.NewConst(tv.Convert(lo))
    high := self.g.NewConst(tv.Shrs(shift).Convert(hi))

    self.entries.set(n, low, high)
    return true
}

/* Add, Sub and Mul become calls to runtime intrinsics with the
 * signature (lo_a, hi_a, lo_b, hi_b) -> (lo_r, hi_r). */
func (self *_Env) lowerBinopCall(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    a, oka := self.operand(n.In(0))
    b, okb := self.operand(n.In(1))
    if !oka || !okb {
        return false
    }

    lo, hi := self.halfModes(n.Mode())
    ent := self.intrinsic(n.Op(), n.Mode(), n.Mode())

    sym := self.g.NewSymConv(ent)
    call := self.g.NewCall(n.Block(), self.noMem(), sym, []*ir.Node { a.low, a.high, b.low, b.high }, self.intrinsicType(n.Op(), n.Mode()))
    tres := self.g.NewProj(call, ir.ModeT, ir.PnCallTResult)

    low := self.g.NewProj(tres, lo, 0)
    high := self.g.NewProj(tres, hi, 1)

    self.entries.set(n, low, high)
    return true
}

/* And, Or, Eor work on each half independently, no runtime call */
func (self *_Env) lowerBitwise(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    a, oka := self.operand(n.In(0))
    b, okb := self.operand(n.In(1))
    if !oka || !okb {
        return false
    }

    lo, hi := self.halfModes(n.Mode())
    low := self.g.NewBinop(n.Op(), n.Block(), a.low, b.low, lo)
    high := self.g.NewBinop(n.Op(), n.Block(), a.high, b.high, hi)

    self.entries.set(n, low, high)
    return true
}

func (self *_Env) lowerNot(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    a, ok := self.operand(n.In(0))
    if !ok {
        return false
    }

    self.entries.set(n, self.g.NewNot(n.Block(), a.low), self.g.NewNot(n.Block(), a.high))
    return true
}

func (self *_Env) lowerMinus(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    a, ok := self.operand(n.In(0))
    if !ok {
        return false
    }

    lo, hi := self.halfModes(n.Mode())
    ent := self.intrinsic(ir.OpMinus, n.Mode(), n.Mode())

    sym := self.g.NewSymConv(ent)
    call := self.g.NewCall(n.Block(), self.noMem(), sym, []*ir.Node { a.low, a.high }, self.intrinsicType(ir.OpMinus, n.Mode()))
    tres := self.g.NewProj(call, ir.ModeT, ir.PnCallTResult)

    self.entries.set(n, self.g.NewProj(tres, lo, 0), self.g.NewProj(tres, hi, 1))
    return true
}

/* Shl, Shr, Shrs: a constant count of at least W/2 folds into a shift of
 * the other half; anything else goes through the runtime intrinsic
 * (lo, hi, count) -> (lo_r, hi_r). */
func (self *_Env) lowerShift(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    a, ok := self.operand(n.In(0))
    if !ok {
        return false
    }

    cnt := n.In(1)
    half := uint64(self.p.Bits / 2)

    if cnt.Op() == ir.OpConst && cnt.ConstValue().Uint() >= half {
        self.lowerShiftConst(n, a, cnt.ConstValue().Uint() - half)
        return true
    }

    lo, hi := self.halfModes(n.Mode())
    ent := self.intrinsic(n.Op(), n.Mode(), n.Mode())

    sym := self.g.NewSymConv(ent)
    call := self.g.NewCall(n.Block(), self.noMem(), sym, []*ir.Node { a.low, a.high, cnt }, self.intrinsicType(n.Op(), n.Mode()))
    tres := self.g.NewProj(call, ir.ModeT, ir.PnCallTResult)

    self.entries.set(n, self.g.NewProj(tres, lo, 0), self.g.NewProj(tres, hi, 1))
    return true
}

/* the count was >= W/2: every bit crosses the half boundary */
func (self *_Env) lowerShiftConst(n *ir.Node, a *_Entry, rest uint64) {
    g := self.g
    blk := n.Block()
    lo, hi := self.halfModes(n.Mode())

    switch n.Op() {
        case ir.OpShl:
            /* low bits all shifted out; the high half is the shifted low half */
            src := g.NewConv(blk, a.low, hi)
            high := src
            if rest != 0 {
                high = g.NewBinop(ir.OpShl, blk, src, self.constOf(self.lu, rest), hi)
            }
            self.entries.set(n, self.constZero(lo), high)

        case ir.OpShr:
            /* high bits all shifted out; the low half is the shifted high half */
            src := g.NewConv(blk, a.high, lo)
            low := src
            if rest != 0 {
                low = g.NewBinop(ir.OpShr, blk, src, self.constOf(self.lu, rest), lo)
            }
            self.entries.set(n, low, self.constZero(hi))

        case ir.OpShrs:
            /* the high half collapses to a sign broadcast */
            low := g.NewBinop(ir.OpShrs, blk, a.high, self.constOf(self.lu, rest), hi)
            high := g.NewBinop(ir.OpShrs, blk, a.high, self.constOf(self.lu, uint64(self.p.Bits / 2 - 1)), hi)
            self.entries.set(n, g.NewConv(blk, low, lo), high)

        default:
            panic("unreachable")
    }
}

/* Conv covers four directions: small int to doubleword, doubleword to
 * small int, doubleword to boolean, and the float crossings which go
 * through intrinsics. */
func (self *_Env) lowerConv(n *ir.Node) bool {
    src := n.In(0)

    switch {
        case self.isDoubleword(n.Mode()) && src.Mode().IsFloat():
            return self.lowerConvIntrinsic(n, src)

        case self.isDoubleword(n.Mode()):
            return self.lowerConvTo(n, src)

        case self.isDoubleword(src.Mode()) && n.Mode().IsFloat():
            return self.lowerConvIntrinsic(n, src)

        case self.isDoubleword(src.Mode()):
            return self.lowerConvFrom(n, src)

        default:
            return true
    }
}

func (self *_Env) lowerConvTo(n *ir.Node, src *ir.Node) bool {
    g := self.g
    blk := n.Block()
    lo, hi := self.halfModes(n.Mode())

    low := g.NewConv(blk, src, lo)

    var high *ir.Node
    if src.Mode().Signed() {
        /* broadcast the sign bit of the low half */
        signed := g.NewConv(blk, src, self.ls)
        high = g.NewBinop(ir.OpShrs, blk, signed, self.constOf(self.lu, uint64(self.p.Bits / 2 - 1)), hi)
    } else {
        high = self.constZero(hi)
    }

    self.entries.set(n, low, high)
    return true
}

func (self *_Env) lowerConvFrom(n *ir.Node, src *ir.Node) bool {
    a, ok := self.operand(src)
    if !ok {
        return false
    }

    g := self.g
    blk := n.Block()

    if n.Mode() == ir.ModeB {
        /* zero test of both halves */
        or := g.NewBinop(ir.OpOr, blk, a.low, a.high, self.lu)
        cmp := g.NewCmp(blk, or, self.constZero(self.lu), ir.RelLessGreater)
        g.Exchange(n, cmp)
    } else {
        /* narrowing keeps the low half */
        g.Exchange(n, g.NewConv(blk, a.low, n.Mode()))
    }
    return true
}

func (self *_Env) lowerConvIntrinsic(n *ir.Node, src *ir.Node) bool {
    g := self.g
    blk := n.Block()

    if self.isDoubleword(n.Mode()) {
        /* float -> doubleword */
        lo, hi := self.halfModes(n.Mode())
        ent := self.intrinsic(ir.OpConv, src.Mode(), n.Mode())

        sym := g.NewSymConv(ent)
        call := g.NewCall(blk, self.noMem(), sym, []*ir.Node { src }, ent.Type())
        tres := g.NewProj(call, ir.ModeT, ir.PnCallTResult)

        self.entries.set(n, g.NewProj(tres, lo, 0), g.NewProj(tres, hi, 1))
        return true
    }

    /* doubleword -> float */
    a, ok := self.operand(src)
    if !ok {
        return false
    }

    ent := self.intrinsic(ir.OpConv, src.Mode(), n.Mode())
    sym := g.NewSymConv(ent)
    call := g.NewCall(blk, self.noMem(), sym, []*ir.Node { a.low, a.high }, ent.Type())
    tres := g.NewProj(call, ir.ModeT, ir.PnCallTResult)

    g.Exchange(n, g.NewProj(tres, n.Mode(), 0))
    return true
}

/* ASM cannot transport doubleword values */
func (self *_Env) lowerASM(n *ir.Node) bool {
    for _, in := range n.Ins() {
        if in != nil && self.isDoubleword(in.Mode()) {
            self.fatal("ASM node %v has a doubleword operand", n)
        }
    }
    for _, p := range self.projsOf(n) {
        if self.isDoubleword(p.Mode()) {
            self.fatal("ASM node %v has a doubleword result", n)
        }
    }
    return true
}
