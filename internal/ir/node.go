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

package ir

import (
    `fmt`
)

// Proj numbers of the tuple-mode producers. The number space of every
// opcode is stable across rewrites.
const (
    PnStartM     = 0
    PnStartTArgs = 1

    PnCallM       = 0
    PnCallTResult = 1
    PnCallXExcept = 2

    PnLoadM       = 0
    PnLoadRes     = 1
    PnLoadXExcept = 2

    PnStoreM       = 0
    PnStoreXExcept = 1

    PnCondFalse = 0
    PnCondTrue  = 1

    PnDivM   = 0
    PnDivRes = 1

    PnModM   = 0
    PnModRes = 1

    PnDivModM      = 0
    PnDivModResDiv = 1
    PnDivModResMod = 2
)

// Out is one cached def-use back-edge: user reads the origin node at input
// position Pos.
type Out struct {
    User *Node
    Pos  int
}

// Node is the uniform IR record. All nodes of a graph are identified by a
// dense integer index and allocated from the graph's arena; they are never
// freed individually.
type Node struct {
    idx     int
    op      Op
    mode    *Mode
    block   *Node
    graph   *Graph
    ins     []*Node
    outs    []Out
    visited uint64
    link    *Node
    pinned  bool
    attr    any
}

/* per-opcode attribute payloads */

type blockAttr struct {
    idom     *Node
    domDepth int
    loop     *Loop
    phis     []*Node
    mark     bool
}

type projAttr struct {
    num int
}

type cmpAttr struct {
    rel Relation
}

type callAttr struct {
    /* method type handle, owned by the types package */
    mtp any
}

type entAttr struct {
    /* entity handle, owned by the types package */
    ent any
}

type loadAttr struct {
    loaded *Mode
}

type storeAttr struct {
    stored *Mode
}

type memopAttr struct {
    /* result mode of Div, Mod and DivMod, whose own mode is T */
    res *Mode
}

type asmAttr struct {
    text string
}

func (self *Node) Idx() int      { return self.idx }
func (self *Node) Op() Op        { return self.op }
func (self *Node) Mode() *Mode   { return self.mode }
func (self *Node) Graph() *Graph { return self.graph }
func (self *Node) Pinned() bool  { return self.pinned }
func (self *Node) IsBad() bool   { return self.op == OpBad }
func (self *Node) IsBlock() bool { return self.op == OpBlock }

// Block returns the owning Block. Blocks own no Block and return nil.
func (self *Node) Block() *Node {
    return self.block
}

func (self *Node) SetBlock(b *Node) {
    if self.op == OpBlock {
        panic("ir: a Block owns no Block")
    }
    self.block = b
}

func (self *Node) Arity() int {
    return len(self.ins)
}

func (self *Node) In(i int) *Node {
    return self.ins[i]
}

// Ins returns the live input slice. Callers must not append to it.
func (self *Node) Ins() []*Node {
    return self.ins
}

// SetIn redirects input i to v, maintaining back-edges when the graph's
// outs are consistent.
func (self *Node) SetIn(i int, v *Node) {
    old := self.ins[i]
    self.ins[i] = v

    if self.graph.HasProperty(PropConsistentOuts) {
        if old != nil {
            old.removeOut(self, i)
        }
        if v != nil {
            v.outs = append(v.outs, Out { User: self, Pos: i })
        }
    }
}

// SetIns replaces the whole input list.
func (self *Node) SetIns(ins []*Node) {
    if self.graph.HasProperty(PropConsistentOuts) {
        for i, old := range self.ins {
            if old != nil {
                old.removeOut(self, i)
            }
        }
        for i, v := range ins {
            if v != nil {
                v.outs = append(v.outs, Out { User: self, Pos: i })
            }
        }
    }
    self.ins = ins
}

// AddIn appends a new input, growing the arity by one.
func (self *Node) AddIn(v *Node) {
    self.ins = append(self.ins, v)
    if self.graph.HasProperty(PropConsistentOuts) && v != nil {
        v.outs = append(v.outs, Out { User: self, Pos: len(self.ins) - 1 })
    }
}

func (self *Node) removeOut(user *Node, pos int) {
    for i, e := range self.outs {
        if e.User == user && e.Pos == pos {
            self.outs = append(self.outs[:i], self.outs[i+1:]...)
            return
        }
    }
}

// Outs returns the cached def-use edges. The slice is stale outside a
// consistent-outs region.
func (self *Node) Outs() []Out {
    return self.outs
}

func (self *Node) NumOuts() int {
    return len(self.outs)
}

/* link slot, valid only while the graph holds ResLink */

func (self *Node) Link() *Node {
    self.graph.checkReserved(ResLink)
    return self.link
}

func (self *Node) SetLink(v *Node) {
    self.graph.checkReserved(ResLink)
    self.link = v
}

/* attribute accessors */

func (self *Node) blockAttr() *blockAttr {
    if self.op != OpBlock {
        panic(fmt.Sprintf("ir: %s is not a Block", self))
    }
    return self.attr.(*blockAttr)
}

// ConstValue returns the tarval of a Const node.
func (self *Node) ConstValue() Tarval {
    if self.op != OpConst {
        panic(fmt.Sprintf("ir: %s is not a Const", self))
    }
    return self.attr.(Tarval)
}

// ProjNum returns the component selector of a Proj node.
func (self *Node) ProjNum() int {
    if self.op != OpProj {
        panic(fmt.Sprintf("ir: %s is not a Proj", self))
    }
    return self.attr.(*projAttr).num
}

func (self *Node) SetProjNum(n int) {
    self.attr.(*projAttr).num = n
}

// ProjPred is the tuple-mode producer the Proj selects from.
func (self *Node) ProjPred() *Node {
    if self.op != OpProj {
        panic(fmt.Sprintf("ir: %s is not a Proj", self))
    }
    return self.ins[0]
}

// CmpRelation returns the relation of a Cmp node.
func (self *Node) CmpRelation() Relation {
    return self.attr.(*cmpAttr).rel
}

// CallType returns the method type handle of a Call, Start or Return
// owner. The concrete type lives in the types package.
func (self *Node) CallType() any {
    return self.attr.(*callAttr).mtp
}

func (self *Node) SetCallType(mtp any) {
    self.attr.(*callAttr).mtp = mtp
}

// Entity returns the entity handle of an Address, SymConv or Sel node.
func (self *Node) Entity() any {
    return self.attr.(*entAttr).ent
}

func (self *Node) SetEntity(ent any) {
    self.attr.(*entAttr).ent = ent
}

// LoadMode is the mode of the value a Load produces.
func (self *Node) LoadMode() *Mode {
    return self.attr.(*loadAttr).loaded
}

// StoreMode is the mode of the value a Store consumes.
func (self *Node) StoreMode() *Mode {
    return self.attr.(*storeAttr).stored
}

// ResMode is the scalar result mode of a Div, Mod or DivMod node.
func (self *Node) ResMode() *Mode {
    return self.attr.(*memopAttr).res
}

/* Block accessors */

// IDom returns the immediate dominator Block, or nil for the start Block
// and for Blocks dominance was never computed for. The value is stale
// when dominance is not consistent.
func (self *Node) IDom() *Node {
    return self.blockAttr().idom
}

func (self *Node) DomDepth() int {
    return self.blockAttr().domDepth
}

// Loop returns the innermost loop containing this Block, if loop info is
// consistent.
func (self *Node) Loop() *Loop {
    return self.blockAttr().loop
}

// BlockPhis returns the Phi list of a Block, valid while ResPhiList is
// reserved.
func (self *Node) BlockPhis() []*Node {
    self.graph.checkReserved(ResPhiList)
    return self.blockAttr().phis
}

func (self *Node) AddBlockPhi(phi *Node) {
    self.graph.checkReserved(ResPhiList)
    a := self.blockAttr()
    a.phis = append(a.phis, phi)
}

func (self *Node) setBlockPhis(phis []*Node) {
    self.blockAttr().phis = phis
}

func (self *Node) String() string {
    if self.mode != nil {
        return fmt.Sprintf("%s:%d[%s]", self.op, self.idx, self.mode)
    } else {
        return fmt.Sprintf("%s:%d", self.op, self.idx)
    }
}

// OperationalMode is the mode the node computes with: for Cmp, Load,
// Store, Div, Mod and DivMod that is the mode of the data arguments or of
// the transported value, not the node's own mode (which may be T or b).
func (self *Node) OperationalMode() *Mode {
    switch self.op {
        case OpCmp                     : return self.ins[0].mode
        case OpLoad                    : return self.LoadMode()
        case OpStore                   : return self.StoreMode()
        case OpDiv, OpMod, OpDivMod    : return self.ResMode()
        default                        : return self.mode
    }
}
