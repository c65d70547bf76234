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

// Resource is a typed token for the per-node scratch state a pass may
// claim. Acquisition is non-reentrant.
type Resource uint8

const (
    ResLink Resource = 1 << iota
    ResVisited
    ResPhiList
)

func (self Resource) String() string {
    switch self {
        case ResLink    : return "link"
        case ResVisited : return "visited"
        case ResPhiList : return "phi-list"
        default         : return "resource?"
    }
}

// Property is a per-graph consistency flag asserted by analyses and
// cleared by passes that invalidate them.
type Property uint8

const (
    PropConsistentDominance Property = 1 << iota
    PropConsistentOuts
    PropConsistentLoopInfo
    PropNoBads
    PropLCSSA
)

// Graph owns all its nodes and the per-graph traversal and analysis state.
type Graph struct {
    name     string
    nodes    []*Node
    start    *Node
    end      *Node
    startBlk *Node
    endBlk   *Node
    noMem    *Node
    visited  uint64
    res      Resource
    props    Property
    loops    []*Loop

    /* owning method entity and its type, handles of the types package */
    ent any
    mtp any
}

// NewGraph creates an empty graph with its Start/End skeleton. The method
// type handle is stored for the Start/Return lowering to consult.
func NewGraph(name string, mtp any) *Graph {
    g := &Graph { name: name, mtp: mtp }

    g.startBlk = g.NewBlock(nil)
    g.endBlk   = g.NewBlock(nil)
    g.start    = g.newNode(OpStart, g.startBlk, ModeT, nil, &callAttr { mtp: mtp })
    g.end      = g.newNode(OpEnd, g.endBlk, ModeX, nil, nil)

    return g
}

func (self *Graph) Name() string     { return self.name }
func (self *Graph) Start() *Node     { return self.start }
func (self *Graph) End() *Node       { return self.end }
func (self *Graph) StartBlock() *Node { return self.startBlk }
func (self *Graph) EndBlock() *Node  { return self.endBlk }

// MethodType returns the method type handle the graph was created with.
func (self *Graph) MethodType() any     { return self.mtp }
func (self *Graph) SetMethodType(t any) { self.mtp = t }

// Entity returns the owning method entity handle.
func (self *Graph) Entity() any     { return self.ent }
func (self *Graph) SetEntity(e any) { self.ent = e }

// NodeCount is the exclusive upper bound of the dense node index space.
func (self *Graph) NodeCount() int {
    return len(self.nodes)
}

// Nodes returns the arena slice, including nodes that became unreachable.
func (self *Graph) Nodes() []*Node {
    return self.nodes
}

/* resource tokens */

// Reserve claims a scratch resource. Claiming an already-held token is a
// programming error.
func (self *Graph) Reserve(r Resource) {
    if self.res & r != 0 {
        panic(fmt.Sprintf("ir: resource %s is already reserved", r))
    }
    self.res |= r

    switch r {
        case ResLink:
            for _, n := range self.nodes {
                n.link = nil
            }
        case ResPhiList:
            for _, n := range self.nodes {
                if n.op == OpBlock {
                    n.setBlockPhis(nil)
                }
            }
    }
}

// Free releases a previously reserved resource.
func (self *Graph) Free(r Resource) {
    if self.res & r == 0 {
        panic(fmt.Sprintf("ir: resource %s is not reserved", r))
    }
    self.res &^= r
}

func (self *Graph) checkReserved(r Resource) {
    if self.res & r == 0 {
        panic(fmt.Sprintf("ir: resource %s is used without being reserved", r))
    }
}

/* property flags */

func (self *Graph) HasProperty(p Property) bool {
    return self.props & p == p
}

func (self *Graph) SetProperty(p Property) {
    self.props |= p
}

func (self *Graph) ClearProperty(p Property) {
    self.props &^= p
}

/* visited counter */

// IncVisited starts a new mark generation.
func (self *Graph) IncVisited() {
    self.visited++
}

func (self *Graph) Visited() uint64 {
    return self.visited
}

// MarkVisited marks n in the current generation.
func (self *Graph) MarkVisited(n *Node) {
    n.visited = self.visited
}

// IsVisited tests n against the current generation.
func (self *Graph) IsVisited(n *Node) bool {
    return n.visited >= self.visited
}

/* node construction */

func (self *Graph) newNode(op Op, block *Node, mode *Mode, ins []*Node, attr any) *Node {
    n := &Node {
        idx   : len(self.nodes),
        op    : op,
        mode  : mode,
        block : block,
        graph : self,
        ins   : ins,
        attr  : attr,
    }

    self.nodes = append(self.nodes, n)

    if self.HasProperty(PropConsistentOuts) {
        for i, v := range ins {
            if v != nil {
                v.outs = append(v.outs, Out { User: n, Pos: i })
            }
        }
    }
    return n
}

// NewNode creates a node of an arbitrary opcode. The specialized
// constructors below are preferred where they exist.
func (self *Graph) NewNode(op Op, block *Node, mode *Mode, ins []*Node, attr any) *Node {
    return self.newNode(op, block, mode, ins, attr)
}

// NewBlock creates a Block whose inputs are the incoming control flows.
func (self *Graph) NewBlock(preds []*Node) *Node {
    return self.newNode(OpBlock, nil, ModeX, preds, &blockAttr{})
}

// NewPhi creates a Phi in block. Its arity must equal the Block arity.
func (self *Graph) NewPhi(block *Node, ins []*Node, mode *Mode) *Node {
    if len(ins) != block.Arity() {
        panic(fmt.Sprintf("ir: Phi arity %d does not match Block arity %d", len(ins), block.Arity()))
    }
    return self.newNode(OpPhi, block, mode, ins, nil)
}

// NewConst creates a Const in the start Block.
func (self *Graph) NewConst(v Tarval) *Node {
    return self.newNode(OpConst, self.startBlk, v.Mode(), nil, v)
}

func (self *Graph) NewProj(pred *Node, mode *Mode, num int) *Node {
    return self.newNode(OpProj, pred.Block(), mode, []*Node { pred }, &projAttr { num: num })
}

func (self *Graph) NewJmp(block *Node) *Node {
    return self.newNode(OpJmp, block, ModeX, nil, nil)
}

func (self *Graph) NewReturn(block *Node, mem *Node, results []*Node) *Node {
    ins := append([]*Node { mem }, results...)
    return self.newNode(OpReturn, block, ModeX, ins, nil)
}

// NewCall creates a Call of the given method type handle. Inputs are the
// memory chain, the callee address and the arguments.
func (self *Graph) NewCall(block *Node, mem *Node, callee *Node, args []*Node, mtp any) *Node {
    ins := append([]*Node { mem, callee }, args...)
    return self.newNode(OpCall, block, ModeT, ins, &callAttr { mtp: mtp })
}

// NewSymConv creates the address of an entity, used as a Call target.
func (self *Graph) NewSymConv(ent any) *Node {
    return self.newNode(OpSymConv, self.startBlk, ModeP, nil, &entAttr { ent: ent })
}

// NewAddress creates the address of an entity.
func (self *Graph) NewAddress(ent any) *Node {
    return self.newNode(OpAddress, self.startBlk, ModeP, nil, &entAttr { ent: ent })
}

func (self *Graph) NewLoad(block *Node, mem *Node, ptr *Node, loaded *Mode) *Node {
    return self.newNode(OpLoad, block, ModeT, []*Node { mem, ptr }, &loadAttr { loaded: loaded })
}

func (self *Graph) NewStore(block *Node, mem *Node, ptr *Node, val *Node) *Node {
    return self.newNode(OpStore, block, ModeT, []*Node { mem, ptr, val }, &storeAttr { stored: val.Mode() })
}

// NewBinop creates a two-operand data node of the given opcode.
func (self *Graph) NewBinop(op Op, block *Node, l *Node, r *Node, mode *Mode) *Node {
    if !op.IsBinop() {
        panic(fmt.Sprintf("ir: %s is not a binop", op))
    }
    return self.newNode(op, block, mode, []*Node { l, r }, nil)
}

// NewDiv creates a division routed through memory; its results are
// observed via Projs.
func (self *Graph) NewDiv(block *Node, mem *Node, l *Node, r *Node, res *Mode) *Node {
    return self.newNode(OpDiv, block, ModeT, []*Node { mem, l, r }, &memopAttr { res: res })
}

func (self *Graph) NewMod(block *Node, mem *Node, l *Node, r *Node, res *Mode) *Node {
    return self.newNode(OpMod, block, ModeT, []*Node { mem, l, r }, &memopAttr { res: res })
}

func (self *Graph) NewDivMod(block *Node, mem *Node, l *Node, r *Node, res *Mode) *Node {
    return self.newNode(OpDivMod, block, ModeT, []*Node { mem, l, r }, &memopAttr { res: res })
}

func (self *Graph) NewNot(block *Node, x *Node) *Node {
    return self.newNode(OpNot, block, x.Mode(), []*Node { x }, nil)
}

func (self *Graph) NewMinus(block *Node, x *Node) *Node {
    return self.newNode(OpMinus, block, x.Mode(), []*Node { x }, nil)
}

func (self *Graph) NewConv(block *Node, x *Node, to *Mode) *Node {
    return self.newNode(OpConv, block, to, []*Node { x }, nil)
}

func (self *Graph) NewCmp(block *Node, l *Node, r *Node, rel Relation) *Node {
    return self.newNode(OpCmp, block, ModeB, []*Node { l, r }, &cmpAttr { rel: rel })
}

func (self *Graph) NewCond(block *Node, sel *Node) *Node {
    return self.newNode(OpCond, block, ModeT, []*Node { sel }, nil)
}

func (self *Graph) NewMux(block *Node, sel *Node, f *Node, t *Node, mode *Mode) *Node {
    return self.newNode(OpMux, block, mode, []*Node { sel, f, t }, nil)
}

func (self *Graph) NewSel(block *Node, ptr *Node, ent any) *Node {
    return self.newNode(OpSel, block, ModeP, []*Node { ptr }, &entAttr { ent: ent })
}

func (self *Graph) NewSync(block *Node, mems []*Node) *Node {
    return self.newNode(OpSync, block, ModeM, mems, nil)
}

func (self *Graph) NewDummy(mode *Mode) *Node {
    return self.newNode(OpDummy, self.startBlk, mode, nil, nil)
}

func (self *Graph) NewUnknown(mode *Mode) *Node {
    return self.newNode(OpUnknown, self.startBlk, mode, nil, nil)
}

func (self *Graph) NewBad(mode *Mode) *Node {
    return self.newNode(OpBad, self.startBlk, mode, nil, nil)
}

func (self *Graph) NewASM(block *Node, mem *Node, args []*Node, text string) *Node {
    ins := append([]*Node { mem }, args...)
    return self.newNode(OpASM, block, ModeT, ins, &asmAttr { text: text })
}

// CloneNode creates a copy of n: same opcode, mode, Block, inputs and
// attributes. Analysis annotations of a Block (dominance, loop, Phi list)
// are not carried over.
func (self *Graph) CloneNode(n *Node) *Node {
    return self.newNode(n.op, n.block, n.mode, append([]*Node(nil), n.ins...), cloneAttr(n.attr))
}

func cloneAttr(attr any) any {
    switch a := attr.(type) {
        case *blockAttr : return &blockAttr{}
        case *projAttr  : v := *a; return &v
        case *cmpAttr   : v := *a; return &v
        case *callAttr  : v := *a; return &v
        case *entAttr   : v := *a; return &v
        case *loadAttr  : v := *a; return &v
        case *storeAttr : v := *a; return &v
        case *memopAttr : v := *a; return &v
        case *asmAttr   : v := *a; return &v
        default         : return attr
    }
}

/* keep-alives */

// KeepAlive adds a keep-alive edge from End, preventing n from being
// dropped by reachability walks.
func (self *Graph) KeepAlive(n *Node) {
    for _, k := range self.end.ins {
        if k == n {
            return
        }
    }
    self.end.AddIn(n)
}

// KeepAlives returns End's keep-alive list.
func (self *Graph) KeepAlives() []*Node {
    return self.end.ins
}

// Exchange replaces every use of a by b; a becomes unreachable. The
// identity of a is not reused.
func (self *Graph) Exchange(a *Node, b *Node) {
    if a == b {
        return
    }

    if self.HasProperty(PropConsistentOuts) {
        /* reroute the cached users */
        outs := a.outs
        a.outs = nil

        for _, e := range outs {
            e.User.ins[e.Pos] = b
            b.outs = append(b.outs, e)
        }
    } else {
        /* dense scan of the arena */
        for _, n := range self.nodes {
            for i, v := range n.ins {
                if v == a {
                    n.ins[i] = b
                }
            }
        }
    }
}
