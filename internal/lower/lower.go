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

    `github.com/bytedance/gopkg/util/gopool`
    `github.com/oleiade/lane`
    `tlog.app/go/errors`
    `tlog.app/go/tlog`

    `github.com/graphir/graphir/internal/ir`
    `github.com/graphir/graphir/internal/types`
)

// Params configures the double-word lowering.
type Params struct {
    // Bits is the doubleword width W; values of the signed and unsigned
    // modes of this width are split into half-width pairs.
    Bits uint

    // BigEndian selects the memory order of the two halves.
    BigEndian bool

    // Intrinsic provides the runtime emulation entity for (op, imode,
    // omode). Results are cached per triple.
    Intrinsic IntrinsicFactory

    // Log receives the per-graph debug counters. May be nil.
    Log *tlog.Logger
}

/* the (low, high) pair of a lowered value */
type _Entry struct {
    low  *ir.Node
    high *ir.Node
}

func (self *_Entry) ready() bool {
    return self != nil && self.low != nil
}

/* _EntryTable keys per-node pairs by the dense node index, growing by
 * 12.5% on overflow. */
type _EntryTable struct {
    tab []*_Entry
}

func (self *_EntryTable) grow(i int) {
    if i >= len(self.tab) {
        n := i + 1 + (i + 1) / 8
        tab := make([]*_Entry, n)
        copy(tab, self.tab)
        self.tab = tab
    }
}

func (self *_EntryTable) get(n *ir.Node) *_Entry {
    if n.Idx() < len(self.tab) {
        return self.tab[n.Idx()]
    } else {
        return nil
    }
}

func (self *_EntryTable) alloc(n *ir.Node) *_Entry {
    self.grow(n.Idx())
    if self.tab[n.Idx()] == nil {
        self.tab[n.Idx()] = new(_Entry)
    }
    return self.tab[n.Idx()]
}

func (self *_EntryTable) set(n *ir.Node, low *ir.Node, high *ir.Node) {
    e := self.alloc(n)
    e.low, e.high = low, high
}

/* abort values thrown across the internal walk, resolved to an error at
 * the API boundary */
type _Abort struct {
    err error
}

type _Env struct {
    g       *ir.Graph
    p       *Params
    hs      *ir.Mode
    hu      *ir.Mode
    ls      *ir.Mode
    lu      *ir.Mode
    entries _EntryTable
    deque   *lane.Deque
    phis    []*ir.Node
    order   []*ir.Node
    selDone map[*types.Entity]bool
    changed bool
    cf      bool
}

func (self *_Env) fatal(msg string, args ...any) {
    panic(_Abort { err: errors.New("lower: "+msg, args...) })
}

/* isDoubleword tests the operational mode of a value */
func (self *_Env) isDoubleword(m *ir.Mode) bool {
    return m == self.hs || m == self.hu
}

/* halfModes picks the pair modes for a doubleword mode: the low half is
 * always unsigned, the high half keeps the signedness */
func (self *_Env) halfModes(m *ir.Mode) (*ir.Mode, *ir.Mode) {
    if m == self.hs {
        return self.lu, self.ls
    } else {
        return self.lu, self.lu
    }
}

// LowerProgram lowers every graph of the program and the method types of
// all method entities. After it returns no node of any graph has an
// operational mode of the doubleword width.
func LowerProgram(prog *types.Program, p *Params) (err error) {
    if p.Bits == 0 || p.Bits % 2 != 0 {
        return errors.New("lower: invalid doubleword width %d", p.Bits)
    }

    defer func() {
        if r := recover(); r != nil {
            if a, ok := r.(_Abort); ok {
                err = a.err
            } else {
                panic(r)
            }
        }
    }()

    /* rewrite the method types of declared entities first, so external
     * methods observe the same signature as defined ones */
    prog.WalkTypes(nil, func(e *types.Entity) {
        if e.Kind() == types.EntMethod {
            e.SetType(LowerMethodType(e.Type(), p))
        }
    })

    /* graphs are independent once the shared caches are in place, so
     * they lower in parallel */
    var wg sync.WaitGroup
    var mu sync.Mutex
    var first error

    for _, g := range prog.Graphs() {
        g := g
        wg.Add(1)
        gopool.Go(func() {
            defer wg.Done()
            if err := LowerGraph(g, p); err != nil {
                mu.Lock()
                if first == nil {
                    first = errors.Wrap(err, "graph %v", g.Name())
                }
                mu.Unlock()
            }
        })
    }

    wg.Wait()
    return first
}

// LowerGraph lowers a single graph in place.
func LowerGraph(g *ir.Graph, p *Params) (err error) {
    defer func() {
        if r := recover(); r != nil {
            if a, ok := r.(_Abort); ok {
                err = a.err
            } else {
                panic(r)
            }
        }
    }()
    return lowerGraph(g, p)
}

func lowerGraph(g *ir.Graph, p *Params) error {
    env := &_Env {
        g     : g,
        p     : p,
        hs    : ir.IntMode(p.Bits, true),
        hu    : ir.IntMode(p.Bits, false),
        ls    : ir.IntMode(p.Bits / 2, true),
        lu    : ir.IntMode(p.Bits / 2, false),
        deque : lane.NewDeque(),
    }

    env.prepare()
    env.lowerAll()
    env.drain()
    env.finalizePhis()
    env.finalizeGraph()

    if p.Log != nil {
        p.Log.Printf("lower: graph %v: %d nodes visited, cf changed: %v", g.Name(), len(env.order), env.cf)
    }
    return nil
}

/* prepare walks the graph once, in post-order: it allocates the pair
 * entry of every doubleword producer, records the processing order, and
 * substitutes Rotl so later steps see only primitive shifts. */
func (self *_Env) prepare() {
    var rotls []*ir.Node

    /* the rewrite invalidates the edges anyway, do not maintain them */
    self.g.InvalidateOuts()

    self.g.Walk(nil, func(n *ir.Node) {
        self.order = append(self.order, n)

        if n.Op() == ir.OpRotl && self.isDoubleword(n.Mode()) {
            rotls = append(rotls, n)
        }
        if self.producesDoubleword(n) {
            self.entries.alloc(n)
        }
    })

    for _, n := range rotls {
        self.substituteRotl(n)
    }
}

/* producesDoubleword: the node's produced value (not necessarily its own
 * mode, which may be T) is a doubleword */
func (self *_Env) producesDoubleword(n *ir.Node) bool {
    switch n.Op() {
        case ir.OpLoad                       : return self.isDoubleword(n.LoadMode())
        case ir.OpDiv, ir.OpMod, ir.OpDivMod : return self.isDoubleword(n.ResMode())
        default                              : return self.isDoubleword(n.Mode())
    }
}

/* substituteRotl rewrites Rotl(x, c) as Or(Shl(x, c), Shr(x, W-c)). A
 * constant count gives a constant W-c, so the half-word rotation becomes
 * two shifts by W/2 that lowerShift turns into a swap of the halves with
 * zero remaining count. The replacement nodes are entered into the
 * lowering order. */
func (self *_Env) substituteRotl(n *ir.Node) {
    g := self.g
    blk := n.Block()
    x := n.In(0)
    c := n.In(1)

    w := g.NewConst(ir.MakeInt(c.Mode(), uint64(self.p.Bits)))
    var inv *ir.Node
    if c.Op() == ir.OpConst {
        inv = g.NewConst(ir.MakeInt(c.Mode(), uint64(self.p.Bits) - c.ConstValue().Uint()))
    } else {
        inv = g.NewBinop(ir.OpSub, blk, w, c, c.Mode())
    }
    shl := g.NewBinop(ir.OpShl, blk, x, c, n.Mode())
    shr := g.NewBinop(ir.OpShr, blk, x, inv, n.Mode())
    or := g.NewBinop(ir.OpOr, blk, shl, shr, n.Mode())

    g.Exchange(n, or)

    /* the new doubleword nodes need entries and a lowering slot */
    for _, m := range []*ir.Node { w, inv, shl, shr, or } {
        if self.producesDoubleword(m) {
            self.entries.alloc(m)
        }
        self.order = append(self.order, m)
    }
}

/* lowerAll runs the per-opcode lowering over the recorded post-order */
func (self *_Env) lowerAll() {
    for _, n := range self.order {
        if !self.lowerNode(n) {
            self.deque.Append(n)
        }
    }
}

/* drain re-attempts deferred nodes in FIFO order until the deque is
 * empty. A full round without progress is an internal invariant break. */
func (self *_Env) drain() {
    stall := 0

    for !self.deque.Empty() {
        n := self.deque.Shift().(*ir.Node)

        if self.lowerNode(n) {
            stall = 0
        } else {
            self.deque.Append(n)
            if stall++; stall > self.deque.Size() {
                self.fatal("node %v is not ready after drain", n)
            }
        }
    }
}

/* lowerNode dispatches one node. It returns false when an operand's pair
 * is not ready yet and the node must be retried. */
func (self *_Env) lowerNode(n *ir.Node) bool {
    switch n.Op() {
        case ir.OpConst   : return self.lowerConst(n)
        case ir.OpLoad    : return self.lowerLoad(n)
        case ir.OpStore   : return self.lowerStore(n)
        case ir.OpAdd     : return self.lowerBinopCall(n)
        case ir.OpSub     : return self.lowerBinopCall(n)
        case ir.OpMul     : return self.lowerBinopCall(n)
        case ir.OpDiv     : return self.lowerDivMod(n)
        case ir.OpMod     : return self.lowerDivMod(n)
        case ir.OpDivMod  : return self.lowerDivMod(n)
        case ir.OpAnd     : return self.lowerBitwise(n)
        case ir.OpOr      : return self.lowerBitwise(n)
        case ir.OpEor     : return self.lowerBitwise(n)
        case ir.OpNot     : return self.lowerNot(n)
        case ir.OpMinus   : return self.lowerMinus(n)
        case ir.OpShl     : return self.lowerShift(n)
        case ir.OpShr     : return self.lowerShift(n)
        case ir.OpShrs    : return self.lowerShift(n)
        case ir.OpConv    : return self.lowerConv(n)
        case ir.OpCond    : return self.lowerCond(n)
        case ir.OpCmp     : return self.lowerCmp(n)
        case ir.OpPhi     : return self.lowerPhi(n)
        case ir.OpMux     : return self.lowerMux(n)
        case ir.OpStart   : return self.lowerStart(n)
        case ir.OpCall    : return self.lowerCall(n)
        case ir.OpReturn  : return self.lowerReturn(n)
        case ir.OpSel     : return self.lowerSel(n)
        case ir.OpASM     : return self.lowerASM(n)
        case ir.OpBad     : return self.lowerLeaf(n)
        case ir.OpDummy   : return self.lowerLeaf(n)
        case ir.OpUnknown : return self.lowerLeaf(n)
        default           : return true
    }
}

/* Bad, Dummy and Unknown of doubleword mode split into a pair of the same
 * opcode */
func (self *_Env) lowerLeaf(n *ir.Node) bool {
    if !self.isDoubleword(n.Mode()) {
        return true
    }

    lo, hi := self.halfModes(n.Mode())
    switch n.Op() {
        case ir.OpBad     : self.entries.set(n, self.g.NewBad(lo), self.g.NewBad(hi))
        case ir.OpDummy   : self.entries.set(n, self.g.NewDummy(lo), self.g.NewDummy(hi))
        case ir.OpUnknown : self.entries.set(n, self.g.NewUnknown(lo), self.g.NewUnknown(hi))
    }
    return true
}

/* operand fetches the pair of a doubleword operand, or defers */
func (self *_Env) operand(n *ir.Node) (*_Entry, bool) {
    e := self.entries.get(n)
    if e.ready() {
        return e, true
    } else {
        return nil, false
    }
}

func (self *_Env) finalizeGraph() {
    g := self.g

    /* the graph signature follows the lowered method type */
    if mtp, ok := g.MethodType().(*types.Type); ok && mtp != nil {
        g.SetMethodType(LowerMethodType(mtp, self.p))
    }

    g.InvalidateOuts()
    if self.cf {
        g.InvalidateDominance()
        g.InvalidateLoopInfo()
        g.ClearProperty(ir.PropLCSSA)
    }
}

/* noMem returns a fresh memory placeholder for calls that do not touch
 * memory */
func (self *_Env) noMem() *ir.Node {
    return self.g.NewDummy(ir.ModeM)
}

func (self *_Env) projsOf(n *ir.Node) []*ir.Node {
    var ret []*ir.Node
    for _, m := range self.g.Nodes() {
        if m.Op() == ir.OpProj && m.ProjPred() == n {
            ret = append(ret, m)
        }
    }
    return ret
}

func (self *_Env) constZero(m *ir.Mode) *ir.Node {
    return self.g.NewConst(ir.MakeInt(m, 0))
}

func (self *_Env) constOf(m *ir.Mode, v uint64) *ir.Node {
    return self.g.NewConst(ir.MakeInt(m, v))
}

func unexpectedProj(n *ir.Node) {
    panic(fmt.Sprintf("lower: unexpected Proj %d of %v", n.ProjNum(), n.ProjPred()))
}
