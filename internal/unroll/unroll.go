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
    `tlog.app/go/errors`
    `tlog.app/go/tlog`

    `github.com/graphir/graphir/internal/ir`
)

// Params configures the loop unrolling.
type Params struct {
    // Factor is the maximum unroll factor. Values below 2 disable the
    // pass.
    Factor uint

    // MaxSize caps the node count of an unrollable loop. Zero or
    // negative means no cap.
    MaxSize int

    // Log receives the per-graph debug counters. May be nil.
    Log *tlog.Logger
}

// UnrollLoops unrolls the innermost loops of a graph in place and
// returns the number of loops that were rewritten. The graph is brought
// into LCSSA form first; dominance and loop info are invalidated when
// anything changed.
func UnrollLoops(g *ir.Graph, p *Params) (int, error) {
    if p.Factor < 2 {
        return 0, nil
    }

    g.AssureOuts()
    g.AssureDominance()
    g.AssureLoopInfo()
    g.AssureLCSSA()

    for _, n := range g.Nodes() {
        if n.IsBad() {
            return 0, errors.New("unroll: graph %v contains Bad nodes", g.Name())
        }
    }
    g.SetProperty(ir.PropNoBads)

    g.Reserve(ir.ResLink)
    defer g.Free(ir.ResLink)

    done := 0
    for _, l := range g.InnermostLoops() {
        if env := newLoopEnv(g, l, p); env != nil && env.unroll() {
            done++
        }
    }

    if done > 0 {
        g.InvalidateDominance()
        g.InvalidateLoopInfo()
    }

    if p.Log != nil {
        p.Log.Printf("unroll: graph %v: %d loops unrolled", g.Name(), done)
    }
    return done, nil
}

type _LoopEnv struct {
    g          *ir.Graph
    p          *Params
    l          *ir.Loop
    header     *ir.Node
    blocks     []*ir.Node
    all        []*ir.Node
    nodes      map[*ir.Node][]*ir.Node
    backs      []int
    backJmps   []*ir.Node
    headerPhis []*ir.Node
    phiBacks   map[*ir.Node][]*ir.Node
    copied     map[*ir.Node]bool
    hasCall    bool
    hasStore   bool
}

/* findHeader walks up the immediate dominator chain from any member
 * Block while still inside the loop; the candidate must dominate every
 * member Block */
func findHeader(g *ir.Graph, l *ir.Loop) *ir.Node {
    blocks := l.AllBlocks()
    if len(blocks) == 0 {
        return nil
    }

    cand := blocks[0]
    for {
        id := cand.IDom()
        if id == nil || !l.Contains(id) {
            break
        }
        cand = id
    }

    for _, b := range blocks {
        if !g.BlockDominates(cand, b) {
            return nil
        }
    }
    return cand
}

func newLoopEnv(g *ir.Graph, l *ir.Loop, p *Params) *_LoopEnv {
    header := findHeader(g, l)
    if header == nil {
        return nil
    }

    self := &_LoopEnv {
        g        : g,
        p        : p,
        l        : l,
        header   : header,
        blocks   : l.AllBlocks(),
        nodes    : make(map[*ir.Node][]*ir.Node),
        phiBacks : make(map[*ir.Node][]*ir.Node),
        copied   : make(map[*ir.Node]bool),
    }

    /* group the member nodes by their Block */
    for _, n := range g.Nodes() {
        if n.IsBlock() || n.Block() == nil || !l.Contains(n.Block()) {
            continue
        }
        self.nodes[n.Block()] = append(self.nodes[n.Block()], n)
        switch n.Op() {
            case ir.OpCall  : self.hasCall = true
            case ir.OpStore : self.hasStore = true
        }
    }

    self.all = append(self.all, self.blocks...)
    for _, b := range self.blocks {
        self.all = append(self.all, self.nodes[b]...)
    }

    /* back edges are the header predecessors coming from inside */
    for i := 0; i < header.Arity(); i++ {
        if l.Contains(ir.CFGPredBlock(header, i)) {
            self.backs = append(self.backs, i)
            self.backJmps = append(self.backJmps, header.In(i))
        }
    }
    if len(self.backs) == 0 {
        return nil
    }

    for _, n := range self.nodes[header] {
        if n.Op() != ir.OpPhi {
            continue
        }
        self.headerPhis = append(self.headerPhis, n)
        for _, i := range self.backs {
            self.phiBacks[n] = append(self.phiBacks[n], n.In(i))
        }
    }
    return self
}

func (self *_LoopEnv) unroll() bool {
    if self.oversized() || self.hasCall {
        return false
    }

    factor, full := self.chooseFactor()
    if factor < 2 {
        return false
    }

    for j := uint(1); j < factor; j++ {
        self.duplicate()
    }

    if full {
        self.removeBackEdges()
        self.cleanupEnd()
    }
    return true
}

func (self *_LoopEnv) size() int {
    total := 0
    for _, b := range self.l.AllBlocks() {
        total += len(self.nodes[b])
    }
    return total
}

func (self *_LoopEnv) oversized() bool {
    return self.p.MaxSize > 0 && self.size() > self.p.MaxSize
}

func (self *_LoopEnv) inLoop(n *ir.Node) bool {
    if n == nil {
        return false
    }
    if n.IsBlock() {
        return self.l.Contains(n)
    }
    return n.Block() != nil && self.l.Contains(n.Block())
}

/* copyOf gives the current copy of a loop member, nil for anything else */
func (self *_LoopEnv) copyOf(n *ir.Node) *ir.Node {
    if self.inLoop(n) {
        return n.Link()
    }
    return nil
}

func (self *_LoopEnv) copyOrSelf(n *ir.Node) *ir.Node {
    if c := self.copyOf(n); c != nil {
        return c
    }
    return n
}

func (self *_LoopEnv) phisOf(blk *ir.Node) []*ir.Node {
    var ret []*ir.Node
    for _, n := range self.g.Nodes() {
        if n.Op() == ir.OpPhi && n.Block() == blk {
            ret = append(ret, n)
        }
    }
    return ret
}
