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

/* duplicate inserts one copy of the loop body between the back edges and
 * the header. The link slot pairs every member with its newest copy. */
func (self *_LoopEnv) duplicate() {
    g := self.g

    /* clone the Blocks first so the node copies can be attached */
    for _, b := range self.blocks {
        c := g.CloneNode(b)
        b.SetLink(c)
        self.copied[c] = true
    }
    for _, b := range self.blocks {
        for _, n := range self.nodes[b] {
            c := g.CloneNode(n)
            c.SetBlock(b.Link())
            n.SetLink(c)
        }
    }

    /* inputs that stayed inside the loop follow their copies */
    for _, n := range self.all {
        c := n.Link()
        for i := 0; i < c.Arity(); i++ {
            if r := self.copyOf(c.In(i)); r != nil {
                c.SetIn(i, r)
            }
        }
    }

    self.partitionHeader()
    self.extendUses()
}

/* partitionHeader moves the current back edges onto the copy's header;
 * the original header receives fresh edges from the copy instead. Entry
 * edges stay where they are. Header Phis mirror the partition. */
func (self *_LoopEnv) partitionHeader() {
    h := self.header
    hc := h.Link()

    preds := make([]*ir.Node, len(self.backs))
    for k, i := range self.backs {
        preds[k] = h.In(i)
    }
    hc.SetIns(preds)

    for k, i := range self.backs {
        h.SetIn(i, self.backJmps[k].Link())
    }

    for _, p := range self.headerPhis {
        pc := p.Link()

        ins := make([]*ir.Node, len(self.backs))
        for k, i := range self.backs {
            ins[k] = p.In(i)
        }
        pc.SetIns(ins)

        for k, i := range self.backs {
            p.SetIn(i, self.copyOrSelf(self.phiBacks[p][k]))
        }
    }
}

/* extendUses grows every Block outside the loop that is entered from
 * inside by one predecessor per copy, mirrors the edge on its Phis, and
 * replicates keep-alive edges */
func (self *_LoopEnv) extendUses() {
    g := self.g

    for _, n := range self.all {
        for _, e := range n.Outs() {
            u := e.User
            switch {
                case u == g.End():
                    g.KeepAlive(n.Link())
                case u.IsBlock() && !self.l.Contains(u) && !self.copied[u]:
                    self.extendExit(u, e.Pos, n.Link())
            }
        }
    }
}

func (self *_LoopEnv) extendExit(blk *ir.Node, pos int, pred *ir.Node) {
    phis := self.phisOf(blk)
    blk.AddIn(pred)

    for _, phi := range phis {
        phi.AddIn(self.copyOrSelf(phi.In(pos)))
    }
}

/* removeBackEdges finishes a full unroll: the remaining back edges jump
 * to the Block after the loop instead of the header, and that Block's
 * Phis receive the values live on those edges */
func (self *_LoopEnv) removeBackEdges() {
    g := self.g
    h := self.header

    /* the control successor of the header outside the loop */
    var after *ir.Node
    for _, s := range g.BlockSucc(h) {
        if !self.l.Contains(s) && !self.copied[s] {
            after = s
            break
        }
    }
    if after == nil {
        return
    }

    exitPos := -1
    for k := 0; k < after.Arity(); k++ {
        if ir.CFGPredBlock(after, k) == h {
            exitPos = k
            break
        }
    }
    if exitPos < 0 {
        return
    }

    phis := self.phisOf(after)
    for _, i := range self.backs {
        after.AddIn(h.In(i))
        for _, phi := range phis {
            phi.AddIn(self.traceValue(phi.In(exitPos), i))
        }
    }

    /* the header and its Phis lose the redirected predecessors */
    drop := make(map[int]bool, len(self.backs))
    for _, i := range self.backs {
        drop[i] = true
    }

    prune := func(n *ir.Node) {
        var ins []*ir.Node
        for i := 0; i < n.Arity(); i++ {
            if !drop[i] {
                ins = append(ins, n.In(i))
            }
        }
        n.SetIns(ins)
    }

    prune(h)
    for _, phi := range self.headerPhis {
        prune(phi)
    }
}

/* traceValue finds the value live on a redirected back edge: a header
 * Phi yields its input on that edge, any other loop value yields its
 * newest copy */
func (self *_LoopEnv) traceValue(v *ir.Node, backPos int) *ir.Node {
    if v.Op() == ir.OpPhi && v.Block() == self.header {
        return v.In(backPos)
    }
    return self.copyOrSelf(v)
}

/* cleanupEnd drops Bads and duplicate keep-alive edges from End */
func (self *_LoopEnv) cleanupEnd() {
    end := self.g.End()
    seen := make(map[*ir.Node]bool)

    var ins []*ir.Node
    for _, n := range end.Ins() {
        if n == nil || n.IsBad() || seen[n] {
            continue
        }
        seen[n] = true
        ins = append(ins, n)
    }
    end.SetIns(ins)
}
