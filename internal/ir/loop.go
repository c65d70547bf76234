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
    `github.com/oleiade/lane`
)

// Loop is a node of the loop tree. Its elements are the Blocks owned
// directly by this loop plus the nested child loops.
type Loop struct {
    parent   *Loop
    children []*Loop
    blocks   []*Node
    all      map[*Node]bool
    depth    int
}

func (self *Loop) Parent() *Loop     { return self.parent }
func (self *Loop) Children() []*Loop { return self.children }
func (self *Loop) Depth() int        { return self.depth }

// Blocks returns the Blocks directly owned by this loop, excluding those
// of nested loops.
func (self *Loop) Blocks() []*Node {
    return self.blocks
}

// AllBlocks returns every Block inside the loop including sub-loops.
func (self *Loop) AllBlocks() []*Node {
    var ret []*Node
    for b := range self.all {
        ret = append(ret, b)
    }
    return ret
}

// Contains reports whether the Block is inside the loop or a sub-loop.
func (self *Loop) Contains(b *Node) bool {
    return self.all[b]
}

// Size counts all Blocks inside the loop tree rooted here.
func (self *Loop) Size() int {
    return len(self.all)
}

type _NaturalLoop struct {
    header *Node
    body   map[*Node]bool
}

/* collectNaturalLoop gathers the body of the back edge tail -> header by a
 * reverse flow walk that stops at the header. */
func (self *Graph) collectNaturalLoop(header *Node, tail *Node) map[*Node]bool {
    body := map[*Node]bool { header: true }
    work := lane.NewQueue()

    if !body[tail] {
        body[tail] = true
        work.Enqueue(tail)
    }

    for !work.Empty() {
        b := work.Dequeue().(*Node)
        for i := 0; i < b.Arity(); i++ {
            if p := CFGPredBlock(b, i); p != nil && !body[p] {
                body[p] = true
                work.Enqueue(p)
            }
        }
    }
    return body
}

// AssureLoopInfo computes the loop tree from the dominance information:
// every CFG edge whose target dominates its source closes a natural loop.
// Loops sharing a header are merged; nesting follows block-set inclusion.
func (self *Graph) AssureLoopInfo() {
    if self.HasProperty(PropConsistentLoopInfo) {
        return
    }
    self.AssureDominance()

    /* find the natural loops, merging same-header bodies */
    byhdr := make(map[*Node]*_NaturalLoop)
    order := []*_NaturalLoop(nil)

    for _, b := range self.Blocks() {
        for i := 0; i < b.Arity(); i++ {
            p := CFGPredBlock(b, i)
            if p == nil || !self.BlockDominates(b, p) {
                continue
            }

            body := self.collectNaturalLoop(b, p)
            if nl, ok := byhdr[b]; ok {
                for x := range body {
                    nl.body[x] = true
                }
            } else {
                nl := &_NaturalLoop { header: b, body: body }
                byhdr[b] = nl
                order = append(order, nl)
            }
        }
    }

    /* build Loop objects, nest by inclusion: the parent is the smallest
     * strictly larger loop containing the header */
    loops := make([]*Loop, len(order))
    for i, nl := range order {
        loops[i] = &Loop { all: nl.body }
    }

    for i, nl := range order {
        var parent *Loop
        for j, cand := range order {
            if i == j || !cand.body[nl.header] || len(cand.body) <= len(nl.body) {
                continue
            }
            if parent == nil || len(cand.body) < parent.Size() {
                parent = loops[j]
            }
        }
        if parent != nil {
            loops[i].parent = parent
            parent.children = append(parent.children, loops[i])
        }
    }

    for _, l := range loops {
        d := 1
        for p := l.parent; p != nil; p = p.parent {
            d++
        }
        l.depth = d
    }

    /* attach each Block to its innermost loop */
    for _, b := range self.Blocks() {
        a := b.blockAttr()
        a.loop = nil

        for _, l := range loops {
            if l.all[b] && (a.loop == nil || l.depth > a.loop.depth) {
                a.loop = l
            }
        }

        if a.loop != nil {
            a.loop.blocks = append(a.loop.blocks, b)
        }
    }

    self.loops = loops
    self.SetProperty(PropConsistentLoopInfo)
}

// InvalidateLoopInfo drops the loop tree.
func (self *Graph) InvalidateLoopInfo() {
    self.ClearProperty(PropConsistentLoopInfo)
    self.loops = nil
}

// Loops returns every loop of the graph, innermost loops included.
func (self *Graph) Loops() []*Loop {
    self.mustHave(PropConsistentLoopInfo)
    return self.loops
}

// InnermostLoops returns the loops that have no children.
func (self *Graph) InnermostLoops() []*Loop {
    self.mustHave(PropConsistentLoopInfo)

    var ret []*Loop
    for _, l := range self.loops {
        if len(l.children) == 0 {
            ret = append(ret, l)
        }
    }
    return ret
}
