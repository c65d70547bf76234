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

/** Immediate dominators are computed with the Lengauer-Tarjan algorithm
 *  described in https://doi.org/10.1145%2F357062.357071
 */

package ir

type _LtNode struct {
    semi     int
    node     *Node
    dom      *_LtNode
    label    *_LtNode
    parent   *_LtNode
    ancestor *_LtNode
    pred     []*_LtNode
    bucket   map[*_LtNode]struct{}
}

type _LengauerTarjan struct {
    succ   map[*Node][]*Node
    nodes  []*_LtNode
    vertex map[*Node]int
}

func newLengauerTarjan(succ map[*Node][]*Node) *_LengauerTarjan {
    return &_LengauerTarjan {
        succ   : succ,
        vertex : make(map[*Node]int),
    }
}

func (self *_LengauerTarjan) dfs(bb *Node) {
    i := len(self.nodes)
    self.vertex[bb] = i

    /* create a new node */
    p := &_LtNode {
        semi   : i,
        node   : bb,
        bucket : make(map[*_LtNode]struct{}),
    }

    /* add to node list */
    p.label = p
    self.nodes = append(self.nodes, p)

    /* traverse the successors */
    for _, w := range self.succ[bb] {
        idx, ok := self.vertex[w]

        /* not visited yet */
        if !ok {
            self.dfs(w)
            idx = self.vertex[w]
            self.nodes[idx].parent = p
        }

        /* add predecessors */
        q := self.nodes[idx]
        q.pred = append(q.pred, p)
    }
}

func (self *_LengauerTarjan) eval(p *_LtNode) *_LtNode {
    if p.ancestor == nil {
        return p
    } else {
        self.compress(p)
        return p.label
    }
}

func (self *_LengauerTarjan) link(p *_LtNode, q *_LtNode) {
    q.ancestor = p
}

func (self *_LengauerTarjan) compress(p *_LtNode) {
    if p.ancestor.ancestor != nil {
        self.compress(p.ancestor)
        if p.label.semi > p.ancestor.label.semi { p.label = p.ancestor.label }
        p.ancestor = p.ancestor.ancestor
    }
}

/* cfgSuccessors builds the Block successor lists from the Block
 * predecessor inputs, without requiring consistent outs. */
func (self *Graph) cfgSuccessors() map[*Node][]*Node {
    succ := make(map[*Node][]*Node)

    for _, b := range self.Blocks() {
        for i := 0; i < b.Arity(); i++ {
            if p := CFGPredBlock(b, i); p != nil {
                succ[p] = append(succ[p], b)
            }
        }
    }
    return succ
}

// AssureDominance computes the immediate dominator and dominance depth of
// every reachable Block and sets the consistent-dominance property.
func (self *Graph) AssureDominance() {
    if self.HasProperty(PropConsistentDominance) {
        return
    }

    /* Step 1: Carry out a depth-first search of the problem graph. Number the vertices
     * from 1 to n as they are reached during the search. Initialize the variables used
     * in succeeding steps. */
    lt := newLengauerTarjan(self.cfgSuccessors())
    lt.dfs(self.startBlk)

    /* perform Step 2 and Step 3 simultaneously */
    for i := len(lt.nodes) - 1; i > 0; i-- {
        p := lt.nodes[i]
        q := (*_LtNode)(nil)

        /* Step 2: Compute the semidominators of all vertices by applying Theorem 4.
         * Carry out the computation vertex by vertex in decreasing order by number. */
        for _, v := range p.pred {
            q = lt.eval(v)
            p.semi = minint(p.semi, q.semi)
        }

        /* link the ancestor */
        lt.link(p.parent, p)
        lt.nodes[p.semi].bucket[p] = struct{}{}

        /* Step 3: Implicitly define the immediate dominator of each vertex by applying Corollary 1 */
        for v := range p.parent.bucket {
            if q = lt.eval(v); q.semi < v.semi {
                v.dom = q
            } else {
                v.dom = p.parent
            }
        }

        /* clear the bucket */
        for v := range p.parent.bucket {
            delete(p.parent.bucket, v)
        }
    }

    /* Step 4: Explicitly define the immediate dominator of each vertex, carrying out the
     * computation vertex by vertex in increasing order by number. */
    for _, p := range lt.nodes[1:] {
        if p.dom != lt.nodes[p.semi] {
            p.dom = p.dom.dom
        }
    }

    /* reset the per-Block state */
    for _, b := range self.Blocks() {
        a := b.blockAttr()
        a.idom = nil
        a.domDepth = -1
    }

    /* annotate the Blocks */
    root := self.startBlk.blockAttr()
    root.domDepth = 0

    for _, p := range lt.nodes[1:] {
        a := p.node.blockAttr()
        a.idom = p.dom.node
    }

    /* dominance depth, walking idom chains settles in index order */
    for _, p := range lt.nodes[1:] {
        depth, b := 0, p.node
        for b.blockAttr().idom != nil {
            depth++
            b = b.blockAttr().idom
        }
        p.node.blockAttr().domDepth = depth
    }

    self.SetProperty(PropConsistentDominance)
}

// InvalidateDominance drops the dominance information.
func (self *Graph) InvalidateDominance() {
    self.ClearProperty(PropConsistentDominance)
}

// BlockDominates reports whether Block a dominates Block b. Dominance must
// be consistent.
func (self *Graph) BlockDominates(a *Node, b *Node) bool {
    self.mustHave(PropConsistentDominance)

    for b != nil && b.DomDepth() >= a.DomDepth() {
        if b == a {
            return true
        }
        b = b.IDom()
    }
    return a == b
}
