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

type _WalkFrame struct {
    node *Node
    post bool
}

// Walk traverses every node reachable from End exactly once, following
// input edges and the Block edge, calling pre before and post after the
// node's predecessors have been visited. Either callback may be nil.
// Pre-order is deterministic by input index.
func (self *Graph) Walk(pre func(*Node), post func(*Node)) {
    self.Reserve(ResVisited)
    self.IncVisited()
    self.walkFrom(self.end, pre, post)
    self.Free(ResVisited)
}

// WalkFrom is Walk starting at an arbitrary root, sharing the caller's
// visited generation. The caller must hold ResVisited and have bumped the
// counter.
func (self *Graph) WalkFrom(root *Node, pre func(*Node), post func(*Node)) {
    self.checkReserved(ResVisited)
    self.walkFrom(root, pre, post)
}

func (self *Graph) walkFrom(root *Node, pre func(*Node), post func(*Node)) {
    st := lane.NewStack()
    st.Push(_WalkFrame { node: root })

    for !st.Empty() {
        fr := st.Pop().(_WalkFrame)
        nd := fr.node

        /* second visit, all predecessors are done */
        if fr.post {
            if post != nil {
                post(nd)
            }
            continue
        }

        if self.IsVisited(nd) {
            continue
        }
        self.MarkVisited(nd)

        if pre != nil {
            pre(nd)
        }
        st.Push(_WalkFrame { node: nd, post: true })

        /* push in reverse so ins[0] is visited first, the Block edge last */
        if nd.block != nil && !self.IsVisited(nd.block) {
            st.Push(_WalkFrame { node: nd.block })
        }
        for i := len(nd.ins) - 1; i >= 0; i-- {
            if v := nd.ins[i]; v != nil && !self.IsVisited(v) {
                st.Push(_WalkFrame { node: v })
            }
        }
    }
}

// Blocks collects every Block reachable from End, in discovery order.
func (self *Graph) Blocks() []*Node {
    var ret []*Node
    self.Walk(func(n *Node) {
        if n.op == OpBlock {
            ret = append(ret, n)
        }
    }, nil)
    return ret
}

// WalkBlockwise visits reachable nodes grouped by their owning Block: the
// Block first, then every node whose Block it is. Order of Blocks is
// discovery order.
func (self *Graph) WalkBlockwise(cb func(*Node)) {
    perblk := make(map[*Node][]*Node)
    blocks := self.Blocks()

    self.Walk(func(n *Node) {
        if n.op != OpBlock {
            perblk[n.block] = append(perblk[n.block], n)
        }
    }, nil)

    for _, b := range blocks {
        cb(b)
        for _, n := range perblk[b] {
            cb(n)
        }
    }
}

// CFGPredBlock resolves input i of a Block to the Block the control flow
// comes from.
func CFGPredBlock(block *Node, i int) *Node {
    p := block.In(i)
    if p == nil || p.IsBad() {
        return nil
    }
    return p.Block()
}
