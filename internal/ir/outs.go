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

// AssureOuts computes the def-use back-edges of every reachable node if
// they are not already consistent. Insertion order is the order of walk
// discovery of the user.
func (self *Graph) AssureOuts() {
    if self.HasProperty(PropConsistentOuts) {
        return
    }

    for _, n := range self.nodes {
        n.outs = n.outs[:0]
    }

    self.Walk(func(n *Node) {
        for i, v := range n.ins {
            if v != nil {
                v.outs = append(v.outs, Out { User: n, Pos: i })
            }
        }
    }, nil)

    self.SetProperty(PropConsistentOuts)
}

// InvalidateOuts marks the cached out-edges as stale.
func (self *Graph) InvalidateOuts() {
    self.ClearProperty(PropConsistentOuts)
}

// BlockSucc returns the Blocks this Block's control flow can reach, using
// the out-edges of its control producers. Outs must be consistent.
func (self *Graph) BlockSucc(block *Node) []*Node {
    self.mustHave(PropConsistentOuts)

    var succ []*Node
    seen := make(map[*Node]bool)

    /* successors are the Blocks that list one of our jump producers as a
     * control input */
    for _, n := range self.nodes {
        if n.block != block || n.mode != ModeX && n.mode != ModeT {
            continue
        }
        for _, e := range n.outs {
            u := e.User
            if u.op == OpBlock && !seen[u] {
                seen[u] = true
                succ = append(succ, u)
            }
            if u.op == OpProj {
                for _, pe := range u.outs {
                    if pe.User.op == OpBlock && !seen[pe.User] {
                        seen[pe.User] = true
                        succ = append(succ, pe.User)
                    }
                }
            }
        }
    }
    return succ
}

func (self *Graph) mustHave(p Property) {
    if !self.HasProperty(p) {
        panic("ir: required graph property is not consistent")
    }
}
