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

// ExitBlocks returns the Blocks outside the loop that have at least one
// control predecessor inside it.
func (self *Graph) ExitBlocks(l *Loop) []*Node {
    var ret []*Node
    seen := make(map[*Node]bool)

    for _, b := range self.Blocks() {
        if l.Contains(b) || seen[b] {
            continue
        }
        for i := 0; i < b.Arity(); i++ {
            if p := CFGPredBlock(b, i); p != nil && l.Contains(p) {
                seen[b] = true
                ret = append(ret, b)
                break
            }
        }
    }
    return ret
}

/* useBlock is the Block a use happens in. For a Phi the use happens at the
 * end of the corresponding control predecessor. */
func useBlock(e Out) *Node {
    if e.User.op == OpPhi {
        return CFGPredBlock(e.User.Block(), e.Pos)
    } else if e.User.op == OpBlock {
        return e.User
    } else {
        return e.User.Block()
    }
}

// AssureLCSSA rewrites the graph into loop-closed SSA form: every value
// defined inside a loop and used outside it is first routed through a Phi
// in an exit Block of that loop. Sets the LCSSA property.
func (self *Graph) AssureLCSSA() {
    if self.HasProperty(PropLCSSA) {
        return
    }

    self.AssureLoopInfo()
    self.AssureOuts()

    for _, l := range self.loops {
        self.closeLoop(l)
    }

    self.SetProperty(PropLCSSA)
}

func (self *Graph) closeLoop(l *Loop) {
    exits := self.ExitBlocks(l)
    phis := make(map[*Node]*Node)

    for _, b := range l.AllBlocks() {
        for _, n := range self.nodesOfBlock(b) {
            self.closeValue(l, n, exits, phis)
        }
    }
}

func (self *Graph) nodesOfBlock(b *Node) []*Node {
    var ret []*Node
    for _, n := range self.nodes {
        if n.block == b && n.op != OpBlock {
            ret = append(ret, n)
        }
    }
    return ret
}

func (self *Graph) closeValue(l *Loop, n *Node, exits []*Node, phis map[*Node]*Node) {
    if !n.Mode().IsData() && n.Mode() != ModeM {
        return
    }

    for _, e := range append([]Out(nil), n.Outs()...) {
        ub := useBlock(e)
        if ub == nil || l.Contains(ub) {
            continue
        }

        /* already loop-closed: the user is a Phi sitting in an exit Block */
        if e.User.op == OpPhi && containsNode(exits, e.User.Block()) {
            continue
        }

        /* route through a Phi in the exit Block dominating the use */
        phi := phis[n]
        if phi == nil {
            phi = self.newExitPhi(l, n, exits, ub)
            if phi == nil {
                continue
            }
            phis[n] = phi
        }
        e.User.SetIn(e.Pos, phi)
    }
}

func (self *Graph) newExitPhi(l *Loop, n *Node, exits []*Node, ub *Node) *Node {
    var exit *Node

    /* the exit Block must dominate the use for the Phi to be usable */
    for _, x := range exits {
        if self.BlockDominates(x, ub) {
            exit = x
            break
        }
    }
    if exit == nil {
        return nil
    }

    ins := make([]*Node, exit.Arity())
    for i := range ins {
        ins[i] = n
    }
    return self.NewPhi(exit, ins, n.Mode())
}
