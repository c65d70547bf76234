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
    `testing`

    `github.com/stretchr/testify/require`
)

/* a straight-line graph: start -> blk -> end, returning a constant */
func buildLinear(t *testing.T) (*Graph, *Node) {
    g := NewGraph("linear", nil)

    mem := g.NewProj(g.Start(), ModeM, PnStartM)
    jmp := g.NewJmp(g.StartBlock())

    blk := g.NewBlock([]*Node { jmp })
    c := g.NewConst(MakeInt(IntMode(32, false), 42))
    ret := g.NewReturn(blk, mem, []*Node { c })
    g.EndBlock().AddIn(ret)

    return g, ret
}

func TestGraph_DenseIndices(t *testing.T) {
    g, _ := buildLinear(t)

    for i, n := range g.Nodes() {
        require.Equal(t, i, n.Idx())
        require.Same(t, g, n.Graph())
    }
}

func TestGraph_PhiArityIsChecked(t *testing.T) {
    g, _ := buildLinear(t)

    u32 := IntMode(32, false)
    blk := g.NewBlock([]*Node { g.NewJmp(g.StartBlock()) })

    require.Panics(t, func() {
        g.NewPhi(blk, []*Node { g.NewConst(MakeInt(u32, 1)), g.NewConst(MakeInt(u32, 2)) }, u32)
    })
}

func TestGraph_WalkReachesEveryLiveNode(t *testing.T) {
    g, ret := buildLinear(t)

    seen := make(map[*Node]bool)
    g.Walk(func(n *Node) { seen[n] = true }, nil)

    require.True(t, seen[g.End()])
    require.True(t, seen[ret])
    require.True(t, seen[g.Start()])
    require.True(t, seen[g.StartBlock()])
}

func TestGraph_WalkPostOrdersInputsFirst(t *testing.T) {
    g, ret := buildLinear(t)

    pos := make(map[*Node]int)
    var order []*Node
    g.Walk(nil, func(n *Node) {
        pos[n] = len(order)
        order = append(order, n)
    })

    for i := 0; i < ret.Arity(); i++ {
        require.Less(t, pos[ret.In(i)], pos[ret])
    }
}

func TestGraph_OutsMatchIns(t *testing.T) {
    g, ret := buildLinear(t)
    g.AssureOuts()

    mem := ret.In(0)
    found := false
    for _, e := range mem.Outs() {
        if e.User == ret && e.Pos == 0 {
            found = true
        }
    }
    require.True(t, found)
}

func TestGraph_SetInMaintainsOuts(t *testing.T) {
    g, ret := buildLinear(t)
    g.AssureOuts()

    u32 := IntMode(32, false)
    old := ret.In(1)
    c := g.NewConst(MakeInt(u32, 7))
    ret.SetIn(1, c)

    require.Equal(t, 0, old.NumOuts())
    require.Equal(t, 1, c.NumOuts())
    require.Same(t, ret, c.Outs()[0].User)
}

func TestGraph_ExchangeReroutesUses(t *testing.T) {
    g, ret := buildLinear(t)

    u32 := IntMode(32, false)
    old := ret.In(1)
    c := g.NewConst(MakeInt(u32, 99))

    g.Exchange(old, c)
    require.Same(t, c, ret.In(1))
}

func TestGraph_ResourceReservation(t *testing.T) {
    g, ret := buildLinear(t)

    require.Panics(t, func() { ret.SetLink(nil) })

    g.Reserve(ResLink)
    ret.SetLink(g.Start())
    require.Same(t, g.Start(), ret.Link())
    g.Free(ResLink)

    require.Panics(t, func() { g.Free(ResLink) })
}

func TestGraph_KeepAliveDeduplicates(t *testing.T) {
    g, _ := buildLinear(t)

    c := g.NewConst(MakeInt(IntMode(32, false), 1))
    before := len(g.KeepAlives())

    g.KeepAlive(c)
    g.KeepAlive(c)
    require.Equal(t, before + 1, len(g.KeepAlives()))
}

func TestGraph_CloneNodeCopiesAttributes(t *testing.T) {
    g, ret := buildLinear(t)

    mem := ret.In(0)
    c := g.CloneNode(mem)

    require.Equal(t, OpProj, c.Op())
    require.Equal(t, mem.ProjNum(), c.ProjNum())
    require.Same(t, mem.ProjPred(), c.ProjPred())
    require.NotSame(t, mem, c)

    /* the copy's Proj number is independent */
    c.SetProjNum(5)
    require.Equal(t, PnStartM, mem.ProjNum())
}
