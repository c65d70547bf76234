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

/* a diamond: start -> fork -> { left, right } -> join -> end */
func buildDiamond(t *testing.T) (g *Graph, fork, left, right, join *Node) {
    g = NewGraph("diamond", nil)
    u32 := IntMode(32, false)

    mem := g.NewProj(g.Start(), ModeM, PnStartM)

    fork = g.NewBlock([]*Node { g.NewJmp(g.StartBlock()) })
    cmp := g.NewCmp(fork, g.NewConst(MakeInt(u32, 1)), g.NewConst(MakeInt(u32, 2)), RelLess)
    cond := g.NewCond(fork, cmp)
    ptrue := g.NewProj(cond, ModeX, PnCondTrue)
    pfalse := g.NewProj(cond, ModeX, PnCondFalse)

    left = g.NewBlock([]*Node { ptrue })
    right = g.NewBlock([]*Node { pfalse })

    join = g.NewBlock([]*Node { g.NewJmp(left), g.NewJmp(right) })
    ret := g.NewReturn(join, mem, nil)
    g.EndBlock().AddIn(ret)

    return
}

func TestDominance_Diamond(t *testing.T) {
    g, fork, left, right, join := buildDiamond(t)
    g.AssureDominance()

    require.Nil(t, g.StartBlock().IDom())
    require.Same(t, g.StartBlock(), fork.IDom())
    require.Same(t, fork, left.IDom())
    require.Same(t, fork, right.IDom())

    /* neither branch dominates the join, the fork does */
    require.Same(t, fork, join.IDom())

    require.Equal(t, 0, g.StartBlock().DomDepth())
    require.Equal(t, 1, fork.DomDepth())
    require.Equal(t, 2, left.DomDepth())
    require.Equal(t, 2, join.DomDepth())
}

func TestDominance_BlockDominates(t *testing.T) {
    g, fork, left, right, join := buildDiamond(t)
    g.AssureDominance()

    require.True(t, g.BlockDominates(g.StartBlock(), join))
    require.True(t, g.BlockDominates(fork, left))
    require.True(t, g.BlockDominates(fork, join))
    require.True(t, g.BlockDominates(join, join))

    require.False(t, g.BlockDominates(left, join))
    require.False(t, g.BlockDominates(right, join))
    require.False(t, g.BlockDominates(left, right))
    require.False(t, g.BlockDominates(join, fork))
}

func TestDominance_InvalidateDropsProperty(t *testing.T) {
    g, fork, _, _, join := buildDiamond(t)
    g.AssureDominance()
    require.True(t, g.HasProperty(PropConsistentDominance))

    g.InvalidateDominance()
    require.False(t, g.HasProperty(PropConsistentDominance))
    require.Panics(t, func() { g.BlockDominates(fork, join) })
}
