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

/* a counted loop: i runs from 0 to 8, the final i is returned */
func buildCounted(t *testing.T) (g *Graph, header, body, exit *Node, iphi, ret *Node) {
    g = NewGraph("count", nil)
    u32 := IntMode(32, false)

    mem := g.NewProj(g.Start(), ModeM, PnStartM)
    izero := g.NewConst(MakeInt(u32, 0))
    ione := g.NewConst(MakeInt(u32, 1))
    bound := g.NewConst(MakeInt(u32, 8))

    header = g.NewBlock([]*Node { g.NewJmp(g.StartBlock()) })
    iphi = g.NewPhi(header, []*Node { izero }, u32)

    cmp := g.NewCmp(header, iphi, bound, RelLess)
    cond := g.NewCond(header, cmp)
    ptrue := g.NewProj(cond, ModeX, PnCondTrue)
    pfalse := g.NewProj(cond, ModeX, PnCondFalse)

    body = g.NewBlock([]*Node { ptrue })
    inc := g.NewBinop(OpAdd, body, iphi, ione, u32)
    back := g.NewJmp(body)

    header.AddIn(back)
    iphi.AddIn(inc)

    exit = g.NewBlock([]*Node { pfalse })
    ret = g.NewReturn(exit, mem, []*Node { iphi })
    g.EndBlock().AddIn(ret)

    return
}

func TestLoop_NaturalLoopDetection(t *testing.T) {
    g, header, body, exit, _, _ := buildCounted(t)
    g.AssureLoopInfo()

    loops := g.Loops()
    require.Len(t, loops, 1)

    l := loops[0]
    require.Equal(t, 1, l.Depth())
    require.Equal(t, 2, l.Size())
    require.True(t, l.Contains(header))
    require.True(t, l.Contains(body))
    require.False(t, l.Contains(exit))
    require.False(t, l.Contains(g.StartBlock()))

    require.Equal(t, loops, g.InnermostLoops())
}

func TestLoop_ExitBlocks(t *testing.T) {
    g, _, _, exit, _, _ := buildCounted(t)
    g.AssureLoopInfo()

    exits := g.ExitBlocks(g.Loops()[0])
    require.Equal(t, []*Node { exit }, exits)
}

func TestLoop_Nesting(t *testing.T) {
    g := NewGraph("nested", nil)
    u32 := IntMode(32, false)

    mem := g.NewProj(g.Start(), ModeM, PnStartM)
    c1 := g.NewConst(MakeInt(u32, 1))
    c2 := g.NewConst(MakeInt(u32, 2))

    oh := g.NewBlock([]*Node { g.NewJmp(g.StartBlock()) })
    ocond := g.NewCond(oh, g.NewCmp(oh, c1, c2, RelLess))
    optr := g.NewProj(ocond, ModeX, PnCondTrue)
    opfa := g.NewProj(ocond, ModeX, PnCondFalse)

    ih := g.NewBlock([]*Node { optr })
    icond := g.NewCond(ih, g.NewCmp(ih, c1, c2, RelLess))
    iptr := g.NewProj(icond, ModeX, PnCondTrue)
    ipfa := g.NewProj(icond, ModeX, PnCondFalse)

    ib := g.NewBlock([]*Node { iptr })
    ih.AddIn(g.NewJmp(ib))

    ot := g.NewBlock([]*Node { ipfa })
    oh.AddIn(g.NewJmp(ot))

    exit := g.NewBlock([]*Node { opfa })
    g.EndBlock().AddIn(g.NewReturn(exit, mem, nil))

    g.AssureLoopInfo()
    loops := g.Loops()
    require.Len(t, loops, 2)

    inner := g.InnermostLoops()
    require.Len(t, inner, 1)
    require.True(t, inner[0].Contains(ih))
    require.True(t, inner[0].Contains(ib))
    require.False(t, inner[0].Contains(oh))
    require.Equal(t, 2, inner[0].Depth())

    outer := inner[0].Parent()
    require.NotNil(t, outer)
    require.Equal(t, 1, outer.Depth())
    require.True(t, outer.Contains(oh))
    require.True(t, outer.Contains(ot))
    require.True(t, outer.Contains(ih))
    require.False(t, outer.Contains(exit))

    /* a Block belongs to its innermost loop */
    require.Same(t, inner[0], ih.Loop())
    require.Same(t, outer, oh.Loop())
}

func TestLoop_InvalidateDropsTree(t *testing.T) {
    g, _, _, _, _, _ := buildCounted(t)
    g.AssureLoopInfo()

    g.InvalidateLoopInfo()
    require.Panics(t, func() { g.Loops() })
}
