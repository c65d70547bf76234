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

package irdump

import (
    `os`
    `path/filepath`
    `strings`
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/graphir/graphir/internal/ir`
)

func buildAnswer(t *testing.T) (*ir.Graph, *ir.Node) {
    g := ir.NewGraph("answer", nil)

    mem := g.NewProj(g.Start(), ir.ModeM, ir.PnStartM)
    blk := g.NewBlock([]*ir.Node { g.NewJmp(g.StartBlock()) })
    c := g.NewConst(ir.MakeInt(ir.IntMode(32, false), 42))
    ret := g.NewReturn(blk, mem, []*ir.Node { c })
    g.EndBlock().AddIn(ret)

    return g, c
}

func TestSdump_Layout(t *testing.T) {
    g, c := buildAnswer(t)
    s := Sdump(g)

    require.True(t, strings.HasPrefix(s, "graph answer {\n"))
    require.True(t, strings.HasSuffix(s, "}\n"))

    /* one line per Block with its predecessor list, nodes indented */
    require.Contains(t, s, "<- [")
    require.Contains(t, s, "    "+nodeLine(c))

    /* the constant's value shows on its line */
    require.Contains(t, nodeLine(c), "42")
}

func TestSdump_CmpShowsRelation(t *testing.T) {
    g, _ := buildAnswer(t)
    u32 := ir.IntMode(32, false)

    blk := g.NewBlock([]*ir.Node { g.NewJmp(g.StartBlock()) })
    cmp := g.NewCmp(blk, g.NewConst(ir.MakeInt(u32, 1)), g.NewConst(ir.MakeInt(u32, 2)), ir.RelLess)
    cond := g.NewCond(blk, cmp)
    g.KeepAlive(cond)

    s := Sdump(g)
    require.Contains(t, s, nodeLine(cmp))
    require.Contains(t, nodeLine(cmp), ir.RelLess.String())
}

func TestExplain_ConstCarriesPayload(t *testing.T) {
    _, c := buildAnswer(t)

    s := Explain(c)
    require.Contains(t, s, nodeLine(c))
    require.Contains(t, s, "Tarval")
}

func TestDrawCFG_WritesAnSVG(t *testing.T) {
    g, _ := buildAnswer(t)
    fn := filepath.Join(t.TempDir(), "answer.svg")

    DrawCFG(fn, g)

    raw, err := os.ReadFile(fn)
    require.NoError(t, err)

    s := string(raw)
    require.Contains(t, s, "<svg")
    require.Contains(t, s, "</svg>")
    require.Contains(t, s, "font-family:monospace")
}
