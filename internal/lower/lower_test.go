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

package lower

import (
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/graphir/graphir/internal/ir`
    `github.com/graphir/graphir/internal/types`
)

func newTestGraph(name string, params []*ir.Mode, results []*ir.Mode) (*ir.Graph, *ir.Node, []*ir.Node) {
    pt := make([]*types.Type, len(params))
    for i, m := range params {
        pt[i] = types.NewPrimitive(m)
    }

    rt := make([]*types.Type, len(results))
    for i, m := range results {
        rt[i] = types.NewPrimitive(m)
    }

    g := ir.NewGraph(name, types.NewMethod(pt, rt))
    mem := g.NewProj(g.Start(), ir.ModeM, ir.PnStartM)
    args := g.NewProj(g.Start(), ir.ModeT, ir.PnStartTArgs)

    ins := make([]*ir.Node, len(params))
    for i, m := range params {
        ins[i] = g.NewProj(args, m, i)
    }
    return g, mem, ins
}

func liveNodes(g *ir.Graph) []*ir.Node {
    var ret []*ir.Node
    g.Walk(nil, func(n *ir.Node) { ret = append(ret, n) })
    return ret
}

func liveOp(g *ir.Graph, op ir.Op) []*ir.Node {
    var ret []*ir.Node
    for _, n := range liveNodes(g) {
        if n.Op() == op {
            ret = append(ret, n)
        }
    }
    return ret
}

func requireNoDoubleword(t *testing.T, g *ir.Graph, bits uint) {
    for _, n := range liveNodes(g) {
        if m := n.OperationalMode(); m != nil && m.IsInt() {
            require.Less(t, m.Bits(), bits, "node %v still operates on %v", n, m)
        }
    }
}

func TestLower_AddBecomesIntrinsicCall(t *testing.T) {
    u64 := ir.IntMode(64, false)
    g, mem, args := newTestGraph("add64", []*ir.Mode { u64, u64 }, []*ir.Mode { u64 })

    sum := g.NewBinop(ir.OpAdd, g.StartBlock(), args[0], args[1], u64)
    ret := g.NewReturn(g.StartBlock(), mem, []*ir.Node { sum })
    g.EndBlock().AddIn(ret)

    require.NoError(t, LowerGraph(g, &Params { Bits: 64 }))

    calls := liveOp(g, ir.OpCall)
    require.Len(t, calls, 1)

    ent, ok := calls[0].In(1).Entity().(*types.Entity)
    require.True(t, ok)
    require.Equal(t, "__ladd_ll", ent.Name())
    require.Equal(t, types.VisExternal, ent.Visibility())

    /* the Return carries the (low, high) pair now */
    require.Equal(t, 3, ret.Arity())
    require.Equal(t, uint(32), ret.In(1).Mode().Bits())
    require.Equal(t, uint(32), ret.In(2).Mode().Bits())

    requireNoDoubleword(t, g, 64)
}

func TestLower_ConstSplits(t *testing.T) {
    u64 := ir.IntMode(64, false)
    g, mem, _ := newTestGraph("const64", nil, []*ir.Mode { u64 })

    c := g.NewConst(ir.MakeInt(u64, 0x00000001_ffffffff))
    ret := g.NewReturn(g.StartBlock(), mem, []*ir.Node { c })
    g.EndBlock().AddIn(ret)

    require.NoError(t, LowerGraph(g, &Params { Bits: 64 }))

    low, high := ret.In(1), ret.In(2)
    require.Equal(t, ir.OpConst, low.Op())
    require.Equal(t, ir.OpConst, high.Op())
    require.Equal(t, uint64(0xffffffff), low.ConstValue().Uint())
    require.Equal(t, uint64(1), high.ConstValue().Uint())
    require.Equal(t, uint(32), low.Mode().Bits())
}

func TestLower_ShiftByLargeConstantFolds(t *testing.T) {
    u64 := ir.IntMode(64, false)
    u32 := ir.IntMode(32, false)
    g, mem, args := newTestGraph("shl40", []*ir.Mode { u64 }, []*ir.Mode { u64 })

    cnt := g.NewConst(ir.MakeInt(u32, 40))
    sh := g.NewBinop(ir.OpShl, g.StartBlock(), args[0], cnt, u64)
    ret := g.NewReturn(g.StartBlock(), mem, []*ir.Node { sh })
    g.EndBlock().AddIn(ret)

    require.NoError(t, LowerGraph(g, &Params { Bits: 64 }))

    /* every bit crosses the boundary, no runtime call is needed */
    require.Empty(t, liveOp(g, ir.OpCall))

    low, high := ret.In(1), ret.In(2)
    require.Equal(t, ir.OpConst, low.Op())
    require.True(t, low.ConstValue().IsNull())

    require.Equal(t, ir.OpShl, high.Op())
    require.Equal(t, uint64(8), high.In(1).ConstValue().Uint())
}

func TestLower_EqualZeroCondTestsHalvesUnion(t *testing.T) {
    u64 := ir.IntMode(64, false)
    u32 := ir.IntMode(32, false)
    g, mem, args := newTestGraph("iszero", []*ir.Mode { u64 }, []*ir.Mode { u32 })

    fork := g.NewBlock([]*ir.Node { g.NewJmp(g.StartBlock()) })
    cmp := g.NewCmp(fork, args[0], g.NewConst(ir.MakeInt(u64, 0)), ir.RelEqual)
    cond := g.NewCond(fork, cmp)
    ptrue := g.NewProj(cond, ir.ModeX, ir.PnCondTrue)
    pfalse := g.NewProj(cond, ir.ModeX, ir.PnCondFalse)

    tb := g.NewBlock([]*ir.Node { ptrue })
    rt := g.NewReturn(tb, mem, []*ir.Node { g.NewConst(ir.MakeInt(u32, 1)) })
    fb := g.NewBlock([]*ir.Node { pfalse })
    rf := g.NewReturn(fb, mem, []*ir.Node { g.NewConst(ir.MakeInt(u32, 0)) })

    g.EndBlock().AddIn(rt)
    g.EndBlock().AddIn(rf)

    before := len(g.Blocks())
    require.NoError(t, LowerGraph(g, &Params { Bits: 64 }))

    /* the selector collapses to a single test of (low | high), the
     * control flow is untouched */
    sel := cond.In(0)
    require.Equal(t, ir.OpCmp, sel.Op())
    require.Equal(t, ir.RelEqual, sel.CmpRelation())
    require.Equal(t, ir.OpOr, sel.In(0).Op())
    require.True(t, sel.In(1).ConstValue().IsNull())
    require.Equal(t, uint(32), sel.In(0).Mode().Bits())

    require.Equal(t, before, len(g.Blocks()))
}

func TestLower_OrderedCondBecomesCascade(t *testing.T) {
    u64 := ir.IntMode(64, false)
    u32 := ir.IntMode(32, false)
    g, mem, args := newTestGraph("less", []*ir.Mode { u64, u64 }, []*ir.Mode { u32 })

    fork := g.NewBlock([]*ir.Node { g.NewJmp(g.StartBlock()) })
    cmp := g.NewCmp(fork, args[0], args[1], ir.RelLess)
    cond := g.NewCond(fork, cmp)
    ptrue := g.NewProj(cond, ir.ModeX, ir.PnCondTrue)
    pfalse := g.NewProj(cond, ir.ModeX, ir.PnCondFalse)

    tb := g.NewBlock([]*ir.Node { ptrue })
    rt := g.NewReturn(tb, mem, []*ir.Node { g.NewConst(ir.MakeInt(u32, 1)) })
    fb := g.NewBlock([]*ir.Node { pfalse })
    rf := g.NewReturn(fb, mem, []*ir.Node { g.NewConst(ir.MakeInt(u32, 0)) })

    g.EndBlock().AddIn(rt)
    g.EndBlock().AddIn(rf)

    before := len(g.Blocks())
    require.NoError(t, LowerGraph(g, &Params { Bits: 64 }))

    /* two new Blocks for the equal-high and low-word tests, and each
     * branch target gained a second way to be reached */
    require.Equal(t, before + 2, len(g.Blocks()))
    require.Equal(t, 2, tb.Arity())
    require.Equal(t, 2, fb.Arity())

    requireNoDoubleword(t, g, 64)
}

func TestLower_PhiSplitsIntoHalves(t *testing.T) {
    u64 := ir.IntMode(64, false)
    u32 := ir.IntMode(32, false)
    g, mem, args := newTestGraph("sumloop", []*ir.Mode { u64 }, []*ir.Mode { u64 })

    izero := g.NewConst(ir.MakeInt(u32, 0))
    ione := g.NewConst(ir.MakeInt(u32, 1))
    bound := g.NewConst(ir.MakeInt(u32, 8))
    szero := g.NewConst(ir.MakeInt(u64, 0))

    header := g.NewBlock([]*ir.Node { g.NewJmp(g.StartBlock()) })
    iphi := g.NewPhi(header, []*ir.Node { izero }, u32)
    sphi := g.NewPhi(header, []*ir.Node { szero }, u64)

    cond := g.NewCond(header, g.NewCmp(header, iphi, bound, ir.RelLess))
    ptrue := g.NewProj(cond, ir.ModeX, ir.PnCondTrue)
    pfalse := g.NewProj(cond, ir.ModeX, ir.PnCondFalse)

    body := g.NewBlock([]*ir.Node { ptrue })
    sum := g.NewBinop(ir.OpAdd, body, sphi, args[0], u64)
    inc := g.NewBinop(ir.OpAdd, body, iphi, ione, u32)

    header.AddIn(g.NewJmp(body))
    iphi.AddIn(inc)
    sphi.AddIn(sum)

    exit := g.NewBlock([]*ir.Node { pfalse })
    ret := g.NewReturn(exit, mem, []*ir.Node { sphi })
    g.EndBlock().AddIn(ret)

    require.NoError(t, LowerGraph(g, &Params { Bits: 64 }))

    /* the sum Phi split into two 32 bit Phis, their back edges fed by
     * the intrinsic call of the loop body */
    var halves []*ir.Node
    for _, n := range liveOp(g, ir.OpPhi) {
        if n.Block() == header && n != iphi {
            halves = append(halves, n)
        }
    }
    require.Len(t, halves, 2)

    for _, phi := range halves {
        require.Equal(t, uint(32), phi.Mode().Bits())
        require.Equal(t, 2, phi.Arity())
        for i := 0; i < phi.Arity(); i++ {
            require.NotEqual(t, ir.OpDummy, phi.In(i).Op())
        }
    }

    requireNoDoubleword(t, g, 64)
}

func TestLower_MethodType(t *testing.T) {
    u64 := ir.IntMode(64, false)
    u32 := ir.IntMode(32, false)

    mtp := types.NewMethod(
        []*types.Type { types.NewPrimitive(u64), types.NewPrimitive(u32) },
        []*types.Type { types.NewPrimitive(u64) },
    )

    low := LowerMethodType(mtp, &Params { Bits: 64 })
    require.True(t, low.Lowered())
    require.Equal(t, 3, low.ParamCount())
    require.Equal(t, 2, low.ResCount())
    require.Equal(t, uint(32), low.Param(0).Mode().Bits())
    require.Equal(t, uint(32), low.Param(1).Mode().Bits())
    require.Same(t, mtp.Param(1), low.Param(2))

    /* lowering is idempotent */
    require.Same(t, low, LowerMethodType(low, &Params { Bits: 64 }))
}

func TestLower_RejectsOddWidth(t *testing.T) {
    prog := types.NewProgram()
    require.Error(t, LowerProgram(prog, &Params { Bits: 0 }))
    require.Error(t, LowerProgram(prog, &Params { Bits: 33 }))
}
