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

package main

import (
    `context`
    `fmt`
    `os`

    `nikand.dev/go/cli`
    `tlog.app/go/errors`
    `tlog.app/go/tlog`

    `github.com/graphir/graphir/internal/driver`
    `github.com/graphir/graphir/internal/ir`
    `github.com/graphir/graphir/internal/irdump`
    `github.com/graphir/graphir/internal/types`
)

func main() {
    dumpCmd := &cli.Command {
        Name:   "dump",
        Action: dumpAct,
        Args:   cli.Args{},
    }

    drawCmd := &cli.Command {
        Name:   "draw",
        Action: drawAct,
        Args:   cli.Args{},
    }

    demoCmd := &cli.Command {
        Name:   "demo",
        Action: demoAct,
        Args:   cli.Args{},
    }

    app := &cli.Command {
        Name:        "graphir",
        Description: "graphir runs the middle-end passes over a built-in sample program",
        Commands: []*cli.Command {
            dumpCmd,
            drawCmd,
            demoCmd,
        },
    }

    cli.RunAndExit(app, os.Args, os.Environ())
}

/* samplePrg builds a method summing its 64 bit argument eight times in a
 * counted loop, exercising both the unroller and the lowering */
func samplePrg() (*types.Program, *ir.Graph) {
    u64 := ir.IntMode(64, false)
    u32 := ir.IntMode(32, false)

    prog := types.NewProgram()
    mtp := types.NewMethod(
        []*types.Type { types.NewPrimitive(u64) },
        []*types.Type { types.NewPrimitive(u64) },
    )

    ent := types.NewEntity(types.EntMethod, "sum8", mtp, prog.SegmentType(types.SegGlobal))
    g := ir.NewGraph("sum8", mtp)
    ent.SetGraph(g)
    prog.AddGraph(g)

    mem := g.NewProj(g.Start(), ir.ModeM, ir.PnStartM)
    args := g.NewProj(g.Start(), ir.ModeT, ir.PnStartTArgs)
    arg := g.NewProj(args, u64, 0)

    izero := g.NewConst(ir.MakeInt(u32, 0))
    ione := g.NewConst(ir.MakeInt(u32, 1))
    bound := g.NewConst(ir.MakeInt(u32, 8))
    szero := g.NewConst(ir.MakeInt(u64, 0))

    jmp := g.NewJmp(g.StartBlock())

    header := g.NewBlock([]*ir.Node { jmp })
    iphi := g.NewPhi(header, []*ir.Node { izero }, u32)
    sphi := g.NewPhi(header, []*ir.Node { szero }, u64)

    cmp := g.NewCmp(header, iphi, bound, ir.RelLess)
    cond := g.NewCond(header, cmp)
    ptrue := g.NewProj(cond, ir.ModeX, ir.PnCondTrue)
    pfalse := g.NewProj(cond, ir.ModeX, ir.PnCondFalse)

    body := g.NewBlock([]*ir.Node { ptrue })
    sum := g.NewBinop(ir.OpAdd, body, sphi, arg, u64)
    inc := g.NewBinop(ir.OpAdd, body, iphi, ione, u32)
    back := g.NewJmp(body)

    header.AddIn(back)
    iphi.AddIn(inc)
    sphi.AddIn(sum)

    exit := g.NewBlock([]*ir.Node { pfalse })
    ret := g.NewReturn(exit, mem, []*ir.Node { sphi })
    g.EndBlock().AddIn(ret)

    return prog, g
}

func dumpAct(c *cli.Command) error {
    _, g := samplePrg()
    irdump.Fdump(os.Stdout, g)
    return nil
}

func drawAct(c *cli.Command) error {
    fn := "graphir.svg"
    if len(c.Args) != 0 {
        fn = c.Args[0]
    }

    _, g := samplePrg()
    irdump.DrawCFG(fn, g)

    fmt.Printf("wrote %s\n", fn)
    return nil
}

func demoAct(c *cli.Command) error {
    ctx := context.Background()
    ctx = tlog.ContextWithSpan(ctx, tlog.Root())

    prog, g := samplePrg()

    fmt.Println("before:")
    irdump.Fdump(os.Stdout, g)

    err := driver.Run(ctx, prog, &driver.Options {
        Bits         : 64,
        UnrollFactor : 8,
    })
    if err != nil {
        return errors.Wrap(err, "run passes")
    }

    fmt.Println("after:")
    irdump.Fdump(os.Stdout, g)
    return nil
}
