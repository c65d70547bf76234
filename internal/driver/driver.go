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

package driver

import (
    `context`

    `gonum.org/v1/gonum/stat`
    `tlog.app/go/errors`
    `tlog.app/go/tlog`

    `github.com/graphir/graphir/internal/lower`
    `github.com/graphir/graphir/internal/types`
    `github.com/graphir/graphir/internal/unroll`
)

// Options configures the pass pipeline.
type Options struct {
    // Bits is the doubleword width handed to the lowering. Zero skips
    // the lowering pass.
    Bits uint

    // BigEndian selects the memory order of lowered half-words.
    BigEndian bool

    // Intrinsic resolves the emulation entities of the lowering. Nil
    // falls back to fresh external declarations.
    Intrinsic lower.IntrinsicFactory

    // UnrollFactor is the maximum loop unroll factor. Values below 2
    // skip the unrolling pass.
    UnrollFactor uint

    // UnrollMaxSize caps the node count of an unrollable loop.
    UnrollMaxSize int
}

type Pass interface {
    Apply(ctx context.Context, prog *types.Program, opts *Options) error
}

type _PassDescriptor struct {
    pass Pass
    desc string
}

var _passes = [...]_PassDescriptor {
    { desc: "Type and Entity Verification", pass: new(VerifyPass) },
    { desc: "Loop Unrolling"              , pass: new(UnrollPass) },
    { desc: "Double-Word Lowering"        , pass: new(LowerPass) },
}

// Run applies the pass pipeline to the program in order. The first
// failing pass aborts the run.
func Run(ctx context.Context, prog *types.Program, opts *Options) error {
    tr := tlog.SpanFromContext(ctx)

    for _, p := range _passes {
        if err := p.pass.Apply(ctx, prog, opts); err != nil {
            return errors.Wrap(err, "%s", p.desc)
        }
        tr.Printw("pass done", "pass", p.desc)
    }
    return nil
}

// VerifyPass checks the type and entity graph before any rewrite runs.
type VerifyPass struct{}

func (VerifyPass) Apply(ctx context.Context, prog *types.Program, _ *Options) error {
    if !types.Verify(prog, tlog.SpanFromContext(ctx).Logger) {
        return errors.New("program verification failed")
    }
    return nil
}

// LowerPass splits doubleword values in every graph of the program.
type LowerPass struct{}

func (LowerPass) Apply(ctx context.Context, prog *types.Program, opts *Options) error {
    if opts.Bits == 0 {
        return nil
    }

    return lower.LowerProgram(prog, &lower.Params {
        Bits      : opts.Bits,
        BigEndian : opts.BigEndian,
        Intrinsic : opts.Intrinsic,
        Log       : tlog.SpanFromContext(ctx).Logger,
    })
}

// UnrollPass unrolls innermost loops in every graph of the program.
type UnrollPass struct{}

func (UnrollPass) Apply(ctx context.Context, prog *types.Program, opts *Options) error {
    if opts.UnrollFactor < 2 {
        return nil
    }

    tr := tlog.SpanFromContext(ctx)
    params := &unroll.Params {
        Factor  : opts.UnrollFactor,
        MaxSize : opts.UnrollMaxSize,
        Log     : tr.Logger,
    }

    var counts []float64
    for _, g := range prog.Graphs() {
        n, err := unroll.UnrollLoops(g, params)
        if err != nil {
            return errors.Wrap(err, "graph %v", g.Name())
        }
        counts = append(counts, float64(n))
    }

    if len(counts) != 0 {
        tr.Printw("unroll summary", "graphs", len(counts), "mean", stat.Mean(counts, nil))
    }
    return nil
}
