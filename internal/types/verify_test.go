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

package types

import (
    `testing`

    `github.com/stretchr/testify/require`

    `github.com/graphir/graphir/internal/ir`
)

func TestVerify_WellFormedProgram(t *testing.T) {
    u32 := ir.IntMode(32, false)
    prog := NewProgram()

    v := NewEntity(EntNormal, "counter", NewPrimitive(u32), prog.SegmentType(SegGlobal))
    v.SetInitializer(TarvalInit { Val: ir.MakeInt(u32, 7) })

    mtp := NewMethod(nil, []*Type { NewPrimitive(u32) })
    m := NewEntity(EntMethod, "answer", mtp, prog.SegmentType(SegGlobal))
    g := ir.NewGraph("answer", mtp)
    m.SetGraph(g)
    prog.AddGraph(g)

    require.True(t, Verify(prog, nil))
}

func TestVerify_MethodWithNonMethodType(t *testing.T) {
    u32 := ir.IntMode(32, false)
    prog := NewProgram()

    NewEntity(EntMethod, "oops", NewPrimitive(u32), prog.SegmentType(SegGlobal))
    require.False(t, Verify(prog, nil))
}

func TestVerify_ThreadLocalRestrictions(t *testing.T) {
    u32 := ir.IntMode(32, false)
    prog := NewProgram()

    /* methods must not live in the thread-local segment */
    NewEntity(EntMethod, "tlsfn", NewMethod(nil, nil), prog.SegmentType(SegThreadLocal))
    require.False(t, Verify(prog, nil))

    /* neither do constants */
    prog = NewProgram()
    c := NewEntity(EntNormal, "tlsconst", NewPrimitive(u32), prog.SegmentType(SegThreadLocal))
    c.SetLinkage(LinkConstant)
    require.False(t, Verify(prog, nil))
}

func TestVerify_ConstructorLinkage(t *testing.T) {
    prog := NewProgram()

    ctor := NewEntity(EntMethod, "init", NewMethod(nil, nil), prog.SegmentType(SegConstructors))
    require.False(t, Verify(prog, nil))

    ctor.SetLinkage(LinkHiddenUser)
    require.True(t, Verify(prog, nil))

    /* ctors are referenced by position, never by name */
    ctor.SetLdName("init$1")
    require.False(t, Verify(prog, nil))
}

func TestVerify_InitializerModeMismatch(t *testing.T) {
    u32 := ir.IntMode(32, false)
    u64 := ir.IntMode(64, false)
    prog := NewProgram()

    v := NewEntity(EntNormal, "wide", NewPrimitive(u32), prog.SegmentType(SegGlobal))
    v.SetInitializer(TarvalInit { Val: ir.MakeInt(u64, 1) })
    require.False(t, Verify(prog, nil))
}

func TestVerify_ArrayInitializerBounds(t *testing.T) {
    u32 := ir.IntMode(32, false)
    prog := NewProgram()

    at := NewArray(NewPrimitive(u32), 2)
    v := NewEntity(EntNormal, "pair", at, prog.SegmentType(SegGlobal))

    v.SetInitializer(CompoundInit { Entries: []Initializer {
        TarvalInit { Val: ir.MakeInt(u32, 1) },
        TarvalInit { Val: ir.MakeInt(u32, 2) },
    }})
    require.True(t, Verify(prog, nil))

    v.SetInitializer(CompoundInit { Entries: []Initializer {
        TarvalInit { Val: ir.MakeInt(u32, 1) },
        TarvalInit { Val: ir.MakeInt(u32, 2) },
        TarvalInit { Val: ir.MakeInt(u32, 3) },
    }})
    require.False(t, Verify(prog, nil))
}

func TestVerify_AliasNeedsTarget(t *testing.T) {
    u32 := ir.IntMode(32, false)
    prog := NewProgram()

    a := NewEntity(EntAlias, "other", NewPrimitive(u32), prog.SegmentType(SegGlobal))
    require.False(t, Verify(prog, nil))

    tgt := NewEntity(EntNormal, "real", NewPrimitive(u32), prog.SegmentType(SegGlobal))
    a.SetAliased(tgt)
    require.True(t, Verify(prog, nil))
}

func TestVerify_GraphEntityBackPointer(t *testing.T) {
    prog := NewProgram()

    mtp := NewMethod(nil, nil)
    m := NewEntity(EntMethod, "fn", mtp, prog.SegmentType(SegGlobal))
    g := ir.NewGraph("fn", mtp)
    m.SetGraph(g)
    require.True(t, Verify(prog, nil))

    /* a stolen graph is a violation */
    g.SetEntity(NewEntity(EntMethod, "thief", mtp, prog.SegmentType(SegGlobal)))
    require.False(t, Verify(prog, nil))
}
