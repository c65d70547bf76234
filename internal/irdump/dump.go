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
    `fmt`
    `io`
    `strings`

    `github.com/davecgh/go-spew/spew`

    `github.com/graphir/graphir/internal/ir`
)

// Fdump writes a textual rendition of the graph, one section per Block
// in discovery order, one line per node.
func Fdump(w io.Writer, g *ir.Graph) {
    fmt.Fprintf(w, "graph %s {\n", g.Name())

    g.WalkBlockwise(func(n *ir.Node) {
        if n.IsBlock() {
            fmt.Fprintf(w, "  %v%s\n", n, predList(n))
        } else {
            fmt.Fprintf(w, "    %s\n", nodeLine(n))
        }
    })

    fmt.Fprintf(w, "}\n")
}

// Sdump renders the graph into a string.
func Sdump(g *ir.Graph) string {
    var sb strings.Builder
    Fdump(&sb, g)
    return sb.String()
}

func predList(blk *ir.Node) string {
    if blk.Arity() == 0 {
        return ""
    }

    parts := make([]string, blk.Arity())
    for i := 0; i < blk.Arity(); i++ {
        parts[i] = fmt.Sprint(blk.In(i))
    }
    return " <- [" + strings.Join(parts, ", ") + "]"
}

func nodeLine(n *ir.Node) string {
    var sb strings.Builder
    fmt.Fprintf(&sb, "%v", n)

    switch n.Op() {
        case ir.OpConst:
            fmt.Fprintf(&sb, " %v", n.ConstValue())
        case ir.OpProj:
            fmt.Fprintf(&sb, " #%d", n.ProjNum())
        case ir.OpCmp:
            fmt.Fprintf(&sb, " %v", n.CmpRelation())
    }

    if n.Arity() != 0 {
        parts := make([]string, n.Arity())
        for i := 0; i < n.Arity(); i++ {
            parts[i] = fmt.Sprint(n.In(i))
        }
        fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))
    }
    return sb.String()
}

// Explain renders one node line, for use from a debugger or a failing
// test. For a Const it appends a spew dump of the tarval; the attribute
// payloads of other nodes are not dumped.
func Explain(n *ir.Node) string {
    if n.Op() == ir.OpConst {
        return fmt.Sprintf("%s\n%s", nodeLine(n), spew.Sdump(n.ConstValue()))
    }
    return nodeLine(n)
}
