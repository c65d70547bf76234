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
    `os`

    `github.com/ajstarks/svgo`

    `github.com/graphir/graphir/internal/ir`
)

const (
    _RowH  = 24
    _ColW  = 9
    _BoxPad = 12
)

type _BlockBox struct {
    blk   *ir.Node
    lines []string
    x     int
    y     int
    w     int
    h     int
}

// DrawCFG renders the Block structure of a graph into an SVG file, one
// box per Block with its member nodes, and one arrow per control edge.
func DrawCFG(fn string, g *ir.Graph) {
    var boxes []*_BlockBox
    byblk := make(map[*ir.Node]*_BlockBox)

    g.WalkBlockwise(func(n *ir.Node) {
        if n.IsBlock() {
            b := &_BlockBox { blk: n, lines: []string { fmt.Sprint(n) } }
            byblk[n] = b
            boxes = append(boxes, b)
        } else {
            b := byblk[n.Block()]
            if b != nil {
                b.lines = append(b.lines, nodeLine(n))
            }
        }
    })

    /* one column of boxes, widths from the longest line */
    y := 40
    maxw := 0
    for _, b := range boxes {
        w := 0
        for _, s := range b.lines {
            if len(s) > w {
                w = len(s)
            }
        }
        b.x = 40
        b.y = y
        b.w = w * _ColW + 2 * _BoxPad
        b.h = len(b.lines) * _RowH + 2 * _BoxPad
        y += b.h + 50
        if b.w > maxw {
            maxw = b.w
        }
    }

    fp, err := os.OpenFile(fn, os.O_RDWR | os.O_CREATE | os.O_TRUNC, 0644)
    if err != nil {
        panic(err)
    }

    p := svg.New(fp)
    p.Start(maxw + 400, y + 40)
    if _, err = fp.WriteString(`<rect width="100%" height="100%" fill="white" />` + "\n"); err != nil {
        panic(err)
    }

    for _, b := range boxes {
        p.Rect(b.x, b.y, b.w, b.h, "fill:none;stroke:black")
        for i, s := range b.lines {
            style := "fill:black;font-size:16px;font-family:monospace"
            if i == 0 {
                style = "fill:gray;font-size:16px;font-family:monospace"
            }
            p.Text(b.x + _BoxPad, b.y + _BoxPad + (i + 1) * _RowH - 8, s, style)
        }
    }

    /* control edges, drawn from the side of the source box */
    for _, b := range boxes {
        for i := 0; i < b.blk.Arity(); i++ {
            src := byblk[ir.CFGPredBlock(b.blk, i)]
            if src == nil {
                continue
            }
            x1 := src.x + src.w
            y1 := src.y + src.h / 2
            x2 := b.x + b.w + 20
            y2 := b.y + b.h / 2
            p.Line(x1, y1, x2 + 10, y1, "stroke:gray")
            p.Line(x2 + 10, y1, x2 + 10, y2, "stroke:gray")
            p.Line(x2 + 10, y2, b.x + b.w, y2, "stroke:gray")
            p.Circle(b.x + b.w, y2, 3, "fill:gray")
        }
    }

    p.End()
    if err = fp.Close(); err != nil {
        panic(err)
    }
}
