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
    `github.com/graphir/graphir/internal/ir`
)

// Segment identifies one of the linker segments modeled as compound types.
type Segment uint8

const (
    SegGlobal Segment = iota
    SegConstructors
    SegDestructors
    SegThreadLocal
    SegJcr
    segMax
)

func (self Segment) String() string {
    switch self {
        case SegGlobal       : return "global"
        case SegConstructors : return "constructors"
        case SegDestructors  : return "destructors"
        case SegThreadLocal  : return "thread-local"
        case SegJcr          : return "jcr"
        default              : panic("unreachable")
    }
}

// Program holds every type and graph of a compilation unit, the segment
// compounds, and the const-code graph initializer nodes live in.
type Program struct {
    types     []*Type
    graphs    []*ir.Graph
    segments  [segMax]*Type
    constCode *ir.Graph
}

// NewProgram creates an empty program with its segment skeleton and the
// const-code graph.
func NewProgram() *Program {
    p := &Program {
        constCode: ir.NewGraph("$const-code", nil),
    }
    for s := Segment(0); s < segMax; s++ {
        p.segments[s] = NewCompound(KindSegment, s.String())
        p.types = append(p.types, p.segments[s])
    }
    return p
}

// SegmentType returns the compound type of a segment.
func (self *Program) SegmentType(s Segment) *Type {
    return self.segments[s]
}

// IsSegment reports whether the type is one of the program's segments.
func (self *Program) IsSegment(t *Type) bool {
    for _, s := range self.segments {
        if s == t {
            return true
        }
    }
    return false
}

// ConstCode is the graph that owns nodes used as initializer values.
func (self *Program) ConstCode() *ir.Graph {
    return self.constCode
}

// AddType registers a type for walking.
func (self *Program) AddType(t *Type) *Type {
    self.types = append(self.types, t)
    return t
}

// AddGraph registers a method graph.
func (self *Program) AddGraph(g *ir.Graph) *ir.Graph {
    self.graphs = append(self.graphs, g)
    return g
}

// Graphs returns every registered method graph.
func (self *Program) Graphs() []*ir.Graph {
    return self.graphs
}

// WalkTypes invokes the callbacks on every registered type and on every
// entity owned by one, each exactly once.
func (self *Program) WalkTypes(tf func(*Type), ef func(*Entity)) {
    seen := make(map[*Type]bool)

    var walk func(t *Type)
    walk = func(t *Type) {
        if t == nil || seen[t] {
            return
        }
        seen[t] = true

        if tf != nil {
            tf(t)
        }

        walk(t.elem)
        for _, p := range t.params {
            walk(p)
        }
        for _, r := range t.results {
            walk(r)
        }

        for _, e := range t.members {
            if ef != nil {
                ef(e)
            }
            walk(e.typ)
        }
    }

    for _, t := range self.types {
        walk(t)
    }
}
