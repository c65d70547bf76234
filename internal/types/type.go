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
    `fmt`

    `github.com/graphir/graphir/internal/ir`
)

// TypeKind discriminates the type variants.
type TypeKind uint8

const (
    KindPrimitive TypeKind = iota
    KindPointer
    KindArray
    KindStruct
    KindUnion
    KindClass
    KindMethod
    KindCode
    KindSegment
)

func (self TypeKind) String() string {
    switch self {
        case KindPrimitive : return "primitive"
        case KindPointer   : return "pointer"
        case KindArray     : return "array"
        case KindStruct    : return "struct"
        case KindUnion     : return "union"
        case KindClass     : return "class"
        case KindMethod    : return "method"
        case KindCode      : return "code"
        case KindSegment   : return "segment"
        default            : panic("unreachable")
    }
}

// Type is a program type. Compounds own their member entities; method
// types carry the parameter and result lists the lowering rewrites.
type Type struct {
    kind    TypeKind
    name    string
    mode    *ir.Mode
    elem    *Type
    size    int
    bounded bool
    members []*Entity
    params  []*Type
    results []*Type
    lowered bool
    frame   bool
}

func (self *Type) Kind() TypeKind { return self.kind }
func (self *Type) Name() string   { return self.name }
func (self *Type) Mode() *ir.Mode { return self.mode }
func (self *Type) Elem() *Type    { return self.elem }

func (self *Type) IsCompound() bool {
    return self.kind == KindStruct || self.kind == KindUnion || self.kind == KindClass || self.kind == KindSegment
}

func (self *Type) String() string {
    if self.name != "" {
        return fmt.Sprintf("%s %s", self.kind, self.name)
    } else {
        return self.kind.String()
    }
}

// NewPrimitive creates a primitive type of the given mode.
func NewPrimitive(m *ir.Mode) *Type {
    return &Type { kind: KindPrimitive, name: m.Name(), mode: m }
}

// NewPointer creates a pointer to elem, of the reference mode.
func NewPointer(elem *Type) *Type {
    return &Type { kind: KindPointer, mode: ir.ModeP, elem: elem }
}

// NewArray creates an array of n elements. n < 0 builds an array with no
// bounds, which the verifier rejects.
func NewArray(elem *Type, n int) *Type {
    return &Type { kind: KindArray, elem: elem, size: n, bounded: n >= 0 }
}

func (self *Type) ArraySize() int    { return self.size }
func (self *Type) ArrayBounded() bool { return self.bounded }

// NewCompound creates an empty struct, union, class or segment type.
func NewCompound(kind TypeKind, name string) *Type {
    if kind != KindStruct && kind != KindUnion && kind != KindClass && kind != KindSegment {
        panic(fmt.Sprintf("types: %s is not a compound kind", kind))
    }
    return &Type { kind: kind, name: name }
}

// NewFrame creates the stack frame compound of a method. Parameter
// entities live only in frames.
func NewFrame(name string) *Type {
    return &Type { kind: KindStruct, name: name, frame: true }
}

// IsFrame reports whether the compound is a method frame.
func (self *Type) IsFrame() bool {
    return self.frame
}

// NewCode creates a code type, the type of Label entities.
func NewCode() *Type {
    return &Type { kind: KindCode }
}

// Members returns the member entities of a compound.
func (self *Type) Members() []*Entity {
    return self.members
}

/* method types */

// NewMethod creates a method type from parameter and result type lists.
func NewMethod(params []*Type, results []*Type) *Type {
    return &Type {
        kind    : KindMethod,
        params  : append([]*Type(nil), params...),
        results : append([]*Type(nil), results...),
    }
}

func (self *Type) ParamCount() int  { return len(self.params) }
func (self *Type) ResCount() int    { return len(self.results) }
func (self *Type) Param(i int) *Type { return self.params[i] }
func (self *Type) Res(i int) *Type   { return self.results[i] }

// Lowered reports whether this method type is the product of a lowering,
// making repeated lowering a no-op.
func (self *Type) Lowered() bool    { return self.lowered }
func (self *Type) MarkLowered()     { self.lowered = true }
