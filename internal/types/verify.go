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
    `tlog.app/go/tlog`

    `github.com/graphir/graphir/internal/ir`
)

// Verifier checks every registered type and entity against the structural
// invariants. It reports one warning line per violation and never mutates.
type Verifier struct {
    prog *Program
    log  *tlog.Logger
    ok   bool
}

// NewVerifier creates a verifier reporting on the given logger.
func NewVerifier(p *Program, lg *tlog.Logger) *Verifier {
    return &Verifier { prog: p, log: lg, ok: true }
}

// Verify runs all checks and returns the aggregate result.
func Verify(p *Program, lg *tlog.Logger) bool {
    v := NewVerifier(p, lg)
    p.WalkTypes(v.checkType, v.checkEntity)
    return v.ok
}

func (self *Verifier) report(msg string, args ...any) {
    self.ok = false
    if self.log != nil {
        self.log.Printf("verify: "+msg, args...)
    }
}

func (self *Verifier) checkType(t *Type) {
    switch t.kind {
        case KindPrimitive, KindPointer:
            if t.mode == nil {
                self.report("%v has no mode", t)
            }

        case KindArray:
            if !t.bounded {
                self.report("%v has no bounds", t)
            }

        case KindStruct, KindUnion, KindClass, KindSegment:
            for _, e := range t.members {
                if e.owner != t {
                    self.report("%v is a member of %v but reports owner %v", e, t, e.owner)
                }
            }
    }

    if self.prog.IsSegment(t) {
        self.checkSegment(t)
    }
}

func (self *Verifier) checkSegment(t *Type) {
    ctors := t == self.prog.SegmentType(SegConstructors) || t == self.prog.SegmentType(SegDestructors)
    tls := t == self.prog.SegmentType(SegThreadLocal)

    for _, e := range t.members {
        if ctors {
            if e.linkage & LinkHiddenUser == 0 {
                self.report("%v in segment %q lacks hidden-user linkage", e, t.name)
            }
            if e.ldname != "" {
                self.report("%v in segment %q has an ld-name", e, t.name)
            }
        }
        if tls {
            if e.kind == EntMethod {
                self.report("%v is a method in the thread-local segment", e)
            }
            if e.linkage & LinkConstant != 0 {
                self.report("%v is constant in the thread-local segment", e)
            }
        }
    }
}

func (self *Verifier) checkEntity(e *Entity) {
    if e.typ == nil {
        self.report("%v has no type", e)
        return
    }

    switch e.kind {
        case EntCompoundMember:
            if e.owner == nil || !e.owner.IsCompound() {
                self.report("%v is not owned by a compound", e)
            }

        case EntAlias:
            if e.owner == nil || !self.prog.IsSegment(e.owner) {
                self.report("%v lives outside a segment", e)
            }
            if e.aliased == nil {
                self.report("%v aliases nothing", e)
            }

        case EntParameter:
            if e.owner == nil || !e.owner.IsFrame() {
                self.report("%v lives outside a method frame", e)
            }

        case EntLabel:
            if e.typ.kind != KindCode {
                self.report("%v has non-code type %v", e, e.typ)
            }

        case EntMethod:
            self.checkMethod(e)
    }

    self.checkOverrides(e)
    self.checkInitializer(e, e.init, e.typ)
}

func (self *Verifier) checkMethod(e *Entity) {
    if e.typ.kind != KindMethod {
        self.report("%v has non-method type %v", e, e.typ)
    }

    if g := e.graph; g != nil {
        if g.Entity() != any(e) {
            self.report("%v owns a graph whose entity is not itself", e)
        }
        if e.linkage & LinkNoCodegen != 0 && e.visibility == VisLocal {
            self.report("%v has no-codegen linkage but local visibility", e)
        }
    }
}

func (self *Verifier) checkOverrides(e *Entity) {
    if len(e.overrides) == 0 {
        return
    }

    if e.kind != EntMethod || e.owner == nil || e.owner.kind != KindClass {
        self.report("%v overrides but is not a class method", e)
        return
    }

    for _, o := range e.overrides {
        if o.kind != EntMethod {
            self.report("%v overrides non-method %v", e, o)
        }
        if o.owner == e.owner {
            self.report("%v overrides %v within the same class", e, o)
        }
    }
}

func (self *Verifier) checkInitializer(e *Entity, in Initializer, t *Type) {
    switch iv := in.(type) {
        case nil:
            return

        case TarvalInit:
            if t.mode != nil && iv.Val.Mode() != t.mode {
                self.report("%v: initializer mode %v does not match type mode %v", e, iv.Val.Mode(), t.mode)
            }

        case NodeInit:
            self.checkNodeInit(e, iv.Node, t)

        case CompoundInit:
            self.checkCompoundInit(e, iv, t)
    }
}

func (self *Verifier) checkNodeInit(e *Entity, n *ir.Node, t *Type) {
    if n == nil {
        self.report("%v: empty const-code initializer", e)
        return
    }
    if t.mode != nil && n.Mode() != t.mode {
        self.report("%v: initializer node mode %v does not match type mode %v", e, n.Mode(), t.mode)
    }
    if n.Graph() != self.prog.ConstCode() {
        self.report("%v: initializer node %v lives outside the const-code graph", e, n)
    }
}

func (self *Verifier) checkCompoundInit(e *Entity, iv CompoundInit, t *Type) {
    switch t.kind {
        case KindArray:
            if t.bounded && len(iv.Entries) > t.size {
                self.report("%v: %d initializer entries for %d array elements", e, len(iv.Entries), t.size)
                return
            }
            for _, sub := range iv.Entries {
                self.checkInitializer(e, sub, t.elem)
            }

        case KindStruct, KindUnion, KindClass:
            if len(iv.Entries) > len(t.members) {
                self.report("%v: %d initializer entries for %d members", e, len(iv.Entries), len(t.members))
                return
            }
            for i, sub := range iv.Entries {
                self.checkInitializer(e, sub, t.members[i].typ)
            }

        default:
            self.report("%v: compound initializer for %v", e, t)
    }
}
