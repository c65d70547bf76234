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

// EntityKind discriminates the entity variants.
type EntityKind uint8

const (
    EntNormal EntityKind = iota
    EntMethod
    EntParameter
    EntAlias
    EntLabel
    EntCompoundMember
)

func (self EntityKind) String() string {
    switch self {
        case EntNormal         : return "normal"
        case EntMethod         : return "method"
        case EntParameter      : return "parameter"
        case EntAlias          : return "alias"
        case EntLabel          : return "label"
        case EntCompoundMember : return "compound member"
        default                : panic("unreachable")
    }
}

// Linkage is a bitset of linker-facing properties.
type Linkage uint8

const (
    LinkConstant Linkage = 1 << iota
    LinkHiddenUser
    LinkNoCodegen
    LinkWeak
    LinkMergeProbably
)

// Visibility of an entity.
type Visibility uint8

const (
    VisLocal Visibility = iota
    VisExternal
    VisExternalPrivate
)

// Entity is a named program object: a global, a method, a parameter, a
// compound member, an alias or a label. Compound members report their
// compound as owner.
type Entity struct {
    kind       EntityKind
    name       string
    ldname     string
    typ        *Type
    owner      *Type
    linkage    Linkage
    visibility Visibility
    graph      *ir.Graph
    init       Initializer
    aliased    *Entity
    overrides  []*Entity
    paramPos   int
}

// NewEntity creates an entity of the given kind and appends it to the
// owner's member list.
func NewEntity(kind EntityKind, name string, typ *Type, owner *Type) *Entity {
    e := &Entity {
        kind  : kind,
        name  : name,
        typ   : typ,
        owner : owner,
    }
    if owner != nil {
        owner.members = append(owner.members, e)
    }
    return e
}

func (self *Entity) Kind() EntityKind { return self.kind }
func (self *Entity) Name() string     { return self.name }
func (self *Entity) Type() *Type      { return self.typ }
func (self *Entity) Owner() *Type     { return self.owner }

func (self *Entity) SetType(t *Type) { self.typ = t }

// LdName is the linker-visible name; empty means derived from Name.
func (self *Entity) LdName() string        { return self.ldname }
func (self *Entity) SetLdName(name string) { self.ldname = name }

func (self *Entity) Linkage() Linkage        { return self.linkage }
func (self *Entity) SetLinkage(l Linkage)    { self.linkage = l }
func (self *Entity) Visibility() Visibility  { return self.visibility }
func (self *Entity) SetVisibility(v Visibility) { self.visibility = v }

// Graph returns the method body, or nil when the method has none.
func (self *Entity) Graph() *ir.Graph { return self.graph }

// SetGraph attaches a method body; the graph's entity is pointed back at
// this entity.
func (self *Entity) SetGraph(g *ir.Graph) {
    self.graph = g
    if g != nil {
        g.SetEntity(self)
    }
}

func (self *Entity) Initializer() Initializer      { return self.init }
func (self *Entity) SetInitializer(in Initializer) { self.init = in }

// Aliased is the target of an alias entity.
func (self *Entity) Aliased() *Entity        { return self.aliased }
func (self *Entity) SetAliased(e *Entity)    { self.aliased = e }

// Overrides is the list of superclass methods this entity overrides.
func (self *Entity) Overrides() []*Entity { return self.overrides }

// AddOverride records that this entity overrides e.
func (self *Entity) AddOverride(e *Entity) {
    self.overrides = append(self.overrides, e)
}

// ParamPos is the position of a parameter entity in its method frame.
func (self *Entity) ParamPos() int        { return self.paramPos }
func (self *Entity) SetParamPos(pos int)  { self.paramPos = pos }

func (self *Entity) String() string {
    return fmt.Sprintf("%s entity %q", self.kind, self.name)
}
