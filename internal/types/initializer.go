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

// Initializer is the initial value of an entity: a tarval, a const-code
// node, or a compound of nested initializers.
type Initializer interface {
    isInitializer()
}

// TarvalInit initializes with a constant value.
type TarvalInit struct {
    Val ir.Tarval
}

// NodeInit initializes with a node of the const-code graph.
type NodeInit struct {
    Node *ir.Node
}

// CompoundInit initializes a compound or array member-wise.
type CompoundInit struct {
    Entries []Initializer
}

func (TarvalInit) isInitializer()   {}
func (NodeInit) isInitializer()     {}
func (CompoundInit) isInitializer() {}
