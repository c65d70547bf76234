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

package ir

// Relation is the comparison relation attached to Cmp nodes, a bitset of
// the three elementary outcomes.
type Relation uint8

const (
    RelFalse   Relation = 0
    RelEqual   Relation = 1 << 0
    RelLess    Relation = 1 << 1
    RelGreater Relation = 1 << 2

    RelLessEqual    = RelLess | RelEqual
    RelGreaterEqual = RelGreater | RelEqual
    RelLessGreater  = RelLess | RelGreater
    RelTrue         = RelEqual | RelLess | RelGreater
)

// Negated returns the complement relation.
func (self Relation) Negated() Relation {
    return self ^ RelTrue
}

// Inversed swaps the operand order: a REL b becomes b REL' a.
func (self Relation) Inversed() Relation {
    r := self & RelEqual
    if self & RelLess != 0 {
        r |= RelGreater
    }
    if self & RelGreater != 0 {
        r |= RelLess
    }
    return r
}

// WithoutEqual strips the equality outcome, turning <= into < etc.
func (self Relation) WithoutEqual() Relation {
    return self &^ RelEqual
}

// IsOrdered reports whether the relation involves an ordering outcome;
// plain inequality (!=) does not count as ordered.
func (self Relation) IsOrdered() bool {
    return self & RelLessGreater != 0 && self != RelLessGreater
}

func (self Relation) String() string {
    switch self {
        case RelFalse        : return "false"
        case RelEqual        : return "=="
        case RelLess         : return "<"
        case RelGreater      : return ">"
        case RelLessEqual    : return "<="
        case RelGreaterEqual : return ">="
        case RelLessGreater  : return "!="
        case RelTrue         : return "true"
        default              : return "?"
    }
}
