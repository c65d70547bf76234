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

import (
    `fmt`
    `math`
)

// Tarval is a mode-tagged constant value. Integer tarvals store the value
// truncated to the mode width; the sign bit is re-extended on demand.
// Float tarvals store an IEEE double. Tarvals are immutable.
type Tarval struct {
    mode *Mode
    bits uint64
    fval float64
}

// MakeInt builds an integer tarval of the given mode from a host value,
// truncating to the mode width.
func MakeInt(m *Mode, v uint64) Tarval {
    if !m.IsInt() && !m.IsRef() && m.kind != KindBool {
        panic(fmt.Sprintf("ir: MakeInt of non-integer mode %s", m))
    }
    return Tarval { mode: m, bits: v & m.mask() }
}

// MakeFloat builds a float tarval.
func MakeFloat(m *Mode, v float64) Tarval {
    if !m.IsFloat() {
        panic(fmt.Sprintf("ir: MakeFloat of non-float mode %s", m))
    }
    return Tarval { mode: m, fval: v }
}

// MakeBool builds a mode_b tarval.
func MakeBool(v bool) Tarval {
    if v {
        return Tarval { mode: ModeB, bits: 1 }
    } else {
        return Tarval { mode: ModeB, bits: 0 }
    }
}

func (self Tarval) Mode() *Mode  { return self.mode }
func (self Tarval) Uint() uint64 { return self.bits }

// Int returns the value sign-extended to the host width when the mode is
// signed.
func (self Tarval) Int() int64 {
    if self.mode.signed && self.bits & self.mode.signbit() != 0 {
        return int64(self.bits | ^self.mode.mask())
    } else {
        return int64(self.bits)
    }
}

func (self Tarval) Float() float64 {
    return self.fval
}

// IsNull reports whether the value is the zero of its mode.
func (self Tarval) IsNull() bool {
    if self.mode.IsFloat() {
        return self.fval == 0
    } else {
        return self.bits == 0
    }
}

func (self Tarval) IsOne() bool {
    return !self.mode.IsFloat() && self.bits == 1
}

func (self Tarval) String() string {
    if self.mode.IsFloat() {
        return fmt.Sprintf("%g[%s]", self.fval, self.mode)
    } else if self.mode.signed {
        return fmt.Sprintf("%d[%s]", self.Int(), self.mode)
    } else {
        return fmt.Sprintf("%#x[%s]", self.bits, self.mode)
    }
}

func (self Tarval) check(v Tarval) {
    if self.mode != v.mode {
        panic(fmt.Sprintf("ir: tarval mode mismatch: %s != %s", self.mode, v.mode))
    }
}

func (self Tarval) wrap(v uint64) Tarval {
    return Tarval { mode: self.mode, bits: v & self.mode.mask() }
}

func (self Tarval) Add(v Tarval) Tarval {
    self.check(v)
    if self.mode.IsFloat() {
        return MakeFloat(self.mode, self.fval + v.fval)
    }
    return self.wrap(self.bits + v.bits)
}

func (self Tarval) Sub(v Tarval) Tarval {
    self.check(v)
    if self.mode.IsFloat() {
        return MakeFloat(self.mode, self.fval - v.fval)
    }
    return self.wrap(self.bits - v.bits)
}

func (self Tarval) Mul(v Tarval) Tarval {
    self.check(v)
    if self.mode.IsFloat() {
        return MakeFloat(self.mode, self.fval * v.fval)
    }
    return self.wrap(self.bits * v.bits)
}

// Div is the truncating division of the mode. Division by zero panics, the
// caller is expected to have checked.
func (self Tarval) Div(v Tarval) Tarval {
    self.check(v)
    if self.mode.IsFloat() {
        return MakeFloat(self.mode, self.fval / v.fval)
    }
    if v.bits == 0 {
        panic("ir: tarval division by zero")
    }
    if self.mode.signed {
        return self.wrap(uint64(self.Int() / v.Int()))
    }
    return self.wrap(self.bits / v.bits)
}

func (self Tarval) Mod(v Tarval) Tarval {
    self.check(v)
    if v.bits == 0 {
        panic("ir: tarval division by zero")
    }
    if self.mode.signed {
        return self.wrap(uint64(self.Int() % v.Int()))
    }
    return self.wrap(self.bits % v.bits)
}

func (self Tarval) And(v Tarval) Tarval { self.check(v); return self.wrap(self.bits & v.bits) }
func (self Tarval) Or(v Tarval) Tarval  { self.check(v); return self.wrap(self.bits | v.bits) }
func (self Tarval) Eor(v Tarval) Tarval { self.check(v); return self.wrap(self.bits ^ v.bits) }
func (self Tarval) Not() Tarval         { return self.wrap(^self.bits) }

func (self Tarval) Neg() Tarval {
    if self.mode.IsFloat() {
        return MakeFloat(self.mode, -self.fval)
    }
    return self.wrap(-self.bits)
}

// Shl shifts left by the count of v (any integer mode).
func (self Tarval) Shl(v Tarval) Tarval {
    n := v.bits % uint64(self.mode.bits)
    return self.wrap(self.bits << n)
}

// Shr is the logical right shift.
func (self Tarval) Shr(v Tarval) Tarval {
    n := v.bits % uint64(self.mode.bits)
    return self.wrap(self.bits >> n)
}

// Shrs is the arithmetic right shift, broadcasting the sign bit of the
// value's own mode regardless of signedness of the mode tag.
func (self Tarval) Shrs(v Tarval) Tarval {
    n := v.bits % uint64(self.mode.bits)
    x := self.bits

    /* sign-extend to the host width first */
    if x & self.mode.signbit() != 0 {
        x |= ^self.mode.mask()
    }
    return self.wrap(uint64(int64(x) >> n))
}

// Compare yields the elementary relation between two values of the same
// mode.
func (self Tarval) Compare(v Tarval) Relation {
    self.check(v)

    if self.mode.IsFloat() {
        switch {
            case math.IsNaN(self.fval) || math.IsNaN(v.fval) : return RelFalse
            case self.fval < v.fval                          : return RelLess
            case self.fval > v.fval                          : return RelGreater
            default                                          : return RelEqual
        }
    }

    if self.mode.signed {
        a, b := self.Int(), v.Int()
        switch {
            case a < b  : return RelLess
            case a > b  : return RelGreater
            default     : return RelEqual
        }
    }

    switch {
        case self.bits < v.bits : return RelLess
        case self.bits > v.bits : return RelGreater
        default                 : return RelEqual
    }
}

// Convert changes the mode of the value. Integer narrowing truncates,
// widening sign- or zero-extends according to the source mode. Conversions
// between int and float round through the host float.
func (self Tarval) Convert(to *Mode) Tarval {
    switch {
        case to == self.mode:
            return self

        case self.mode.IsFloat() && to.IsFloat():
            return MakeFloat(to, self.fval)

        case self.mode.IsFloat():
            return MakeInt(to, uint64(int64(self.fval)))

        case to.IsFloat():
            if self.mode.signed {
                return MakeFloat(to, float64(self.Int()))
            }
            return MakeFloat(to, float64(self.bits))

        case self.mode.signed:
            return MakeInt(to, uint64(self.Int()))

        default:
            return MakeInt(to, self.bits)
    }
}
