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

// Op is the opcode of a node, drawn from a closed set.
type Op uint8

const (
    OpBad Op = iota
    OpBlock
    OpPhi
    OpStart
    OpEnd
    OpReturn
    OpJmp
    OpCall
    OpProj
    OpConst
    OpSymConv
    OpAddress
    OpLoad
    OpStore
    OpAdd
    OpSub
    OpMul
    OpDiv
    OpMod
    OpDivMod
    OpShl
    OpShr
    OpShrs
    OpRotl
    OpAnd
    OpOr
    OpEor
    OpNot
    OpMinus
    OpConv
    OpCmp
    OpCond
    OpMux
    OpSel
    OpSync
    OpDummy
    OpUnknown
    OpKeep
    OpASM
    opMax
)

var opNames = [opMax]string {
    OpBad     : "Bad",
    OpBlock   : "Block",
    OpPhi     : "Phi",
    OpStart   : "Start",
    OpEnd     : "End",
    OpReturn  : "Return",
    OpJmp     : "Jmp",
    OpCall    : "Call",
    OpProj    : "Proj",
    OpConst   : "Const",
    OpSymConv : "SymConv",
    OpAddress : "Address",
    OpLoad    : "Load",
    OpStore   : "Store",
    OpAdd     : "Add",
    OpSub     : "Sub",
    OpMul     : "Mul",
    OpDiv     : "Div",
    OpMod     : "Mod",
    OpDivMod  : "DivMod",
    OpShl     : "Shl",
    OpShr     : "Shr",
    OpShrs    : "Shrs",
    OpRotl    : "Rotl",
    OpAnd     : "And",
    OpOr      : "Or",
    OpEor     : "Eor",
    OpNot     : "Not",
    OpMinus   : "Minus",
    OpConv    : "Conv",
    OpCmp     : "Cmp",
    OpCond    : "Cond",
    OpMux     : "Mux",
    OpSel     : "Sel",
    OpSync    : "Sync",
    OpDummy   : "Dummy",
    OpUnknown : "Unknown",
    OpKeep    : "Keep",
    OpASM     : "ASM",
}

func (self Op) String() string {
    if int(self) < len(opNames) && opNames[self] != "" {
        return opNames[self]
    } else {
        return "Op?"
    }
}

// IsBinop reports whether the opcode is a two-operand arithmetic or
// bitwise operation.
func (self Op) IsBinop() bool {
    switch self {
        case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpDivMod : return true
        case OpShl, OpShr, OpShrs, OpRotl                : return true
        case OpAnd, OpOr, OpEor                          : return true
        default                                          : return false
    }
}

// IsCFop reports whether the opcode produces control flow.
func (self Op) IsCFop() bool {
    switch self {
        case OpJmp, OpCond, OpReturn, OpStart, OpEnd : return true
        default                                      : return false
    }
}
