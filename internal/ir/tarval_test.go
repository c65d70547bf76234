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
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/stretchr/testify/require`
)

func TestTarval_Wrapping(t *testing.T) {
    u32 := IntMode(32, false)

    a := MakeInt(u32, 0xfffffffe)
    b := MakeInt(u32, 3)

    require.Equal(t, uint64(1), a.Add(b).Uint())
    require.Equal(t, uint64(0xfffffffb), a.Sub(b).Uint())
    require.Equal(t, uint64(0xfffffffa), a.Mul(b).Uint())
    require.Equal(t, uint64(2), b.Neg().Add(MakeInt(u32, 5)).Uint())
}

func TestTarval_SignedDivision(t *testing.T) {
    i32 := IntMode(32, true)

    a := MakeInt(i32, uint64(0xfffffff9))    /* -7 */
    b := MakeInt(i32, 2)

    require.Equal(t, int64(-3), a.Div(b).Int())
    require.Equal(t, int64(-1), a.Mod(b).Int())
}

func TestTarval_ShrsBroadcastsSign(t *testing.T) {
    i32 := IntMode(32, true)
    u32 := IntMode(32, false)

    v := MakeInt(i32, 0x80000000)
    require.Equal(t, uint64(0xff800000), v.Shrs(MakeInt(u32, 8)).Uint())
    require.Equal(t, int64(-1), v.Shrs(MakeInt(u32, 31)).Int())

    /* a positive value shifts in zeroes */
    p := MakeInt(i32, 0x40000000)
    require.Equal(t, uint64(0x00400000), p.Shrs(MakeInt(u32, 8)).Uint())
}

func TestTarval_Convert(t *testing.T) {
    i16 := IntMode(16, true)
    u32 := IntMode(32, false)
    i64 := IntMode(64, true)

    /* widening follows the signedness of the source */
    v := MakeInt(i16, 0x8000)
    require.Equal(t, uint64(0xffff8000), v.Convert(u32).Uint())
    require.Equal(t, int64(-32768), v.Convert(i64).Int())

    /* narrowing truncates */
    w := MakeInt(u32, 0x12345678)
    require.Equal(t, uint64(0x5678), w.Convert(i16).Uint())
}

func TestTarval_Compare(t *testing.T) {
    i8 := IntMode(8, true)
    u8 := IntMode(8, false)

    require.Equal(t, RelLess, MakeInt(i8, 0xff).Compare(MakeInt(i8, 1)))
    require.Equal(t, RelGreater, MakeInt(u8, 0xff).Compare(MakeInt(u8, 1)))
    require.Equal(t, RelEqual, MakeInt(u8, 0x42).Compare(MakeInt(u8, 0x42)))
}

func TestTarval_RandomizedAgainstHost(t *testing.T) {
    gofakeit.Seed(0x13245768)
    u32 := IntMode(32, false)
    i32 := IntMode(32, true)

    for i := 0; i < 1000; i++ {
        x := uint64(gofakeit.Uint32())
        y := uint64(gofakeit.Uint32())

        a, b := MakeInt(u32, x), MakeInt(u32, y)
        require.Equal(t, uint64(uint32(x) + uint32(y)), a.Add(b).Uint())
        require.Equal(t, uint64(uint32(x) - uint32(y)), a.Sub(b).Uint())
        require.Equal(t, uint64(uint32(x) * uint32(y)), a.Mul(b).Uint())
        require.Equal(t, uint64(uint32(x) & uint32(y)), a.And(b).Uint())
        require.Equal(t, uint64(uint32(x) | uint32(y)), a.Or(b).Uint())
        require.Equal(t, uint64(uint32(x) ^ uint32(y)), a.Eor(b).Uint())

        s, n := MakeInt(i32, x), uint64(gofakeit.Number(0, 31))
        require.Equal(t, int64(int32(x) >> n), s.Shrs(MakeInt(u32, n)).Int())
        require.Equal(t, uint64(uint32(x) >> n), a.Shr(MakeInt(u32, n)).Uint())
        require.Equal(t, uint64(uint32(x) << n), a.Shl(MakeInt(u32, n)).Uint())
    }
}

func TestTarval_NullAndOne(t *testing.T) {
    u16 := IntMode(16, false)

    require.True(t, MakeInt(u16, 0).IsNull())
    require.True(t, MakeInt(u16, 0x10000).IsNull())
    require.True(t, MakeInt(u16, 1).IsOne())
    require.False(t, MakeInt(u16, 2).IsOne())
}
