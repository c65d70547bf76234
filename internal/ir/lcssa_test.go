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

    `github.com/stretchr/testify/require`
)

func TestLCSSA_RoutesLoopValueThroughExitPhi(t *testing.T) {
    g, _, _, exit, iphi, ret := buildCounted(t)

    require.Same(t, iphi, ret.In(1))
    g.AssureLCSSA()

    /* the Return now goes through a Phi sitting in the exit Block */
    closed := ret.In(1)
    require.Equal(t, OpPhi, closed.Op())
    require.Same(t, exit, closed.Block())
    require.Equal(t, exit.Arity(), closed.Arity())
    require.Same(t, iphi, closed.In(0))

    require.True(t, g.HasProperty(PropLCSSA))
}

func TestLCSSA_LeavesClosedGraphsAlone(t *testing.T) {
    g, _, _, _, _, ret := buildCounted(t)

    g.AssureLCSSA()
    closed := ret.In(1)
    before := len(g.Nodes())

    g.InvalidateLoopInfo()
    g.ClearProperty(PropLCSSA)
    g.AssureLCSSA()

    require.Same(t, closed, ret.In(1))
    require.Equal(t, before, len(g.Nodes()))
}

func TestLCSSA_UsesInsideTheLoopAreUntouched(t *testing.T) {
    g, _, body, _, iphi, _ := buildCounted(t)
    g.AssureLCSSA()

    /* the increment in the loop body still reads the Phi directly */
    var inc *Node
    for _, n := range g.Nodes() {
        if n.Op() == OpAdd && n.Block() == body {
            inc = n
        }
    }
    require.NotNil(t, inc)
    require.Same(t, iphi, inc.In(0))
}
