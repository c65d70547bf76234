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

func minint(a int, b int) int {
    if a < b {
        return a
    } else {
        return b
    }
}

func removeNode(s []*Node, i int) []*Node {
    return append(s[:i], s[i+1:]...)
}

func containsNode(s []*Node, v *Node) bool {
    for _, n := range s {
        if n == v {
            return true
        }
    }
    return false
}
