// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintJSONEncodesIndented(t *testing.T) {
	out := captureStdout(t, func() {
		printJSON(map[string]any{"name": "caller", "count": 3})
	})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, "caller", decoded["name"])
	require.Equal(t, float64(3), decoded["count"])
	require.Contains(t, out, "\n  \"name\"")
}

func TestPrintJSONHandlesSlice(t *testing.T) {
	out := captureStdout(t, func() {
		printJSON([]string{"a", "b"})
	})

	var decoded []string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Equal(t, []string{"a", "b"}, decoded)
}
