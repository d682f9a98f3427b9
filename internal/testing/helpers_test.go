// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build cgo

package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestBackend(t *testing.T) {
	backend := SetupTestBackend(t)
	require.NotNil(t, backend)

	result := QuerySymbols(t, backend)
	require.NotNil(t, result)
	assert.Empty(t, result.Rows, "should start with no symbols")
}

func TestInsertTestSymbol(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestSymbol(t, backend, "Function:auth.go:HandleAuth", "HandleAuth", "Function", "auth.go", 10, 25)

	result := QuerySymbols(t, backend)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Function:auth.go:HandleAuth", result.Rows[0][0])
	assert.Equal(t, "HandleAuth", result.Rows[0][1])
}

func TestInsertTestFile(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestFile(t, backend, "File:auth.go", "auth.go")

	result := QueryFiles(t, backend)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "File:auth.go", result.Rows[0][0])
	assert.Equal(t, "auth.go", result.Rows[0][1])
}

func TestMultipleInserts(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestSymbol(t, backend, "Function:main.go:Main", "Main", "Function", "main.go", 5, 10)
	InsertTestSymbol(t, backend, "Function:util.go:Helper", "Helper", "Function", "util.go", 15, 20)
	InsertTestSymbol(t, backend, "Function:processor.go:Process", "Process", "Function", "processor.go", 25, 35)

	result := QuerySymbols(t, backend)
	require.Len(t, result.Rows, 3)
}

func TestEdgeInsertion(t *testing.T) {
	backend := SetupTestBackend(t)

	InsertTestFile(t, backend, "File:main.go", "main.go")
	InsertTestSymbol(t, backend, "Function:main.go:main", "main", "Function", "main.go", 1, 10)
	InsertTestSymbol(t, backend, "Function:main.go:helper", "helper", "Function", "main.go", 12, 15)

	InsertTestDefines(t, backend, "File:main.go", "Function:main.go:main")
	InsertTestCalls(t, backend, "Function:main.go:main", "Function:main.go:helper", 0.85, "same-file")
}

func TestBackendIsolation(t *testing.T) {
	backend1 := SetupTestBackend(t)
	InsertTestSymbol(t, backend1, "Function:file1.go:Test1", "Test1", "Function", "file1.go", 1, 10)

	backend2 := SetupTestBackend(t)
	result := QuerySymbols(t, backend2)
	assert.Empty(t, result.Rows, "second backend should be isolated from first")

	result1 := QuerySymbols(t, backend1)
	assert.Len(t, result1.Rows, 1)
}
