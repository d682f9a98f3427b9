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

package resolve

import "strings"

// builtins is the curated block-list spec §4.6 calls for: well-known
// standard-library and framework calls that would otherwise resolve
// (correctly or, worse, to the wrong definition) and drown the call
// graph in noise. Matched against the full callee name as written
// (so "fmt.Println" and "Println" both match via bareBuiltins below).
//
// This is not exhaustive — it is a floor, not a parser. New noise
// should be added here as it's observed, not derived mechanically.
var builtins = map[string]bool{
	// Go
	"fmt.Println": true, "fmt.Printf": true, "fmt.Print": true, "fmt.Sprintf": true,
	"fmt.Errorf": true, "fmt.Sprint": true, "fmt.Fprintf": true, "fmt.Fprintln": true,
	"errors.New": true, "errors.Is": true, "errors.As": true, "errors.Unwrap": true,
	"log.Println": true, "log.Printf": true, "log.Fatal": true, "log.Fatalf": true,
	"strings.Join": true, "strings.Split": true, "strings.Contains": true,
	"strings.TrimSpace": true, "strings.ToLower": true, "strings.ToUpper": true,
	"strconv.Itoa": true, "strconv.Atoi": true,

	// JS/TypeScript
	"console.log": true, "console.error": true, "console.warn": true, "console.debug": true,
	"console.info": true, "JSON.stringify": true, "JSON.parse": true,
	"Object.keys": true, "Object.values": true, "Object.entries": true, "Object.assign": true,
	"Array.isArray": true, "Array.from": true,
	"Promise.resolve": true, "Promise.reject": true, "Promise.all": true, "Promise.race": true,
	"setTimeout": true, "setInterval": true, "clearTimeout": true, "clearInterval": true,
	"require": true, "parseInt": true, "parseFloat": true, "encodeURIComponent": true,

	// Python
	"print": true, "len": true, "str": true, "int": true, "float": true, "bool": true,
	"list": true, "dict": true, "set": true, "tuple": true, "range": true,
	"isinstance": true, "issubclass": true, "super": true, "enumerate": true, "zip": true,
	"open": true, "sorted": true, "getattr": true, "setattr": true, "hasattr": true,

	// Java
	"System.out.println": true, "System.out.print": true, "System.exit": true,
	"String.valueOf": true, "String.format": true,
	"Arrays.asList": true, "Collections.emptyList": true, "Objects.requireNonNull": true,

	// C / C++
	"printf": true, "sprintf": true, "fprintf": true, "malloc": true, "free": true,
	"memcpy": true, "memset": true, "strlen": true, "strcpy": true,
	"std::cout": true, "std::endl": true, "std::move": true,
	"std::make_shared": true, "std::make_unique": true, "std::to_string": true,

	// C#
	"Console.WriteLine": true, "Console.Write": true, "String.Format": true,
	"Convert.ToString": true, "Convert.ToInt32": true,

	// Rust
	"println!": true, "format!": true, "vec!": true, "panic!": true, "assert!": true,
	"Box::new": true, "Some": true, "None": true, "Ok": true, "Err": true,
}

// bareBuiltins catches the unqualified tail of a builtin reference —
// the common case when a dot import, a `use` alias, or a framework
// re-export strips the package prefix before C4 ever sees the call.
var bareBuiltins = map[string]bool{
	"Println": true, "Printf": true, "Sprintf": true, "Errorf": true,
	"println": true, "print": true, "log": true, "error": true, "warn": true,
	"malloc": true, "free": true, "memcpy": true, "memset": true,
	"WriteLine": true,
}

// BlockList reports whether a callee name is well-known noise that
// should never be resolved against the symbol table.
type BlockList struct{}

// NewBlockList returns the static built-in block-list.
func NewBlockList() *BlockList { return &BlockList{} }

// Contains reports whether name is blocked.
func (*BlockList) Contains(name string) bool {
	if builtins[name] {
		return true
	}
	tail := name
	if i := strings.LastIndexAny(name, ".:"); i >= 0 {
		tail = strings.TrimLeft(name[i+1:], ":")
	}
	return bareBuiltins[tail]
}
