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

package parse

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/gitnexus/engine/internal/graph"
)

// languageSpec is everything a worker needs to parse and query one
// language: its grammar, its pre-compiled query text, and the node
// kinds that count as call-site import specifiers vs. plain
// identifiers (needed to strip string-literal quoting).
type languageSpec struct {
	name       string
	language   *sitter.Language
	query      string
	stringKind bool // true if the "import" capture node is a quoted string literal
}

// captureKind maps a query capture's kind suffix ("def.function" ->
// "function") to the graph.Kind it produces. Shared by every
// language's query: the suffix vocabulary is the same even though the
// grammar node types backing it differ per language.
var captureKind = map[string]graph.Kind{
	"function":    graph.KindFunction,
	"method":      graph.KindMethod,
	"class":       graph.KindClass,
	"interface":   graph.KindInterface,
	"struct":      graph.KindStruct,
	"enum":        graph.KindEnum,
	"macro":       graph.KindMacro,
	"typedef":     graph.KindTypedef,
	"union":       graph.KindUnion,
	"namespace":   graph.KindNamespace,
	"trait":       graph.KindTrait,
	"impl":        graph.KindImpl,
	"typealias":   graph.KindTypeAlias,
	"const":       graph.KindConst,
	"static":      graph.KindStatic,
	"property":    graph.KindProperty,
	"record":      graph.KindRecord,
	"delegate":    graph.KindDelegate,
	"annotation":  graph.KindAnnotation,
	"constructor": graph.KindConstructor,
	"template":    graph.KindTemplate,
	"module":      graph.KindModule,
}

// enclosingKinds is the set of Kinds spec §4.6 means by "nearest
// enclosing function/method/constructor" when walking up from a call
// site.
var enclosingKinds = map[graph.Kind]bool{
	graph.KindFunction:    true,
	graph.KindMethod:      true,
	graph.KindConstructor: true,
}

// languages is keyed by the language tag internal/walk already
// resolves extensions to, so C4 dispatch needs no second table.
var languages = map[string]languageSpec{
	"go": {
		name:     "go",
		language: golang.GetLanguage(),
		query: `
			(function_declaration name: (identifier) @name.function) @def.function
			(method_declaration name: (field_identifier) @name.method) @def.method
			(type_spec name: (type_identifier) @name.struct type: (struct_type)) @def.struct
			(type_spec name: (type_identifier) @name.interface type: (interface_type)) @def.interface
			(type_spec name: (type_identifier) @name.typealias) @def.typealias
			(const_spec name: (identifier) @name.const) @def.const
			(import_spec path: (interpreted_string_literal) @import)
			(call_expression function: (_) @call.callee) @call
		`,
		stringKind: true,
	},
	"python": {
		name:     "python",
		language: python.GetLanguage(),
		query: `
			(class_definition
				name: (identifier) @name.class
				superclasses: (argument_list (identifier) @heritage.extends)) @def.class
			(class_definition name: (identifier) @name.class) @def.class
			(function_definition name: (identifier) @name.function) @def.function
			(import_statement) @import
			(import_from_statement) @import
			(call function: (_) @call.callee) @call
		`,
	},
	"javascript": {
		name:     "javascript",
		language: javascript.GetLanguage(),
		query: `
			(function_declaration name: (identifier) @name.function) @def.function
			(generator_function_declaration name: (identifier) @name.function) @def.function
			(method_definition name: (property_identifier) @name.method) @def.method
			(class_declaration
				name: (identifier) @name.class
				(class_heritage (extends_clause value: (_) @heritage.extends))) @def.class
			(class_declaration name: (identifier) @name.class) @def.class
			(import_statement source: (string) @import)
			(call_expression function: (_) @call.callee) @call
		`,
		stringKind: true,
	},
	"typescript": {
		name:     "typescript",
		language: typescript.GetLanguage(),
		query: `
			(function_declaration name: (identifier) @name.function) @def.function
			(method_definition name: (property_identifier) @name.method) @def.method
			(class_declaration
				name: (type_identifier) @name.class
				(class_heritage (extends_clause value: (_) @heritage.extends))) @def.class
			(class_declaration
				name: (type_identifier) @name.class
				(class_heritage (implements_clause (type_identifier) @heritage.implements))) @def.class
			(class_declaration name: (type_identifier) @name.class) @def.class
			(interface_declaration
				name: (type_identifier) @name.interface
				(extends_type_clause (type_identifier) @heritage.extends)) @def.interface
			(interface_declaration name: (type_identifier) @name.interface) @def.interface
			(type_alias_declaration name: (type_identifier) @name.typealias) @def.typealias
			(enum_declaration name: (identifier) @name.enum) @def.enum
			(import_statement source: (string) @import)
			(call_expression function: (_) @call.callee) @call
		`,
		stringKind: true,
	},
	"java": {
		name:     "java",
		language: java.GetLanguage(),
		query: `
			(method_declaration name: (identifier) @name.method) @def.method
			(constructor_declaration name: (identifier) @name.constructor) @def.constructor
			(class_declaration
				name: (identifier) @name.class
				superclass: (superclass (type_identifier) @heritage.extends)) @def.class
			(class_declaration
				name: (identifier) @name.class
				interfaces: (super_interfaces (type_list (type_identifier) @heritage.implements))) @def.class
			(class_declaration name: (identifier) @name.class) @def.class
			(interface_declaration name: (identifier) @name.interface) @def.interface
			(enum_declaration name: (identifier) @name.enum) @def.enum
			(annotation_type_declaration name: (identifier) @name.annotation) @def.annotation
			(import_declaration) @import
			(method_invocation name: (identifier) @call.callee) @call
		`,
	},
	"c": {
		name:     "c",
		language: c.GetLanguage(),
		query: `
			(function_definition declarator: (function_declarator declarator: (identifier) @name.function)) @def.function
			(struct_specifier name: (type_identifier) @name.struct) @def.struct
			(enum_specifier name: (type_identifier) @name.enum) @def.enum
			(type_definition declarator: (type_identifier) @name.typedef) @def.typedef
			(preproc_include) @import
			(call_expression function: (identifier) @call.callee) @call
		`,
	},
	"cpp": {
		name:     "cpp",
		language: cpp.GetLanguage(),
		query: `
			(function_definition declarator: (function_declarator declarator: (identifier) @name.function)) @def.function
			(function_definition declarator: (function_declarator declarator: (field_identifier) @name.method)) @def.method
			(class_specifier
				name: (type_identifier) @name.class
				(base_class_clause (type_identifier) @heritage.extends)) @def.class
			(class_specifier name: (type_identifier) @name.class) @def.class
			(struct_specifier name: (type_identifier) @name.struct) @def.struct
			(enum_specifier name: (type_identifier) @name.enum) @def.enum
			(namespace_definition name: (identifier) @name.namespace) @def.namespace
			(preproc_include) @import
			(using_declaration) @import
			(call_expression function: (_) @call.callee) @call
		`,
	},
	"csharp": {
		name:     "csharp",
		language: csharp.GetLanguage(),
		query: `
			(method_declaration name: (identifier) @name.method) @def.method
			(constructor_declaration name: (identifier) @name.constructor) @def.constructor
			(class_declaration
				name: (identifier) @name.class
				bases: (base_list (identifier) @heritage.implements)) @def.class
			(class_declaration name: (identifier) @name.class) @def.class
			(interface_declaration name: (identifier) @name.interface) @def.interface
			(struct_declaration name: (identifier) @name.struct) @def.struct
			(record_declaration name: (identifier) @name.record) @def.record
			(enum_declaration name: (identifier) @name.enum) @def.enum
			(delegate_declaration name: (identifier) @name.delegate) @def.delegate
			(property_declaration name: (identifier) @name.property) @def.property
			(using_directive) @import
			(invocation_expression function: (_) @call.callee) @call
		`,
	},
	"rust": {
		name:     "rust",
		language: rust.GetLanguage(),
		query: `
			(function_item name: (identifier) @name.function) @def.function
			(struct_item name: (type_identifier) @name.struct) @def.struct
			(enum_item name: (type_identifier) @name.enum) @def.enum
			(trait_item name: (type_identifier) @name.interface) @def.interface
			(impl_item
				trait: (type_identifier) @heritage.implements
				type: (type_identifier) @name.impl) @def.impl
			(impl_item type: (type_identifier) @name.impl) @def.impl
			(mod_item name: (identifier) @name.module) @def.module
			(use_declaration) @import
			(call_expression function: (_) @call.callee) @call
		`,
	},
	"php": {
		name:     "php",
		language: php.GetLanguage(),
		query: `
			(function_definition name: (name) @name.function) @def.function
			(method_declaration name: (name) @name.method) @def.method
			(class_declaration
				name: (name) @name.class
				(base_clause (name) @heritage.extends)) @def.class
			(class_declaration
				name: (name) @name.class
				(class_interface_clause (name) @heritage.implements)) @def.class
			(class_declaration name: (name) @name.class) @def.class
			(interface_declaration name: (name) @name.interface) @def.interface
			(trait_declaration name: (name) @name.trait) @def.trait
			(namespace_use_declaration) @import
			(function_call_expression function: (name) @call.callee) @call
		`,
	},
	"swift": {
		name:     "swift",
		language: swift.GetLanguage(),
		query: `
			(function_declaration name: (simple_identifier) @name.function) @def.function
			(class_declaration name: (type_identifier) @name.class) @def.class
			(protocol_declaration name: (type_identifier) @name.interface) @def.interface
			(import_declaration) @import
			(call_expression (simple_identifier) @call.callee) @call
		`,
	},
}

// tsxLanguage is used when the file extension is .tsx specifically;
// the query text is identical to typescript's (TSX's grammar is a
// superset), so only the grammar pointer differs.
var tsxLanguage = tsx.GetLanguage()

// languageFor resolves a tag from internal/walk's extension table to
// the languageSpec used to parse it. A file's extension (not just its
// tag) decides TSX vs plain TypeScript, since both share the
// "typescript" tag.
func languageFor(tag, ext string) (languageSpec, bool) {
	spec, ok := languages[tag]
	if !ok {
		return languageSpec{}, false
	}
	if tag == "typescript" && ext == ".tsx" {
		spec.language = tsxLanguage
	}
	return spec, true
}
