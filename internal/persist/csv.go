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

package persist

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gitnexus/engine/internal/graph"
)

// listSep joins list-valued attributes (Keywords, CommunityIDs) into a
// single CSV cell, since Kuzu's CSV COPY reader maps one cell to one
// scalar column in our schema (list columns would need their own
// nested-CSV dialect Kuzu's auto-detect does not reliably infer).
const listSep = "|"

func writeNodeCSV(path string, nodes []graph.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create node csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(nodeColumns); err != nil {
		return fmt.Errorf("write node csv header: %w", err)
	}
	for _, n := range nodes {
		row := []string{
			n.ID, string(n.Kind), n.Name, n.FilePath, string(n.Content),
			strconv.Itoa(n.StartLine), strconv.Itoa(n.EndLine), strconv.FormatBool(n.IsExported), n.CodeSlice, formatEmbedding(n.Embedding),
			n.Label, strings.Join(n.Keywords, listSep), strconv.FormatFloat(n.Cohesion, 'f', -1, 64), strconv.Itoa(n.SymbolCount),
			n.ProcessType, strconv.Itoa(n.StepCount), strings.Join(n.CommunityIDs, listSep), n.EntryPointID, n.TerminalID,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write node csv row %s: %w", n.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}

// formatEmbedding renders a vector as Kuzu's bracketed list literal,
// zero-padding/truncating to EmbeddingDims so every row in a fixed-size
// array column has matching width, including rows with no embedding at
// all (Folder/File/Community/Process, or a symbol skipped by
// --skip-embeddings).
func formatEmbedding(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < EmbeddingDims; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		var f float32
		if i < len(v) {
			f = v[i]
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

var edgeColumns = []string{"from", "to", "kind", "confidence", "reason", "step"}

func writeEdgeCSV(path string, edges []graph.Edge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create edge csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(edgeColumns); err != nil {
		return fmt.Errorf("write edge csv header: %w", err)
	}
	for _, e := range edges {
		row := []string{
			e.From, e.To, string(e.Kind),
			strconv.FormatFloat(graph.ClampConfidence(e.Confidence), 'f', -1, 64),
			e.Reason, strconv.Itoa(e.Step),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write edge csv row %s->%s: %w", e.From, e.To, err)
		}
	}
	w.Flush()
	return w.Error()
}
