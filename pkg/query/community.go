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

package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/gitnexus/engine/internal/community"
)

// listSep mirrors internal/persist/csv.go's list-column delimiter —
// Community.Keywords and Process.CommunityIDs are both persisted as a
// single delimited STRING column rather than a native list column.
const listSep = "|"

// Community is one detected module/cluster of related symbols.
type Community struct {
	ID          string
	Label       string
	Keywords    []string
	Cohesion    float64
	SymbolCount int
}

func communityFromRow(row []any) Community {
	return Community{
		ID:          str(row[0]),
		Label:       str(row[1]),
		Keywords:    splitList(row[2]),
		Cohesion:    f64(row[3]),
		SymbolCount: int(i64(row[4])),
	}
}

// ListCommunities returns every detected community with at least
// community.DefaultMinMembers members, most cohesive first. Spec §4.8
// retains every detected community in the store regardless of size,
// but filters communities below the configured floor out of
// user-facing aggregates — this is that floor.
func (c *Client) ListCommunities(ctx context.Context, limit int) ([]Community, error) {
	if limit <= 0 {
		limit = 100
	}
	cypher := `MATCH (n:Community) WHERE n.symbolCount >= $minMembers
		RETURN n.id, n.label, n.keywords, n.cohesion, n.symbolCount
		ORDER BY n.cohesion DESC LIMIT $limit`
	res, err := c.backend.Query(ctx, cypher, map[string]any{
		"limit":      int64(limit),
		"minMembers": int64(community.DefaultMinMembers),
	})
	if err != nil {
		return nil, fmt.Errorf("list communities query: %w", err)
	}
	out := make([]Community, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, communityFromRow(row))
	}
	return out, nil
}

// MembersOf returns every symbol belonging to the community named by id.
func (c *Client) MembersOf(ctx context.Context, communityID string) ([]Symbol, error) {
	cypher := fmt.Sprintf(`
		MATCH (n:Symbol)-[:MEMBER_OF_Symbol_Community]->(comm:Community)
		WHERE comm.id = $id
		RETURN %s`, symbolProjection)
	res, err := c.backend.Query(ctx, cypher, map[string]any{"id": communityID})
	if err != nil {
		return nil, fmt.Errorf("community members query: %w", err)
	}
	symbols := symbolsFromResult(res)
	sortSymbolsByLocation(symbols)
	return symbols, nil
}

// Process is one detected end-to-end call path (entry point to terminal).
type Process struct {
	ID           string
	Label        string
	ProcessType  string
	StepCount    int
	CommunityIDs []string
	EntryPointID string
	TerminalID   string
}

func processFromRow(row []any) Process {
	return Process{
		ID:           str(row[0]),
		Label:        str(row[1]),
		ProcessType:  str(row[2]),
		StepCount:    int(i64(row[3])),
		CommunityIDs: splitList(row[4]),
		EntryPointID: str(row[5]),
		TerminalID:   str(row[6]),
	}
}

// ListProcesses returns every detected process, longest first.
func (c *Client) ListProcesses(ctx context.Context, limit int) ([]Process, error) {
	if limit <= 0 {
		limit = 100
	}
	cypher := `MATCH (n:Process) RETURN n.id, n.label, n.processType, n.stepCount, n.communityIDs, n.entryPointID, n.terminalID
		ORDER BY n.stepCount DESC LIMIT $limit`
	res, err := c.backend.Query(ctx, cypher, map[string]any{"limit": int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("list processes query: %w", err)
	}
	out := make([]Process, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, processFromRow(row))
	}
	return out, nil
}

// StepsOf returns the symbols that make up a process's steps, in order.
func (c *Client) StepsOf(ctx context.Context, processID string) ([]Symbol, error) {
	cypher := fmt.Sprintf(`
		MATCH (p:Process)-[r:STEP_IN_PROCESS_Process_Symbol]->(n:Symbol)
		WHERE p.id = $id
		RETURN %s, r.step
		ORDER BY r.step`, symbolProjection)
	res, err := c.backend.Query(ctx, cypher, map[string]any{"id": processID})
	if err != nil {
		return nil, fmt.Errorf("process steps query: %w", err)
	}
	out := make([]Symbol, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, symbolFromRow(row))
	}
	return out, nil
}

func splitList(v any) []string {
	s := str(v)
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}
