/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package metadata reads the metadata.json a producer leaves next to its
// result files.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/shlex"
)

// Timestamps are seconds since the epoch as the producer recorded them.
type Timestamps struct {
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
}

type Tool struct {
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	Command    json.RawMessage `json:"command,omitempty"`
	Timestamps *Timestamps     `json:"timestamps,omitempty"`
}

// CommandArgs returns the recorded analysis command as an argument vector.
// Producers store either a JSON list or a single shell-quoted string.
func (t *Tool) CommandArgs() ([]string, error) {
	if len(t.Command) == 0 {
		return nil, nil
	}
	var args []string
	if err := json.Unmarshal(t.Command, &args); err == nil {
		return args, nil
	}
	var joined string
	if err := json.Unmarshal(t.Command, &joined); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %v", err)
	}
	args, err := shlex.Split(joined)
	if err != nil {
		return nil, fmt.Errorf("shlex.Split: %v", err)
	}
	return args, nil
}

type Metadata struct {
	Version int    `json:"version"`
	Tools   []Tool `json:"tools"`
}

type fileSchema struct {
	Version    int               `json:"version"`
	Tools      []Tool            `json:"tools"`
	Command    json.RawMessage   `json:"command,omitempty"`
	Versions   map[string]string `json:"versions,omitempty"`
	Timestamps *Timestamps       `json:"timestamps,omitempty"`
}

// Parse decodes a metadata.json. Version 2 files list their tools; older
// files describe a single codechecker run at the top level.
func Parse(data []byte) (*Metadata, error) {
	var parsed fileSchema
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %v", err)
	}
	if parsed.Version >= 2 {
		return &Metadata{Version: parsed.Version, Tools: parsed.Tools}, nil
	}
	tool := Tool{
		Name:       "codechecker",
		Version:    parsed.Versions["codechecker"],
		Command:    parsed.Command,
		Timestamps: parsed.Timestamps,
	}
	return &Metadata{Version: parsed.Version, Tools: []Tool{tool}}, nil
}

// Load reads the metadata.json of a results dir. A dir without one is not
// an error, result files are usable bare.
func Load(resultsDir string) (*Metadata, error) {
	path := filepath.Join(resultsDir, "metadata.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("os.ReadFile: %v", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return m, nil
}
