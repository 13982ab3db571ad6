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

package options

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// FileConfig carries the option values a project checks in next to its
// sources. Nil fields were not configured.
type FileConfig struct {
	ReportHash    *string  `yaml:"report_hash,omitempty"`
	Charset       *string  `yaml:"charset,omitempty"`
	Lang          *string  `yaml:"lang,omitempty"`
	NumWorkers    *int     `yaml:"num_workers,omitempty"`
	CheckProgress *bool    `yaml:"check_progress,omitempty"`
	SkipPatterns  []string `yaml:"skip,omitempty"`
}

func LoadFileConfig(path string) (*FileConfig, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %v", err)
	}
	config := &FileConfig{}
	err = yaml.Unmarshal(contents, config)
	if err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %v", err)
	}
	return config, nil
}

// ApplyFileConfig overrides defaults with configured values. Anything set
// explicitly on the command line wins over the file.
func (s *SharedOptions) ApplyFileConfig(config *FileConfig) {
	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	s.applyFileConfig(config, setFlags)
}

func (s *SharedOptions) applyFileConfig(config *FileConfig, setFlags map[string]bool) {
	if config.ReportHash != nil && !setFlags["report_hash"] {
		*s.ReportHash = *config.ReportHash
	}
	if config.Charset != nil && !setFlags["charset"] {
		*s.Charset = *config.Charset
	}
	if config.Lang != nil && !setFlags["lang"] {
		*s.Lang = *config.Lang
	}
	if config.NumWorkers != nil && !setFlags["num_workers"] {
		*s.NumWorkers = *config.NumWorkers
	}
	if config.CheckProgress != nil && !setFlags["check_progress"] {
		*s.CheckProgress = *config.CheckProgress
	}
	if len(config.SkipPatterns) > 0 && !setFlags["skip"] {
		s.SkipPatterns = config.SkipPatterns
	}
}
