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
)

type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return "array flags"
}

func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

type SharedOptions struct {
	Charset       *string
	CheckProgress *bool
	Config        *string
	DebugMode     *bool
	Lang          *string
	Loc           *bool
	NumWorkers    *int
	ReportHash    *string
	ResultsDir    *string
	SkipPatterns  ArrayFlags
}

func (s SharedOptions) GetCharset() string {
	return *s.Charset
}

func (s SharedOptions) GetCheckProgress() bool {
	return *s.CheckProgress
}

func (s SharedOptions) GetConfig() string {
	return *s.Config
}

func (s SharedOptions) GetDebugMode() bool {
	return *s.DebugMode
}

func (s SharedOptions) GetLang() string {
	return *s.Lang
}

func (s SharedOptions) GetLoc() bool {
	return *s.Loc
}

func (s SharedOptions) GetNumWorkers() int {
	return *s.NumWorkers
}

func (s SharedOptions) GetReportHash() string {
	return *s.ReportHash
}

func (s SharedOptions) GetResultsDir() string {
	return *s.ResultsDir
}

func (s SharedOptions) GetSkipPatterns() ArrayFlags {
	return s.SkipPatterns
}

type DefaultOptionValues struct {
	Charset       string
	CheckProgress bool
	Config        string
	DebugMode     bool
	Lang          string
	Loc           bool
	NumWorkers    int
	ReportHash    string
	ResultsDir    string
}

var Defaults = DefaultOptionValues{
	Charset:       "utf8",
	CheckProgress: true,
	Config:        "",
	DebugMode:     false,
	Lang:          "zh",
	Loc:           false,
	NumWorkers:    0,
	ReportHash:    "",
	ResultsDir:    "/output",
}

func NewSharedOptions() *SharedOptions {
	option := &SharedOptions{}

	option.Charset = flag.String("charset", Defaults.Charset, "Encoding of the checked sources. Support utf8, gbk and gb2312")
	option.CheckProgress = flag.Bool("check_progress", Defaults.CheckProgress, "Show the rewriting progress")
	option.Config = flag.String("config", Defaults.Config, "Absolute path to a YAML configuration file")
	option.DebugMode = flag.Bool("debug_mode", Defaults.DebugMode, "Whether to display error information")
	option.Lang = flag.String("lang", Defaults.Lang, "Language of the progress output. Support en and zh")
	option.Loc = flag.Bool("loc", Defaults.Loc, "Count the lines of the reported source files")
	option.NumWorkers = flag.Int("num_workers", Defaults.NumWorkers, "Number of result files to process in parallel. 0 means the number of CPUs")
	option.ReportHash = flag.String("report_hash", Defaults.ReportHash, "Hash mode to rewrite report identities with. Support context-free, context-free-v2 and diagnostic-message. Empty keeps native hashes and only fills in missing ones")
	option.ResultsDir = flag.String("results_dir", Defaults.ResultsDir, "Absolute path to the directory of result files")
	flag.Var(&option.SkipPatterns, "skip", "Skip result files matching this pattern. May be repeated")

	return option
}
