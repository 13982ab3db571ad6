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

package main

//go:generate ../../out/bin/gotext -tags static -srclang=en update -out=catalog.go -lang=en,zh

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"naive.systems/reportid/atomic"
	"naive.systems/reportid/basic"
	"naive.systems/reportid/i18n"
	"naive.systems/reportid/metadata"
	"naive.systems/reportid/options"
	"naive.systems/reportid/reporthash"
	"naive.systems/reportid/rewrite"
	"naive.systems/reportid/sourcecode"
	"naive.systems/reportid/stats"
)

var countLangs = []string{"C", "C++", "C Header", "C++ Header"}

func main() {
	sharedOptions := options.NewSharedOptions()
	statsOut := flag.String("stats_out", "", "Write the rewrite statistics to this file instead of <results_dir>/rewrite_stats.nsa_metadata")
	flag.Parse()
	defer glog.Flush()

	// Do not call any logging functions of glog before this part.
	if sharedOptions.GetConfig() != "" {
		fileConfig, err := options.LoadFileConfig(sharedOptions.GetConfig())
		if err != nil {
			glog.Fatalf("options.LoadFileConfig: %v", err)
		}
		sharedOptions.ApplyFileConfig(fileConfig)
	}
	printer := i18n.GetPrinter(sharedOptions.GetLang())

	logDir := flag.Lookup("log_dir")
	if logDir.Value.String() == "" {
		err := flag.Set("log_dir", filepath.Join(sharedOptions.GetResultsDir(), "logs"))
		if err != nil {
			glog.Fatalf("failed to set default log_dir: %v", err)
		}
	}
	err := os.MkdirAll(logDir.Value.String(), os.ModePerm)
	if err != nil {
		glog.Fatalf("failed to create log dir: %v", err)
	}

	if !sharedOptions.GetDebugMode() {
		err := flag.Set("stderrthreshold", "FATAL")
		if err != nil {
			glog.Fatalf("failed to set default stderrthreshold: %v", err)
		}
	}

	fmt.Println("(c) 2023 Naive Systems Ltd.")

	fillOnly := sharedOptions.GetReportHash() == ""
	var hashType reporthash.Type
	if !fillOnly {
		hashType, err = reporthash.ParseType(sharedOptions.GetReportHash())
		if err != nil {
			glog.Fatalf("reporthash.ParseType: %v", err)
		}
	}

	start := time.Now()

	if sharedOptions.GetCheckProgress() {
		basic.PrintfWithTimeStamp(printer.Sprintf("Start to list result files"))
		stats.WriteProgress(sharedOptions.GetResultsDir(), stats.LS, "0%", start)
	}

	md, err := metadata.Load(sharedOptions.GetResultsDir())
	if err != nil {
		glog.Warningf("metadata.Load: %v", err)
	}
	if md != nil {
		for _, tool := range md.Tools {
			args, err := tool.CommandArgs()
			if err != nil {
				glog.Warningf("bad analysis command of %s: %v", tool.Name, err)
				continue
			}
			glog.Infof("results produced by %s %s (%s)", tool.Name, tool.Version, strings.Join(args, " "))
		}
	}

	opts := rewrite.Options{
		SkipPatterns: sharedOptions.GetSkipPatterns(),
		Charset:      sharedOptions.GetCharset(),
		Lang:         sharedOptions.GetLang(),
		NumWorkers:   int32(sharedOptions.GetNumWorkers()),
		ShowProgress: sharedOptions.GetCheckProgress(),
	}

	var cnt *stats.RewriteCount
	var sourceFiles []string
	if fillOnly {
		cnt, sourceFiles, err = rewrite.DirFill(sharedOptions.GetResultsDir(), opts)
	} else {
		cnt, sourceFiles, err = rewrite.Dir(sharedOptions.GetResultsDir(), hashType, opts)
	}
	if err != nil {
		glog.Fatal(err)
	}

	if *statsOut == "" {
		stats.WriteRewriteStats(cnt, sharedOptions.GetResultsDir())
	} else {
		statsBytes, err := stats.GetRewriteCountBytes(cnt)
		if err != nil {
			glog.Errorf("stats.GetRewriteCountBytes: %v", err)
		} else if err := atomic.Write(*statsOut, statsBytes); err != nil {
			glog.Errorf("failed to write to file %s: %v", *statsOut, err)
		}
	}

	if sharedOptions.GetLoc() {
		loc, err := sourcecode.CountLines(sourceFiles, countLangs)
		if err != nil {
			glog.Errorf("sourcecode.CountLines: %v", err)
		} else {
			stats.WriteLOC(sharedOptions.GetResultsDir(), loc)
		}
	}

	glog.Infof("%d result files have been processed in %s (%d rewritten, %d skipped), exit.",
		cnt.FilesScanned, sharedOptions.GetResultsDir(), cnt.FilesRewritten, cnt.FilesSkipped)

	elapsed := time.Since(start)
	if sharedOptions.GetCheckProgress() {
		timeUsed := basic.FormatTimeDuration(elapsed)
		basic.PrintfWithTimeStamp(printer.Sprintf("Total time for report hash rewriting: %s", timeUsed))
		stats.WriteProgress(sharedOptions.GetResultsDir(), stats.END, "100%", start)
	}
}
