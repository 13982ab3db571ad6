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

	"github.com/golang/glog"
	"naive.systems/reportid/basic"
	"naive.systems/reportid/i18n"
	"naive.systems/reportid/options"
	"naive.systems/reportid/report"
	"naive.systems/reportid/reporthash"
	"naive.systems/reportid/rundiff"
)

func main() {
	baseDir := flag.String("basedir", "", "Absolute path to the results directory of the base run")
	newDir := flag.String("newdir", "", "Absolute path to the results directory of the new run")
	baselinePath := flag.String("baseline", "", "Absolute path to a baseline file holding the report hashes of the base run")
	createBaseline := flag.Bool("create_baseline", false, "Write <newdir>/baseline.json instead of comparing")
	suppressionDir := flag.String("suppression", "", "Absolute path to a directory of suppression files")
	reportHash := flag.String("report_hash", "", "Recompute report hashes with this mode before comparing. Support context-free, context-free-v2 and diagnostic-message")
	charset := flag.String("charset", "utf8", "Encoding of the checked sources. Support utf8, gbk and gb2312")
	lang := flag.String("lang", "zh", "Language of the output. Support en and zh")
	exportJson := flag.String("export_json", "", "Write the comparison to this JSON file")
	printCounts := flag.Bool("print_counts", false, "Print how many reports each bucket holds instead of the reports")
	debugMode := flag.Bool("debug_mode", false, "Whether to display error information")
	var skipPatterns options.ArrayFlags
	flag.Var(&skipPatterns, "skip", "Skip result files matching this pattern. May be repeated")
	flag.Parse()
	defer glog.Flush()

	// Do not call any logging functions of glog before this part.
	printer := i18n.GetPrinter(*lang)

	if *newDir == "" {
		glog.Fatal("-newdir is required")
	}

	logDir := flag.Lookup("log_dir")
	if logDir.Value.String() == "" {
		err := flag.Set("log_dir", filepath.Join(*newDir, "logs"))
		if err != nil {
			glog.Fatalf("failed to set default log_dir: %v", err)
		}
	}
	err := os.MkdirAll(logDir.Value.String(), os.ModePerm)
	if err != nil {
		glog.Fatalf("failed to create log dir: %v", err)
	}

	if !*debugMode {
		err := flag.Set("stderrthreshold", "FATAL")
		if err != nil {
			glog.Fatalf("failed to set default stderrthreshold: %v", err)
		}
	}

	fmt.Println("(c) 2023 Naive Systems Ltd.")

	opts := rundiff.Options{
		SkipPatterns:   skipPatterns,
		Charset:        *charset,
		SuppressionDir: *suppressionDir,
	}
	if *reportHash != "" {
		opts.HashType, err = reporthash.ParseType(*reportHash)
		if err != nil {
			glog.Fatalf("reporthash.ParseType: %v", err)
		}
		opts.RecomputeHash = true
	}

	if *createBaseline {
		reports, err := rundiff.LoadRun(*newDir, opts)
		if err != nil {
			glog.Fatalf("loading run: %v", err)
		}
		err = rundiff.CreateBaselineFile(reports, *newDir)
		if err != nil {
			glog.Fatal(err)
		}
		basic.PrintfWithTimeStamp(printer.Sprintf("Baseline of %d reports written to %s", len(reports), filepath.Join(*newDir, "baseline.json")))
		return
	}

	var diff *rundiff.Diff
	switch {
	case *baselinePath != "":
		baseline, err := rundiff.GetBaseline(*baselinePath)
		if err != nil {
			glog.Fatal(err)
		}
		newReports, err := rundiff.LoadRun(*newDir, opts)
		if err != nil {
			glog.Fatalf("loading new run: %v", err)
		}
		diff = rundiff.Compare(baseline.Hashes, newReports)
	case *baseDir != "":
		diff, err = rundiff.CompareDirs(*baseDir, *newDir, opts)
		if err != nil {
			glog.Fatal(err)
		}
	default:
		glog.Fatal("either -basedir or -baseline is required")
	}

	counts := diff.Counts()
	if *printCounts {
		fmt.Printf("new: %d resolved: %d unresolved: %d\n", counts.New, counts.Resolved, counts.Unresolved)
	} else {
		printReports(printer.Sprintf("New reports"), diff.New)
		printReports(printer.Sprintf("Unresolved reports"), diff.Unresolved)
		fmt.Printf("%s (%d):\n", printer.Sprintf("Resolved report hashes"), len(diff.Resolved))
		for _, hash := range diff.Resolved {
			fmt.Printf("%s\n", hash)
		}
	}

	if *exportJson != "" {
		err := rundiff.ExportJSON(diff, *exportJson)
		if err != nil {
			glog.Fatal(err)
		}
	}

	glog.Infof("comparison done: %d new, %d resolved, %d unresolved, exit.",
		counts.New, counts.Resolved, counts.Unresolved)
}

func printReports(header string, reports []*report.Report) {
	fmt.Printf("%s (%d):\n", header, len(reports))
	for _, r := range reports {
		fmt.Printf("%s:%d: %s [%s]\n", r.File, r.Line, r.Message, r.CheckerName)
	}
}
