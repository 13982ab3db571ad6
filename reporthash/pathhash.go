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

package reporthash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"naive.systems/reportid/report"
)

// GetReportPathHash fingerprints the route a report takes through the
// code: line, column, message and file basename of every event segment in
// path order. Two reports can share a report hash yet describe defects
// reached through different call chains; this hash keeps them apart where
// the caller wants path-aware deduplication.
//
// The function is total. A report without event segments is an upstream
// parsing defect and is logged loudly, but still hashes (to the digest of
// the empty string) so callers can key maps by the result unconditionally.
func GetReportPathHash(r *report.Report) string {
	events := r.Events()
	if len(events) == 0 {
		glog.Warningf("no event segments to path-hash report %s:%d:%d [%s] %q (bug path has %d segments)",
			r.File, r.Line, r.Col, r.CheckerName, r.Message, len(r.Path))
	}
	var b strings.Builder
	for _, event := range events {
		line := 0
		col := 0
		file := ""
		if event.Location != nil {
			line = event.Location.Line
			col = event.Location.Col
			file = baseName(event.Location.File)
		}
		fmt.Fprintf(&b, "%d|%d|%s|%s", line, col, event.Message, file)
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
