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

/*
This package should not import any other packages of this module to
avoid recursive import.
*/
package basic

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/message"
)

func PrintfWithTimeStamp(format string, arg ...any) {
	prefix := fmt.Sprintf("%v ", time.Now().Format("2006-01-02 15:04:05"))
	message := fmt.Sprintf(prefix+format, arg...)
	fmt.Println(message)
	glog.Info(message)
}

func GetPercentString(v1, v2 int) string {
	percent := (int)((v1 * 100) / v2)
	return fmt.Sprintf("%d%%", percent)
}

func FormatTimeDuration(d time.Duration) string {
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	if ms == 0 {
		return fmt.Sprintf("%ds", s)
	}
	for ms%10 == 0 {
		ms = ms / 10
	}
	return fmt.Sprintf("%d.%ds", s, ms)
}

// print batch progress serialized, goroutine safe
type ProcessPrinter struct {
	mutex         sync.Mutex
	startedAt     time.Time
	timeElapsed   map[string]time.Time
	startTaskNum  int
	finishTaskNum int
	totalTaskNum  int
}

func NewProcessPrinter(totalTaskNum int) ProcessPrinter {
	return ProcessPrinter{
		totalTaskNum: totalTaskNum,
		timeElapsed:  make(map[string]time.Time),
		startedAt:    time.Now(),
	}
}

// Called before a file is processed
func (c *ProcessPrinter) StartTask(name string, printer *message.Printer) {
	c.mutex.Lock()
	c.startTaskNum++
	PrintfWithTimeStamp(printer.Sprintf("Start processing %s (%v/%v)", name, c.startTaskNum, c.totalTaskNum))
	c.timeElapsed[name] = time.Now()
	c.mutex.Unlock()
}

// Called after a file is processed
func (c *ProcessPrinter) FinishTask(name string, printer *message.Printer) {
	c.mutex.Lock()
	elapsed := time.Since(c.timeElapsed[name])
	c.finishTaskNum++
	percent := GetPercentString(c.finishTaskNum, c.totalTaskNum)
	timeUsed := FormatTimeDuration(elapsed)
	PrintfWithTimeStamp(printer.Sprintf("Processing of %s completed (%s, %v/%v) [%s]", name, percent, c.finishTaskNum, c.totalTaskNum, timeUsed))
	c.mutex.Unlock()
}

func (c *ProcessPrinter) GetPercentString() string {
	return GetPercentString(c.finishTaskNum, c.totalTaskNum)
}

func (c *ProcessPrinter) GetStartedAt() time.Time {
	return c.startedAt
}
