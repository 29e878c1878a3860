package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

type statusLogData struct {
	line1 string
	line2 string

	ptt       bool
	frequency uint
	mode      string
	filter    string

	sent    uint
	failed  uint
	lastErr string

	startTime time.Time
}

type statusLogStruct struct {
	ticker           *time.Ticker
	stopChan         chan bool
	stopFinishedChan chan bool
	mutex            sync.Mutex

	interactive bool

	preGenerated struct {
		failedColor *color.Color

		stateStr struct {
			rx string
			tx string
		}
	}

	data *statusLogData
}

type termAspects struct {
	cols      int
	rows      int
	cursorUp  string
	eraseLine string
}

var statusLog statusLogStruct
var termDetail = termAspects{
	cols:      0,
	rows:      0,
	cursorUp:  fmt.Sprintf("%c[1A", 0x1b),
	eraseLine: fmt.Sprintf("%c[2K", 0x1b),
}

// update main VFO frequency value held in the status log data structure
func (s *statusLogStruct) reportFrequency(f uint) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.data == nil {
		return
	}
	s.data.frequency = f
}

// update mode & predefined filter held in the status log data structure
func (s *statusLogStruct) reportMode(mode, filter string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.data == nil {
		return
	}
	s.data.mode = mode
	s.data.filter = filter
}

// set push-to-talk (aka Tx) status in the status log data structure
func (s *statusLogStruct) reportPTT(ptt bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.data == nil {
		return
	}
	s.data.ptt = ptt
}

// update transaction counters held in the status log data structure
func (s *statusLogStruct) reportCounters(sent, failed uint) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.data == nil {
		return
	}
	s.data.sent = sent
	s.data.failed = failed
}

// record the most recent transaction error for display
func (s *statusLogStruct) reportError(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.data == nil {
		return
	}
	s.data.lastErr = err.Error()
}

// clears the entire line the cursor is located on
func (s *statusLogStruct) clearStatusLine() {
	fmt.Print(termDetail.eraseLine)
}

// if running in a terminal, print the current status and reposition the
// cursor to the first line of output; if not, send just the summary line to
// the log
func (s *statusLogStruct) print() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.interactive {
		s.clearStatusLine()
		fmt.Println(s.data.line1)
		s.clearStatusLine()
		fmt.Printf("%v\r%v", s.data.line2, termDetail.cursorUp)
	} else {
		log.PrintStatusLog(s.data.line2)
	}
}

// use whitespace padding on the left to right-justify the string
func (s *statusLogStruct) padLeft(str string, length int) string {
	if !s.interactive {
		return str
	}
	if length-len(str) > 0 {
		str = strings.Repeat(" ", length-len(str)) + str
	}
	return str
}

// regenerate the display strings from the current values
func (s *statusLogStruct) update() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var stateStr string
	if s.data.ptt {
		stateStr = s.preGenerated.stateStr.tx
	} else {
		stateStr = s.preGenerated.stateStr.rx
	}

	var modeStr string
	if s.data.mode != "" {
		modeStr = " " + s.data.mode
		if s.data.filter != "" {
			modeStr += "/" + s.data.filter
		}
	}

	var bandStr string
	if label := bandLabel(s.data.frequency); label != "" {
		bandStr = " [" + label + "]"
	}

	s.data.line1 = fmt.Sprint(stateStr, " ",
		fmt.Sprintf("%.6f", float64(s.data.frequency)/1000000), modeStr, bandStr)

	failedStr := "0"
	if s.data.failed > 0 {
		failedStr = s.preGenerated.failedColor.Sprint(" ", s.data.failed, " ")
	}
	var lastErrStr string
	if s.data.lastErr != "" {
		lastErrStr = "  last error: " + s.data.lastErr
	}

	s.data.line2 = fmt.Sprint(
		" sent ", s.padLeft(fmt.Sprint(s.data.sent), 5),
		" failed ", failedStr, lastErrStr,
		"  - uptime: ", s.padLeft(fmt.Sprint(time.Since(s.data.startTime).Round(time.Second)), 6))

	if s.interactive {
		t := time.Now().Format("2006-01-02T15:04:05 Z0700")
		s.data.line1 = fmt.Sprint(t, " ", s.data.line1)
		s.data.line2 = fmt.Sprint(t, " ", s.data.line2)
	}
}

// status logging loop: redraw on each tick, exit on the stop channel
func (s *statusLogStruct) loop() {
	for {
		select {
		case <-s.ticker.C:
			s.update()
			s.print()
		case <-s.stopChan:
			s.stopFinishedChan <- true
			return
		}
	}
}

func (s *statusLogStruct) isActive() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.ticker != nil
}

// set initial values, start the ticker, and start the render loop in a
// goroutine. Only the loop writes to the terminal, polling stays on the
// caller's goroutine.
func (s *statusLogStruct) startPeriodicPrint() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.initIfNeeded()

	s.data = &statusLogData{
		startTime: time.Now(),
	}

	s.stopChan = make(chan bool)
	s.stopFinishedChan = make(chan bool)
	s.ticker = time.NewTicker(watchInterval)
	go s.loop()
}

// stop the ticker, wait for the loop to finish, then clear the status lines
func (s *statusLogStruct) stopPeriodicPrint() {
	if !s.isActive() {
		return
	}
	s.ticker.Stop()
	s.ticker = nil

	s.stopChan <- true
	<-s.stopFinishedChan

	if s.interactive {
		statusRows := 2
		for i := 0; i < statusRows; i++ {
			s.clearStatusLine()
			fmt.Println()
		}
	}
}

func (s *statusLogStruct) initIfNeeded() {
	if s.data != nil { // Already initialized?
		return
	}

	s.interactive = !quietLog && isatty.IsTerminal(os.Stdout.Fd())

	// redraws make no sense faster than this, and a non-terminal sink gets
	// log lines instead of redraws
	if watchInterval < 100*time.Millisecond {
		watchInterval = 100 * time.Millisecond
	}
	if !s.interactive && watchInterval < time.Second {
		watchInterval = time.Second
	}

	if s.interactive {
		cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
		if err == nil {
			termDetail.cols = cols
			termDetail.rows = rows
		} else {
			// if redirecting to a file these are zeros, and that's a problem
			termDetail.cols = 120
			termDetail.rows = 20
		}
	}

	c := color.New(color.FgHiWhite)
	c.Add(color.BgGreen)
	s.preGenerated.stateStr.rx = c.Sprint("  RX  ")

	c = color.New(color.FgHiWhite, color.BlinkRapid)
	c.Add(color.BgRed)
	s.preGenerated.stateStr.tx = c.Sprint("  TX  ")

	s.preGenerated.failedColor = color.New(color.FgHiWhite)
	s.preGenerated.failedColor.Add(color.BgRed)
}
