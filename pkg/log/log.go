// Package log is a small leveled logger. The renderer and watch viewer
// only ever need three levels and a Close, so the interface stays that
// narrow; the viewer consumes log lines itself through ChanLog.
package log

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger is the logging surface the rest of the module depends on.
type Logger interface {
	Error(format string, v ...any)
	Warning(format string, v ...any)
	Info(format string, v ...any)
	Close() error
}

// New returns a logger writing to the file at path, or to stdout/stderr
// without prefixes when path is empty.
func New(path string) Logger {
	if path == "" {
		return &StdLog{
			err: log.New(os.Stderr, "", 0),
			wrn: log.New(os.Stderr, "", 0),
			inf: log.New(os.Stdout, "", 0),
		}
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		log.Fatal(err)
	}
	return &StdLog{
		err:  log.New(file, "ERROR ", log.Ldate|log.Ltime),
		wrn:  log.New(file, "WARN ", log.Ldate|log.Ltime),
		inf:  log.New(file, "INFO ", log.Ldate|log.Ltime),
		file: file,
	}
}

// StdLog writes through one stdlib logger per level. The file handle is
// kept so Close releases it; in the stdout/stderr form there is nothing
// to close.
type StdLog struct {
	err, wrn, inf *log.Logger
	file          *os.File
}

func (l *StdLog) Error(format string, v ...any) {
	_ = l.err.Output(2, fmt.Sprintf(format, v...))
}

func (l *StdLog) Info(format string, v ...any) {
	_ = l.inf.Output(2, fmt.Sprintf(format, v...))
}

func (l *StdLog) Warning(format string, v ...any) {
	_ = l.wrn.Output(2, fmt.Sprintf(format, v...))
}

func (l *StdLog) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// EmptyLog discards everything. It stands in wherever a Logger is
// required but output is unwanted, such as render-only runs.
type EmptyLog struct{}

func NewEmptyLog() Logger { return EmptyLog{} }

func (l EmptyLog) Error(string, ...any)   {}
func (l EmptyLog) Warning(string, ...any) {}
func (l EmptyLog) Info(string, ...any)    {}
func (l EmptyLog) Close() error           { return nil }

// Record is a single log entry for consumers that display logs themselves,
// such as the watch viewer.
type Record struct {
	Level   string
	Message string
	Time    time.Time
}

func (r Record) String() string {
	return fmt.Sprintf("%s %s %s", r.Time.Format("15:04:05"), r.Level, r.Message)
}

// ChanLog forwards records to a channel instead of writing them anywhere.
// Sends drop when the channel is full so logging never blocks the caller.
type ChanLog struct {
	Records chan Record
}

func NewChanLog(buffer int) *ChanLog {
	return &ChanLog{Records: make(chan Record, buffer)}
}

func (l *ChanLog) send(level, format string, v ...any) {
	rec := Record{Level: level, Message: fmt.Sprintf(format, v...), Time: time.Now()}
	select {
	case l.Records <- rec:
	default:
	}
}

func (l *ChanLog) Error(format string, v ...any)   { l.send("ERROR", format, v...) }
func (l *ChanLog) Warning(format string, v ...any) { l.send("WARN", format, v...) }
func (l *ChanLog) Info(format string, v ...any)    { l.send("INFO", format, v...) }
func (l *ChanLog) Close() error                    { return nil }
