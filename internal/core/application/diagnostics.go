package application

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Pipeline stages reported in diagnostics.
const (
	StageRegistry    = "registry"
	StageAccounts    = "accounts"
	StageExtraction  = "extraction"
	StageAttribution = "attribution"
	StagePositions   = "positions"
)

// DiagnosticLevel ...
type DiagnosticLevel int

const (
	LevelInfo DiagnosticLevel = iota
	LevelWarning
)

func (l DiagnosticLevel) String() string {
	if l == LevelWarning {
		return "warning"
	}
	return "info"
}

// Diagnostic is a non fatal observation made while migrating.
type Diagnostic struct {
	Level   DiagnosticLevel
	Stage   string
	TxID    string
	Message string
}

func (d Diagnostic) String() string {
	if d.TxID != "" {
		return fmt.Sprintf("[%s] tx %s: %s", d.Stage, d.TxID, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Stage, d.Message)
}

// DiagnosticSink receives diagnostics as they are produced.
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// Diagnostics collects every reported diagnostic. It is safe for
// concurrent use.
type Diagnostics struct {
	lock    sync.Mutex
	entries []Diagnostic
}

// Report ...
func (c *Diagnostics) Report(d Diagnostic) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries = append(c.entries, d)
}

// Entries returns a copy of the collected diagnostics in report order.
func (c *Diagnostics) Entries() []Diagnostic {
	c.lock.Lock()
	defer c.lock.Unlock()
	entries := make([]Diagnostic, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// Warnings returns the number of warnings collected.
func (c *Diagnostics) Warnings() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	count := 0
	for _, d := range c.entries {
		if d.Level == LevelWarning {
			count++
		}
	}
	return count
}

type logSink struct {
	logger *log.Entry
}

// NewLogSink forwards diagnostics to logger.
func NewLogSink(logger *log.Entry) DiagnosticSink {
	return logSink{logger}
}

func (s logSink) Report(d Diagnostic) {
	entry := s.logger.WithField("stage", d.Stage)
	if d.TxID != "" {
		entry = entry.WithField("txid", d.TxID)
	}
	if d.Level == LevelWarning {
		entry.Warn(d.Message)
		return
	}
	entry.Debug(d.Message)
}

type teeSink []DiagnosticSink

// TeeSink reports every diagnostic to all the non nil sinks.
func TeeSink(sinks ...DiagnosticSink) DiagnosticSink {
	tee := make(teeSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			tee = append(tee, s)
		}
	}
	return tee
}

func (t teeSink) Report(d Diagnostic) {
	for _, s := range t {
		s.Report(d)
	}
}

func warnf(sink DiagnosticSink, stage, txid, format string, args ...interface{}) {
	sink.Report(Diagnostic{
		Level: LevelWarning, Stage: stage, TxID: txid,
		Message: fmt.Sprintf(format, args...),
	})
}

func infof(sink DiagnosticSink, stage, format string, args ...interface{}) {
	sink.Report(Diagnostic{
		Level: LevelInfo, Stage: stage, Message: fmt.Sprintf(format, args...),
	})
}
