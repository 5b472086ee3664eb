// Package logadapter wires the analyzer's advisory Observer events into a
// structured logger. Logging sinks live outside the core, but a real
// deployment still needs one.
package logadapter

import (
	"github.com/sirupsen/logrus"

	"github.com/jbrzusto/sump-logic-analyzer/analyzer"
)

// Logrus adapts analyzer.Observer onto a *logrus.Logger.
type Logrus struct {
	Log *logrus.Logger
}

// New returns a Logrus observer using the given logger, or a fresh
// default logger if log is nil.
func New(log *logrus.Logger) *Logrus {
	if log == nil {
		log = logrus.New()
	}
	return &Logrus{Log: log}
}

// OnEvent implements analyzer.Observer.
func (l *Logrus) OnEvent(ev analyzer.Event, a *analyzer.Analyzer) {
	p := a.Params()
	entry := l.Log.WithFields(logrus.Fields{
		"status":     a.Status().String(),
		"frequency":  p.FrequencyHz,
		"readCount":  p.ReadCount,
		"delayCount": p.DelayCount,
	})
	switch ev {
	case analyzer.EventReset:
		entry.Info("sump: reset")
	case analyzer.EventStatus:
		entry.Debug("sump: status transition")
	case analyzer.EventFrequencyChanged:
		entry.Info("sump: capture frequency changed")
	case analyzer.EventTriggerChanged:
		entry.Debug("sump: trigger configuration changed")
	case analyzer.EventReadDelayChanged:
		entry.Debug("sump: read/delay count changed")
	case analyzer.EventFlagsChanged:
		entry.Debug("sump: flags changed")
	case analyzer.EventXON:
		entry.Debug("sump: XON received")
	case analyzer.EventXOFF:
		entry.Debug("sump: XOFF received")
	default:
		entry.Warn("sump: unrecognized event")
	}
}

var _ analyzer.Observer = (*Logrus)(nil)
