// Package valid accumulates non-fatal validation findings noticed while
// decoding legacy images or encoding output containers.
package valid

import "fmt"

// Severity classifies a finding.
type Severity int

const (
	Info Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	}
	return "unknown"
}

// Finding is a single non-fatal anomaly. Findings never abort processing;
// they are surfaced to the caller for optional display.
type Finding struct {
	Severity Severity
	Message  string
	Keyword  string // offending keyword name, if any
}

func (f Finding) String() string {
	if f.Keyword != "" {
		return fmt.Sprintf("%s: %s: %s", f.Severity, f.Keyword, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Severity, f.Message)
}

// Findings is an append-only list of findings. A nil *Findings discards
// everything, so collection can be switched off without branching at every
// call site.
type Findings []Finding

// Warnf records a warning-severity finding.
func (fs *Findings) Warnf(keyword, format string, args ...any) {
	fs.add(Warning, keyword, format, args...)
}

// Infof records an info-severity finding.
func (fs *Findings) Infof(keyword, format string, args ...any) {
	fs.add(Info, keyword, format, args...)
}

func (fs *Findings) add(sev Severity, keyword, format string, args ...any) {
	if fs == nil {
		return
	}
	*fs = append(*fs, Finding{Severity: sev, Message: fmt.Sprintf(format, args...), Keyword: keyword})
}

// Warnings returns only the warning-severity findings.
func (fs Findings) Warnings() []Finding {
	var out []Finding
	for _, f := range fs {
		if f.Severity == Warning {
			out = append(out, f)
		}
	}
	return out
}
