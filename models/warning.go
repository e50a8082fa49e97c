package models

import "fmt"

// Warning records a degraded-but-tolerated outcome: background music that
// could not be mixed, a probe that fell back to a default duration, a
// thumbnail built from the fallback backdrop. Warnings travel with
// results so callers can log exactly what degraded instead of losing that
// information in a silent catch.
type Warning struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

// NewWarning builds a Warning with a formatted message.
func NewWarning(component, format string, args ...any) Warning {
	return Warning{Component: component, Message: fmt.Sprintf(format, args...)}
}

func (w Warning) String() string {
	return w.Component + ": " + w.Message
}

// WarningStrings flattens warnings for serialization into run records.
func WarningStrings(warnings []Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}
