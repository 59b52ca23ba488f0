package dbgname

import "github.com/logrusorgru/aurora"

// ColorFrozen, ColorConstrained and ColorLimited mirror Trapezoid's own
// DbgName() convention of coloring a debug name by the kinetic state it is
// in, rather than printing a structured log line for every vertex on
// every tick.
func ColorFrozen(name string) string      { return aurora.Cyan(name).String() }
func ColorConstrained(name string) string { return aurora.Green(name).String() }
func ColorLimited(name string) string     { return aurora.Red(name).String() }
func ColorUnconstrained(name string) string {
	return aurora.White(name).String()
}
