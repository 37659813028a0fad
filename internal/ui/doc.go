// Package ui renders slink's terminal output.
//
// Formatters colour text by what it is: a command to run (Code), a server
// path (Path), a link to hand out (URL), a file name or recipient
// (Highlight) or secondary detail (Muted). When NO_COLOR is set or the
// terminal has no colour support they fall back to plain delimiters, so
// `slink ls | grep` and the tests see stable text:
//
//	ui.Code.Sprint("slink share bob a.txt")   // `slink share bob a.txt`
//	ui.URL.Sprint("https://host/Xk3/a.txt")   // <https://host/Xk3/a.txt>
//	ui.Highlight.Sprint("bob")                // 'bob'
//	ui.Muted.Sprint("revoked")                // (revoked)
//
// Result lines start with a marker: Check, Cross, Arrow for a next step,
// and Caution.
//
// NewTable aligns the columns of ls and show.
package ui
