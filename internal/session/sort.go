package session

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/k3y5tr0k3/sysmonify/pkg/payload"
)

// Column classes drive the comparison used when sorting. Numeric columns
// compare as numbers with unparsable values sorting below everything;
// duration columns normalize HH:MM:SS to seconds first; everything else
// compares as case-sensitive text.
var (
	numericColumns = map[string]bool{
		"pid":            true,
		"cpu":            true,
		"memory":         true,
		"sent_bytes":     true,
		"received_bytes": true,
	}
	durationColumns = map[string]bool{
		"up_time": true,
	}
)

// processField renders one process table column as a string, for filter
// equality and sorting.
func processField(pid string, info payload.ProcessInfo, column string) string {
	switch column {
	case "pid":
		return pid
	case "command":
		return info.Command
	case "user":
		return info.User
	case "cpu":
		return strconv.FormatFloat(info.CPU, 'f', -1, 64)
	case "memory":
		return strconv.FormatFloat(info.Memory, 'f', -1, 64)
	case "up_time":
		return info.UpTime
	}
	return ""
}

// connectionField renders one connection table column as a string.
func connectionField(id string, conn payload.Connection, column string) string {
	switch column {
	case "id":
		return id
	case "pid":
		return strconv.Itoa(int(conn.PID))
	case "process":
		return conn.Process
	case "protocol":
		return conn.Protocol
	case "state":
		return conn.State
	case "local_address":
		return conn.LocalAddress
	case "foreign_address":
		return conn.ForeignAddress
	case "sent_bytes":
		return strconv.FormatUint(conn.SentBytes, 10)
	case "received_bytes":
		return strconv.FormatUint(conn.ReceivedBytes, 10)
	}
	return ""
}

// compareColumn orders two rendered column values: negative when a sorts
// before b ascending, zero on ties.
func compareColumn(column, a, b string) int {
	switch {
	case numericColumns[column]:
		return compareFloat(numericValue(a), numericValue(b))
	case durationColumns[column]:
		return compareFloat(durationSeconds(a), durationSeconds(b))
	}
	return strings.Compare(a, b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// numericValue parses a column value as a number. Non-numeric values sort
// below every number.
func numericValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.Inf(-1)
	}
	return v
}

// durationSeconds converts an HH:MM:SS uptime to seconds. Malformed values
// sort below every well-formed one.
func durationSeconds(s string) float64 {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return math.Inf(-1)
	}

	var total float64
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return math.Inf(-1)
		}
		total = total*60 + float64(n)
	}
	return total
}

// sortProcessRows orders the process table. Ties on the sort column fall
// back to pid ascending so row order is stable between ticks. A nil sort
// means the default view: CPU descending.
func sortProcessRows(rows []ProcessRow, srt *Sort) {
	column, descending := "cpu", true
	if srt != nil {
		column, descending = srt.Column, srt.Descending
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c := compareColumn(column,
			processField(rows[i].PID, rows[i].Info, column),
			processField(rows[j].PID, rows[j].Info, column))
		if c == 0 {
			return numericValue(rows[i].PID) < numericValue(rows[j].PID)
		}
		if descending {
			return c > 0
		}
		return c < 0
	})
}

// sortConnectionRows orders the connection table, ties falling back to the
// connection id. A nil sort means id ascending.
func sortConnectionRows(rows []ConnectionRow, srt *Sort) {
	if srt == nil {
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].ID < rows[j].ID
		})
		return
	}

	column, descending := srt.Column, srt.Descending
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareColumn(column,
			connectionField(rows[i].ID, rows[i].Conn, column),
			connectionField(rows[j].ID, rows[j].Conn, column))
		if c == 0 {
			return rows[i].ID < rows[j].ID
		}
		if descending {
			return c > 0
		}
		return c < 0
	})
}
