package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"docstream-backend/internal/apperr"
)

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write("info", msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write("warn", msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write("error", msg, fields)
}

// Failure logs err at error level. Structured errors contribute their
// code, operation, actor and tenant fields; plain errors log as-is.
func Failure(msg string, err error, fields map[string]any) {
	merged := make(map[string]any, len(fields)+6)
	for k, v := range fields {
		merged[k] = v
	}
	var structured *apperr.Error
	if errors.As(err, &structured) {
		for k, v := range structured.Fields() {
			merged[k] = v
		}
	} else if err != nil {
		merged["err"] = err.Error()
	}
	write("error", msg, merged)
}

func write(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	entry["ts"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["msg"] = msg
	for k, v := range fields {
		entry[k] = v
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stdout, `{"ts":"%s","level":"error","msg":"logger marshal failed","err":%q}`+"\n", time.Now().UTC().Format(time.RFC3339), err.Error())
		return
	}
	fmt.Fprintln(os.Stdout, string(data))
}
