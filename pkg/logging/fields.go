package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Field helpers for the names that recur across the pipeline
func Component(name string) Field {
	return String("component", name)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Hub(name string) Field {
	return String("hub", name)
}

func Sector(name string) Field {
	return String("sector", name)
}

func Nodes(n int) Field {
	return Int("nodes", n)
}

func Edges(n int) Field {
	return Int("edges", n)
}

func Columns(n int) Field {
	return Int("columns", n)
}

func Rows(n int) Field {
	return Int("rows", n)
}

func Objective(v float64) Field {
	return Float64("objective", v)
}

func SolveStatus(s string) Field {
	return String("status", s)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
