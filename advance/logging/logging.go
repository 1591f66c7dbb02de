// Package logging implements the core's variadic, level-gated log function
// (spec 4.7), layered over the teacher's choice of log/slog: a bitmask log
// level per message, a thread-local "current Machine" fallback when no
// target is given explicitly, an optional handler delegate, and a
// FATAL-always-passes, FATAL-terminates-the-process contract.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

// Level is a bitflag so a Machine's logLevel mask can select an arbitrary
// subset of severities rather than a single threshold.
type Level uint8

const (
	LevelDebug Level = 1 << iota
	LevelInfo
	LevelWarn
	LevelStub
	LevelError
	LevelFatal
)

func (l Level) slogLevel() slog.Level {
	switch {
	case l&LevelFatal != 0, l&LevelError != 0:
		return slog.LevelError
	case l&LevelWarn != 0, l&LevelStub != 0:
		return slog.LevelWarn
	case l&LevelInfo != 0:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Target is the capability a log destination exposes: its gating mask and
// an optional handler delegate. Implemented by advance.Machine; defined
// here (rather than imported) so this package has no dependency on the
// core, avoiding an import cycle.
type Target interface {
	LogLevel() Level
	LogHandlerFunc() func(Level, string)
}

var current sync.Map // threadKey{} -> Target (a single process-wide slot)

// threadKey is a comparable token identifying "the current thread" without
// access to real OS thread identity, which Go does not expose. The core is
// documented as strictly single-threaded and cooperative (spec 5), so a
// single global slot is a faithful simplification of the spec's
// process-wide thread-identity map rather than a compromise.
type threadKey struct{}

// Bind installs t as the Machine resolved by Log calls with no explicit
// target, for the caller's effective "thread" (in practice: the process,
// since the core never runs more than one cooperative scheduler at a time).
func Bind(t Target) { current.Store(threadKey{}, t) }

// Unbind clears the bound Machine.
func Unbind() { current.Delete(threadKey{}) }

func resolve(t Target) Target {
	if t != nil {
		return t
	}
	if v, ok := current.Load(threadKey{}); ok {
		return v.(Target)
	}
	return nil
}

// Log emits msg at level against target (or the thread-local fallback if
// target is nil). If a handler is installed on the resolved target, it
// receives every message regardless of level. Otherwise, messages whose
// level is not in the target's logLevel mask are dropped, except FATAL
// which always passes. FATAL terminates the process after logging.
func Log(target Target, level Level, msg string, kv ...any) {
	t := resolve(target)

	rendered := msg
	if len(kv) > 0 {
		rendered = renderMsg(msg, kv)
	}

	if t != nil {
		if h := t.LogHandlerFunc(); h != nil {
			h(level, rendered)
			if level&LevelFatal != 0 {
				os.Exit(1)
			}
			return
		}
		if level&LevelFatal == 0 && t.LogLevel()&level == 0 {
			return
		}
	}

	slog.Log(nil, level.slogLevel(), msg, kv...)

	if level&LevelFatal != 0 {
		os.Exit(1)
	}
}

func renderMsg(msg string, kv []any) string {
	out := msg
	for i := 0; i+1 < len(kv); i += 2 {
		out += " "
		if s, ok := kv[i].(string); ok {
			out += s
		}
		out += "="
		out += slog.AnyValue(kv[i+1]).String()
	}
	return out
}

// DebuggerShim translates a debugger-originated severity (DEBUG/INFO/WARN/
// ERROR) into the core's log level bitflag, per spec 4.7's translation
// shim between debugger log levels and core log levels.
func DebuggerShim(severity string) Level {
	switch severity {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelWarn
	}
}
