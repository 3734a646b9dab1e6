package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()))

func color(val string) string {
	if isWindows || noColor {
		return ""
	}
	return val
}

const (
	Reset       = "\033[0m"
	Red         = "\033[31m"
	Green       = "\033[32m"
	Magenta     = "\033[35m"
	BlueBold    = "\033[34;1m"
	MagentaBold = "\033[35;1m"
	RedBold     = "\033[31;1m"
	YellowBold  = "\033[33;1m"
	WhiteBold   = "\033[37;1m"
	CyanBold    = "\033[36;1m"
	Gray        = "\033[1;90m"
	Purple      = "\u001b[38;5;200m"
)

type levelStyle struct {
	name    string
	level   string
	message string
}

var styles = map[LogLevel]levelStyle{
	LevelTrace: {"TRACE", CyanBold, Gray},
	LevelDebug: {"DEBUG", BlueBold, Green},
	LevelInfo:  {"INFO", YellowBold, WhiteBold},
	LevelWarn:  {"WARN", MagentaBold, Magenta},
	LevelError: {"ERROR", RedBold, Red},
}

type consoleLogger struct {
	prefixes     []string
	metadata     map[string]interface{}
	sink         Sink
	logLevel     LogLevel
	sinkLogLevel LogLevel
	child        Logger
}

var _ SinkLogger = (*consoleLogger)(nil)

func (c *consoleLogger) clone() *consoleLogger {
	metadata := make(map[string]interface{}, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &consoleLogger{
		prefixes:     slices.Clone(c.prefixes),
		metadata:     metadata,
		sink:         c.sink,
		logLevel:     c.logLevel,
		sinkLogLevel: c.sinkLogLevel,
		child:        c.child,
	}
}

func (c *consoleLogger) WithContext(ctx context.Context) Logger {
	l := c.clone()
	if l.child != nil {
		l.child = l.child.WithContext(ctx)
	}
	return l
}

// WithPrefix will return a new logger with a prefix prepended to the message
func (c *consoleLogger) WithPrefix(prefix string) Logger {
	l := c.clone()
	if !slices.Contains(l.prefixes, prefix) {
		l.prefixes = append(l.prefixes, prefix)
	}
	if l.child != nil {
		l.child = l.child.WithPrefix(prefix)
	}
	return l
}

func (c *consoleLogger) With(metadata map[string]interface{}) Logger {
	l := c.clone()
	for k, v := range metadata {
		l.metadata[k] = v
	}
	if l.child != nil {
		l.child = l.child.With(metadata)
	}
	return l
}

func (c *consoleLogger) SetSink(sink Sink, level LogLevel) {
	c.sink = sink
	c.sinkLogLevel = level
	if child, ok := c.child.(SinkLogger); ok {
		child.SetSink(sink, level)
	}
}

func (c *consoleLogger) format(level LogLevel, msg string, args ...interface{}) string {
	style := styles[level]
	var prefix, suffix string
	if len(c.prefixes) > 0 {
		prefix = color(Purple) + strings.Join(c.prefixes, " ") + color(Reset) + " "
	}
	if len(c.metadata) > 0 {
		buf, _ := json.Marshal(c.metadata)
		suffix = " " + color(Gray) + string(buf) + color(Reset)
	}
	levelText := color(style.level) + fmt.Sprintf("[%-5s]", style.name) + color(Reset)
	message := color(style.message) + fmt.Sprintf(msg, args...) + color(Reset)
	return fmt.Sprintf("%s %s%s%s", levelText, prefix, message, suffix)
}

func (c *consoleLogger) log(level LogLevel, msg string, args ...interface{}) {
	toConsole := level >= c.logLevel
	toSink := c.sink != nil && level >= c.sinkLogLevel
	if !toConsole && !toSink {
		return
	}
	out := c.format(level, msg, args...)
	if toConsole {
		log.Printf("%s\n", out)
	}
	if toSink {
		ts := time.Now().Format(time.RFC3339Nano)
		c.sink.Write([]byte(ts + " " + ansiColorStripper.ReplaceAllString(out, "") + "\n"))
	}
}

func (c *consoleLogger) Trace(msg string, args ...interface{}) {
	c.log(LevelTrace, msg, args...)
	if c.child != nil {
		c.child.Trace(msg, args...)
	}
}

func (c *consoleLogger) Debug(msg string, args ...interface{}) {
	c.log(LevelDebug, msg, args...)
	if c.child != nil {
		c.child.Debug(msg, args...)
	}
}

func (c *consoleLogger) Info(msg string, args ...interface{}) {
	c.log(LevelInfo, msg, args...)
	if c.child != nil {
		c.child.Info(msg, args...)
	}
}

func (c *consoleLogger) Warn(msg string, args ...interface{}) {
	c.log(LevelWarn, msg, args...)
	if c.child != nil {
		c.child.Warn(msg, args...)
	}
}

func (c *consoleLogger) Error(msg string, args ...interface{}) {
	c.log(LevelError, msg, args...)
	if c.child != nil {
		c.child.Error(msg, args...)
	}
}

func (c *consoleLogger) Fatal(msg string, args ...interface{}) {
	c.log(LevelError, msg, args...)
	if c.child != nil {
		c.child.Error(msg, args...) // Error because we want to log the error before exiting
	}
	os.Exit(1)
}

func (c *consoleLogger) Stack(next Logger) Logger {
	l := c.clone()
	l.child = next
	return l
}

// NewConsoleLogger returns a new Logger instance which will log to the console
func NewConsoleLogger(levels ...LogLevel) SinkLogger {
	level := GetLevelFromEnv()
	if len(levels) > 0 {
		level = levels[0]
	}
	return &consoleLogger{logLevel: level, sinkLogLevel: LevelNone, metadata: map[string]interface{}{}}
}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	return NewConsoleLogger(LevelNone)
}
