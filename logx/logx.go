package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultLogDir     = "./logs/"
	defaultMaxSizeMB  = 100
	defaultMaxAgeDays = 7
)

// LogConfig selects where log lines go. An empty File means stderr.
type LogConfig struct {
	File       string `ini:"file"`
	MaxSizeMB  int    `ini:"max_size_mb"`
	MaxAgeDays int    `ini:"max_age_days"`
}

var (
	mu     sync.RWMutex
	sink   io.WriteCloser
	logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

func init() {
	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		Configure(LogConfig{
			File:       defaultLogDir + logFile,
			MaxSizeMB:  envInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB),
			MaxAgeDays: envInt("LOGFILE_MAX_AGE_DAYS", defaultMaxAgeDays),
		})
	}
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Configure re-points the package logger. A rolling lumberjack file is used when
// cfg.File is set.
func Configure(cfg LogConfig) {
	var out io.Writer = os.Stderr
	var next io.WriteCloser
	if cfg.File != "" {
		if cfg.MaxSizeMB <= 0 {
			cfg.MaxSizeMB = defaultMaxSizeMB
		}
		if cfg.MaxAgeDays <= 0 {
			cfg.MaxAgeDays = defaultMaxAgeDays
		}
		next = &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.MaxSizeMB, // megabytes
			MaxAge:   cfg.MaxAgeDays, // days
		}
		out = next
	}

	mu.Lock()
	prev := sink
	sink = next
	logger = log.New(out, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
}

// SetOutput sends log lines to w, mostly useful in tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

func write(level, color, category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[%s][%s]%s", color, level, category, ColorReset)
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Printf("%s: %s", coloredCategory, message)
}

func Info(category string, content ...interface{}) {
	write("INFO", ColorGreen, category, content...)
}

func Error(category string, content ...interface{}) {
	write("ERROR", ColorRed, category, content...)
}

func Warn(category string, content ...interface{}) {
	write("WARN", ColorYellow, category, content...)
}

func Debug(category string, content ...interface{}) {
	write("DEBUG", ColorBlue, category, content...)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
