package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	levelNames = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	levelColors = map[LogLevel]string{
		DEBUG: "\033[36m", // Cyan
		INFO:  "\033[32m", // Green
		WARN:  "\033[33m", // Yellow
		ERROR: "\033[31m", // Red
		FATAL: "\033[35m", // Magenta
	}

	resetColor = "\033[0m"
)

// String 레벨 이름 반환
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel 설정 문자열을 LogLevel 로 변환
func ParseLevel(value string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level: %s", value)
}

// Logger writes leveled entries to the console and an optional daily file.
type Logger struct {
	level      LogLevel
	console    io.Writer
	file       *os.File
	fileDay    string
	logDir     string
	mu         sync.Mutex
	useColor   bool
	prefix     string
	showCaller bool
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Config describes how the logger should be initialised.
type Config struct {
	Level      LogLevel
	LogDir     string
	MaxSize    int64 // bytes
	MaxAge     int   // days
	UseColor   bool
	ShowCaller bool
	Prefix     string
	// Output 콘솔 대신 사용할 writer (테스트용)
	Output io.Writer
}

// Initialize boots the global logger instance if it has not been created yet.
func Initialize(config Config) error {
	var err error
	once.Do(func() {
		defaultLogger, err = newLogger(config)
	})
	return err
}

func newLogger(config Config) (*Logger, error) {
	l := &Logger{
		level:      config.Level,
		console:    config.Output,
		useColor:   config.UseColor,
		prefix:     config.Prefix,
		showCaller: config.ShowCaller,
		logDir:     config.LogDir,
	}
	if l.console == nil {
		l.console = os.Stdout
	}

	if config.LogDir != "" {
		if err := os.MkdirAll(config.LogDir, 0755); err != nil {
			return nil, err
		}
		if err := l.openDailyFile(time.Now()); err != nil {
			return nil, err
		}
		go l.rotateLogFiles(config.MaxSize, config.MaxAge)
	}

	return l, nil
}

// openDailyFile 날짜별 로그 파일 열기 (mu 보유 상태 또는 초기화 시 호출)
func (l *Logger) openDailyFile(now time.Time) error {
	day := now.Format("2006-01-02")
	logPath := filepath.Join(l.logDir, fmt.Sprintf("server-%s.log", day))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	if l.file != nil {
		l.file.Close()
	}
	l.file = file
	l.fileDay = day
	return nil
}

// rotateLogFiles periodically archives oversized files and prunes old ones.
func (l *Logger) rotateLogFiles(maxSize int64, maxAge int) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for now := range ticker.C {
		l.rotate(now, maxSize, maxAge)
	}
}

// rotate 한 번의 정리. 보관한 파일이 현재 파일이면 새 파일을 연다
func (l *Logger) rotate(now time.Time, maxSize int64, maxAge int) {
	files, _ := filepath.Glob(filepath.Join(l.logDir, "server-*.log"))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}

		if maxAge > 0 && now.Sub(info.ModTime()).Hours() > float64(maxAge*24) {
			os.Remove(file)
			continue
		}

		if maxSize > 0 && info.Size() > maxSize {
			archived := strings.Replace(file, ".log", fmt.Sprintf("-%d.log", now.Unix()), 1)
			if err := os.Rename(file, archived); err == nil {
				l.mu.Lock()
				l.openDailyFile(now)
				l.mu.Unlock()
			}
		}
	}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	timestamp := now.Format("2006-01-02 15:04:05.000")
	levelName := levelNames[level]
	message := fmt.Sprintf(format, args...)

	caller := ""
	if l.showCaller {
		_, file, line, ok := runtime.Caller(3)
		if ok {
			caller = fmt.Sprintf(" [%s:%d]", filepath.Base(file), line)
		}
	}

	if l.useColor {
		fmt.Fprintf(l.console, "%s%s [%s]%s %s%s%s\n",
			timestamp, caller, levelName, l.prefix, levelColors[level], message, resetColor)
	} else {
		fmt.Fprintf(l.console, "%s%s [%s]%s %s\n", timestamp, caller, levelName, l.prefix, message)
	}

	if l.file != nil {
		// 날짜가 바뀌면 새 파일로 전환
		if day := now.Format("2006-01-02"); day != l.fileDay {
			l.openDailyFile(now)
		}
		fmt.Fprintf(l.file, "%s%s [%s]%s %s\n", timestamp, caller, levelName, l.prefix, message)
	}

	if level == FATAL {
		os.Exit(1)
	}
}

func logDefault(level LogLevel, format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.log(level, format, args...)
		return
	}
	if level == DEBUG {
		return
	}
	if level == FATAL {
		log.Fatalf("[FATAL] "+format, args...)
	}
	log.Printf("["+levelNames[level]+"] "+format, args...)
}

func Debug(format string, args ...interface{}) { logDefault(DEBUG, format, args...) }

func Info(format string, args ...interface{}) { logDefault(INFO, format, args...) }

func Warn(format string, args ...interface{}) { logDefault(WARN, format, args...) }

func Error(format string, args ...interface{}) { logDefault(ERROR, format, args...) }

func Fatal(format string, args ...interface{}) { logDefault(FATAL, format, args...) }

// WithFields attaches structured fields to the log entry.
func WithFields(fields map[string]interface{}) *LogEntry {
	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &LogEntry{fields: copied}
}

// WithField 단일 필드 엔트리
func WithField(key string, value interface{}) *LogEntry {
	return WithFields(map[string]interface{}{key: value})
}

// LogEntry represents a structured log entry builder.
type LogEntry struct {
	fields map[string]interface{}
}

// WithField 필드 추가
func (e *LogEntry) WithField(key string, value interface{}) *LogEntry {
	e.fields[key] = value
	return e
}

// WithError error 필드 추가
func (e *LogEntry) WithError(err error) *LogEntry {
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

func (e *LogEntry) Debug(format string, args ...interface{}) { e.log(DEBUG, format, args...) }

func (e *LogEntry) Info(format string, args ...interface{}) { e.log(INFO, format, args...) }

func (e *LogEntry) Warn(format string, args ...interface{}) { e.log(WARN, format, args...) }

func (e *LogEntry) Error(format string, args ...interface{}) { e.log(ERROR, format, args...) }

func (e *LogEntry) Fatal(format string, args ...interface{}) { e.log(FATAL, format, args...) }

// Log allows emitting a message with an explicit level via the entry.
func (e *LogEntry) Log(level LogLevel, format string, args ...interface{}) {
	e.log(level, format, args...)
}

func (e *LogEntry) log(level LogLevel, format string, args ...interface{}) {
	if defaultLogger == nil || level < defaultLogger.level {
		return
	}

	message := fmt.Sprintf(format, args...)
	if len(e.fields) > 0 {
		message = fmt.Sprintf("%s | %s", message, formatFields(e.fields))
	}

	defaultLogger.log(level, "%s", message)
}

// formatFields 키 순서를 고정해 출력
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, ", ")
}

// SetLevel updates the global logging level.
func SetLevel(level LogLevel) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.level = level
		defaultLogger.mu.Unlock()
	}
}

// GetLevel returns the current global logging level.
func GetLevel() LogLevel {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defer defaultLogger.mu.Unlock()
		return defaultLogger.level
	}
	return INFO
}

// Close 로그 파일 닫기
func Close() {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defer defaultLogger.mu.Unlock()
		if defaultLogger.file != nil {
			defaultLogger.file.Close()
			defaultLogger.file = nil
		}
	}
}
