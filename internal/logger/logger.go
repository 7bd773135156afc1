package logger

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LoggerService owns the rotating log file and the process-wide zerolog
// logger. Entries go to the console in human form and to the file as JSON.
type LoggerService struct {
	Config        map[string]interface{}
	file          *os.File
	mu            sync.Mutex
	stopCh        chan struct{}
	wg            sync.WaitGroup
	currentLog    string
	seq           int
	maxFileBytes  int64
	retentionDays int
	folderPath    string
	level         zerolog.Level
	console       io.Writer
	logger        zerolog.Logger
}

func NewLoggerService(config map[string]interface{}) *LoggerService {
	maxMB := intFromConfig(config, "max_file_mb")
	retention := intFromConfig(config, "retention_days")
	folder, _ := config["folder_path"].(string)
	if folder == "" {
		folder = "./logs"
	}
	level := zerolog.InfoLevel
	if s, ok := config["level"].(string); ok && s != "" {
		if lv, err := zerolog.ParseLevel(s); err == nil {
			level = lv
		}
	}
	return &LoggerService{
		Config:        config,
		stopCh:        make(chan struct{}),
		maxFileBytes:  int64(maxMB) * 1024 * 1024,
		retentionDays: retention,
		folderPath:    folder,
		level:         level,
		console:       os.Stdout,
	}
}

// intFromConfig reads an integer knob that may arrive as int (yaml) or
// float64 (json).
func intFromConfig(config map[string]interface{}, key string) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func (l *LoggerService) Name() string {
	return "Logger"
}

func (l *LoggerService) Start() error {
	l.mu.Lock()
	if err := os.MkdirAll(l.folderPath, 0755); err != nil {
		l.mu.Unlock()
		return err
	}
	logFile := l.nextLogFileName()
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.file = file
	l.currentLog = logFile
	l.mu.Unlock()

	console := zerolog.ConsoleWriter{Out: l.console, TimeFormat: time.RFC3339}
	l.logger = zerolog.New(zerolog.MultiLevelWriter(console, l)).
		Level(l.level).
		With().Timestamp().Logger()
	setBase(l.logger)

	// route the standard library logger through zerolog as well
	log.SetFlags(0)
	log.SetOutput(l.logger)
	l.logger.Info().Str("file", logFile).Msg("[LoggerService] started")

	l.wg.Add(1)
	go l.backgroundWorker()
	return nil
}

func (l *LoggerService) Stop() error {
	l.logger.Info().Msg("[LoggerService] stopping")
	close(l.stopCh)
	l.wg.Wait()

	log.SetFlags(log.LstdFlags)
	log.SetOutput(os.Stderr)
	setBase(New())

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Write appends p to the current log file. Once the service has stopped
// writes are discarded.
func (l *LoggerService) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return len(p), nil
	}
	return l.file.Write(p)
}

// Logger returns the service logger.
func (l *LoggerService) Logger() zerolog.Logger {
	return l.logger
}

func (l *LoggerService) nextLogFileName() string {
	l.seq++
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join(l.folderPath, fmt.Sprintf("ledger_%s_%03d.log", timestamp, l.seq))
}

func (l *LoggerService) rotateIfNeeded() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil || l.maxFileBytes <= 0 {
		return nil
	}
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < l.maxFileBytes {
		return nil
	}
	l.file.Close()
	newLog := l.nextLogFileName()
	file, err := os.OpenFile(newLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.file = nil
		return err
	}
	l.file = file
	l.currentLog = newLog
	return nil
}

func (l *LoggerService) backgroundWorker() {
	defer l.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	retentionTicker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	defer retentionTicker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			if err := l.rotateIfNeeded(); err != nil {
				fmt.Fprintf(os.Stderr, "[LoggerService] rotate failed: %v\n", err)
			}
		case <-retentionTicker.C:
			l.zipAndCleanOldLogs()
		}
	}
}

// zipAndCleanOldLogs moves log files older than the retention window into
// a dated zip archive.
func (l *LoggerService) zipAndCleanOldLogs() {
	if l.retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -l.retentionDays)
	entries, err := os.ReadDir(l.folderPath)
	if err != nil {
		return
	}

	l.mu.Lock()
	current := l.currentLog
	l.mu.Unlock()

	var old []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".log" {
			continue
		}
		fullPath := filepath.Join(l.folderPath, e.Name())
		if fullPath == current {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		old = append(old, fullPath)
	}
	if len(old) == 0 {
		return
	}

	zipName := filepath.Join(l.folderPath, fmt.Sprintf("logs_%s.zip", time.Now().Format("20060102_150405")))
	zipFile, err := os.Create(zipName)
	if err != nil {
		return
	}
	defer zipFile.Close()
	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	for _, fullPath := range old {
		w, err := zipWriter.Create(filepath.Base(fullPath))
		if err != nil {
			continue
		}
		src, err := os.Open(fullPath)
		if err != nil {
			continue
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err == nil {
			os.Remove(fullPath)
		}
	}
}

// LogAudit writes an audit line at info level with audit=true.
func (l *LoggerService) LogAudit(msg string) {
	l.logger.Info().Bool("audit", true).Msg(msg)
}

var GlobalLogger *LoggerService

func SetGlobalLogger(l *LoggerService) {
	GlobalLogger = l
}
