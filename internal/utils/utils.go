package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HostPortProtocol is a listen or dial address. Port 0 means none was given.
type HostPortProtocol struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
}

func trimProtocolPrefix(addr string) string {
	addr = strings.TrimPrefix(addr, "tcp://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimPrefix(addr, "http://")
	return addr
}

func (t *HostPortProtocol) SetHostPort(ip string, port int) {
	t.IP = trimProtocolPrefix(ip)
	t.Port = port
}

// Ignore the Protocol, return the http address. If port is 0, doesn't append it.
func (t *HostPortProtocol) HTTPAddressString() string {
	if t.Port != 0 {
		return fmt.Sprintf("http://%s:%d", t.IP, t.Port)
	}
	return fmt.Sprintf("http://%s", t.IP)
}

// This is the address string to use as arguments to net.Listen.
func (t *HostPortProtocol) BindString() string {
	if t.Port != 0 {
		return fmt.Sprintf("%s:%d", t.IP, t.Port)
	}
	return t.IP
}

func LogFilePath(name string) string {
	return fmt.Sprintf("/tmp/%s_log.txt", strings.ReplaceAll(name, " ", "_"))
}

// CreateFileLogger writes debug level JSON lines to /tmp/<name>_log.txt so that
// the terminal stays free for the prompt.
func CreateFileLogger(name string, debug bool) (*zap.SugaredLogger, error) {
	fileName := LogFilePath(name)
	f, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open/create log file %s: %w", fileName, err)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(f), level)
	return zap.New(core, zap.AddCaller()).Sugar().Named(name), nil
}

// CreateConsoleLogger is for the services that own their terminal.
func CreateConsoleLogger(name string, debug bool) *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	if !debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewExample().Sugar().Named(name)
	}
	return logger.Sugar().Named(name)
}
