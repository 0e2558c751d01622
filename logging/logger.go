package logging

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger = logrus.New()

// Formatter writes one line per event: timestamp, level, a per-event id and
// the message plus structured fields.
type Formatter struct {
	ServiceName string
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("time=%s service=%s level=%s event=%s msg=%q",
		entry.Time.Format("2006-01-02T15:04:05Z07:00"),
		f.ServiceName,
		strings.ToUpper(entry.Level.String()),
		uuid.New().String(),
		entry.Message,
	))
	for k, v := range entry.Data {
		b.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Init configures the shared logger. With LOG_DIR set, output rotates inside
// that directory; otherwise it goes to stdout (docker logs).
func Init() {
	Logger.SetFormatter(&Formatter{ServiceName: "apexbuild-api"})

	level := logrus.InfoLevel
	if parsed, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		level = parsed
	}
	Logger.SetLevel(level)

	dir := os.Getenv("LOG_DIR")
	if dir == "" {
		Logger.SetOutput(os.Stdout)
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			logrus.Fatalf("Failed to create log directory: %v", err)
		}
	}
	Logger.SetOutput(&lumberjack.Logger{
		Filename:   dir + "/apexbuild.log",
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
}
