package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/sirupsen/logrus"
)

// TimestampLayout is the strftime layout of each line, e.g. 2023:Sep:08 09:16:35.
const TimestampLayout = "%Y:%b:%d %H:%M:%S"

// Logger appends "<timestamp> : <message>" lines to a file. The file is
// opened and closed around every write.
type Logger struct {
	log *logrus.Logger
	out *appendFile
	Now func() time.Time
}

// New returns a Logger writing to path.
func New(path string) *Logger {
	out := &appendFile{path: path}
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(lineFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return &Logger{log: l, out: out, Now: time.Now}
}

// Path returns the log file location.
func (l *Logger) Path() string { return l.out.path }

// Log appends one line for msg.
func (l *Logger) Log(msg string) error {
	l.log.WithTime(l.Now()).Info(msg)
	if err := l.out.takeErr(); err != nil {
		return fmt.Errorf("write progress log: %w", err)
	}
	return nil
}

type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	line := strftime.Format(TimestampLayout, e.Time) + " : " + e.Message + "\n"
	return []byte(line), nil
}

// appendFile is an io.Writer that opens path in append mode for each write.
type appendFile struct {
	path string
	mu   sync.Mutex
	err  error
}

func (a *appendFile) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		a.err = err
		return 0, err
	}
	n, err := f.Write(p)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		a.err = err
	}
	return n, err
}

func (a *appendFile) takeErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.err
	a.err = nil
	return err
}
