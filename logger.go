package kafka

// Logger interface API for log.Logger.
type Logger interface {
	Printf(string, ...any)
}

// LoggerFunc is a bridge between Logger and any third party logger with the
// same signature.
//
// Usage:
//
//	l := NewLogger() // some logger
//	c, err := kafka.NewCluster("localhost:9092", kafka.ClusterConfig{
//	  Logger: kafka.LoggerFunc(l.Infof),
//	})
type LoggerFunc func(string, ...any)

func (f LoggerFunc) Printf(msg string, args ...any) { f(msg, args...) }

// nopLogger is installed when no logger was configured so the rest of the
// code never has to test for nil.
type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
