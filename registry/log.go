package registry

// Logger is the logging collaborator of a Registry. The standard logger of
// logrus satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

type nullLogger struct{}

func (n *nullLogger) Debugf(format string, args ...interface{}) {}
func (n *nullLogger) Infof(format string, args ...interface{})  {}
