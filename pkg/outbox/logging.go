package outbox

import (
	"io"

	"github.com/sirupsen/logrus"
)

func logrusNop() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
