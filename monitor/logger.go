package monitor

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "monitor")
