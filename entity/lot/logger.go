package lot

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "lot")
