package space

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "space")
