package main

import (
	"io"

	"github.com/XandyNerd/BuscarLead/adapters/gologger"
	glog "github.com/goliatone/go-logger/glog"
)

// newLogger builds the root logger. Named children handed out through
// GetLogger carry their name as the "logger" attribute.
func newLogger(w io.Writer, cfg logConfig) *glog.BaseLogger {
	return glog.NewLogger(
		glog.WithName(gologger.ServiceLoggerName),
		glog.WithLevel(cfg.Level),
		glog.WithLoggerType(cfg.Format),
		glog.WithWriter(w),
	)
}
