package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CallbackURLResolver = (*ConfigCallbackURLResolver)(nil)
	_ CallbackURLResolver = CallbackURLResolverFunc(nil)
	_ MetricsRecorder     = NopMetricsRecorder{}
	_ RawConfigLoader     = StaticRawConfigLoader{}
	_ ConfigProvider      = (*CfgxConfigProvider)(nil)
	_ OptionsResolver     = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
