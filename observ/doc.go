// Package observ is the pass's observability surface: structured decision
// logging (go.uber.org/zap), optional Graphviz dumping of a graph's
// control-flow and escape-dependency structure (github.com/emicklei/dot),
// and optional Prometheus metrics (github.com/prometheus/client_golang).
// Every integration is off by default — a caller that never supplies a
// peaconf.Option for it pays nothing beyond a nil check.
package observ
