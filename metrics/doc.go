// Package metrics exports AudioSocket session metrics to Prometheus.
//
// A Collector implements bridge.Observer and transport.AttemptFunc, so one
// value can be handed to a dialler, a bridge and a server:
//
//	reg := prometheus.NewRegistry()
//	col := metrics.NewCollector(reg)
//
//	conn, _ := transport.NewConnector(transport.WithAttemptHook(col.ConnectAttempt)).Dial(ctx, dest)
//	res := bridge.New(sess, leg, bridge.WithObserver(col)).Run(ctx)
//
//	exp := metrics.NewExporter(":9100", reg)
//	go exp.Start()
//
// All series live in the "audiosocket" namespace.
package metrics
