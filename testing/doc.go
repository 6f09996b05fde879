// Package testing provides a simulated call leg for deterministic tests of
// AudioSocket bridges.
//
// [SimulatedCallLeg] implements interfaces.ICallLeg. Tests script what the
// call side sends, then inspect what it received:
//
//	leg := testing.NewSimulatedCallLeg(nil)
//	leg.QueueVoice(make([]byte, 320))
//	leg.Hangup() // ReadMedia returns io.EOF once the queue drains
//
//	result := bridge.New(sess, leg).Run(ctx)
//	units := leg.Received()
//
// A simulated leg logs a warning on creation so it is never mistaken for a
// real call in production logs.
package testing
