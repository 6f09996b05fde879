// Package bridge forwards audio between a call leg and an AudioSocket
// session until one side ends.
//
// A Bridge has two states, Running and Terminated. While running it waits,
// without a timeout, for either the call leg to produce a unit or the
// session to produce a frame:
//
//   - call voice is sent as an audio frame; control units are ignored
//   - received audio is delivered to the call leg as a voice unit
//   - discarded or empty reads from the socket are skipped
//
// The first terminal event stops the loop and is reported as the Result's
// Reason. The bridge performs no retries of its own and never closes the
// session: the caller restores its call-side state and closes the session
// afterwards, which also releases the socket reader if the bridge stopped
// because of the call side.
//
//	sess, _ := session.Open(conn, id)
//	defer sess.Close()
//
//	res := bridge.New(sess, leg).Run(ctx)
//	if res.Failed() {
//	    log.Printf("session %s failed: %s: %v", sess.ID(), res.Reason, res.Err)
//	}
//
// Each side is read by its own goroutine so the order of audio on each side
// is preserved. Cancelling ctx terminates the loop with ReasonCancelled.
package bridge
