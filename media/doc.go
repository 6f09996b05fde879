// Package media holds the call-side representation of audio.
//
// A Unit is what a call leg produces and consumes: either a voice unit
// carrying signed linear 16-bit mono PCM at 8 kHz, or a control unit the
// bridge does not forward. FromFrame and Unit.Payload translate between
// units and AudioSocket audio frames without touching the samples.
//
// ReaderSource and WriterSink adapt plain byte streams, such as raw .sln
// files, to the call-leg interfaces. ReaderSource paces its output at one
// unit per frame interval so a file plays back in real time.
package media
