// Package interfaces defines the collaborators an AudioSocket bridge talks to
// on the call side.
//
// The bridge never knows where call audio comes from or goes to. It reads
// units from an [IMediaSource] and hands received audio to an [IMediaSink];
// a call leg is both. The 16-byte session token is supplied by an
// [ISessionIDProvider], which is free to generate, look up or pass through
// identifiers as it sees fit.
//
// # Call Legs
//
// An [IMediaSource] must separate "nothing yet" from "finished": ReadMedia
// blocks until a unit is available and returns io.EOF (or any other error)
// when the call side is gone.
//
//	type micLeg struct{ ... }
//
//	func (m *micLeg) ReadMedia(ctx context.Context) (media.Unit, error) {
//	    select {
//	    case pcm, ok := <-m.captured:
//	        if !ok {
//	            return media.Unit{}, io.EOF
//	        }
//	        return media.NewVoice(pcm), nil
//	    case <-ctx.Done():
//	        return media.Unit{}, ctx.Err()
//	    }
//	}
//
// [NewCallLeg] joins an independent source and sink, such as a
// media.ReaderSource over an input file and a media.WriterSink over an
// output file.
//
// # Simulation
//
// The testing package provides a scripted call leg implementing [ICallLeg]
// for deterministic tests of the bridge.
package interfaces
