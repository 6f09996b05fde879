// Command audiosocket dials or serves AudioSocket sessions.
//
//	audiosocket dial --to media.example.com:9092 --in prompt.sln --out reply.sln
//	audiosocket serve --listen :9092 --record ./recordings
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
