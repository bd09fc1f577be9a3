package main

import (
	"flag"
	"fmt"

	"pipelined.dev/audiostream"
)

type formatsCommand struct{}

func (cmd *formatsCommand) Name() string {
	return "formats"
}

func (cmd *formatsCommand) Help() string {
	return "Show supported sample formats, sources and sinks"
}

func (cmd *formatsCommand) Register(*flag.FlagSet) {}

func (cmd *formatsCommand) Run() error {
	fmt.Println("Sample formats:")
	for _, f := range []audiostream.SampleFormat{audiostream.Int16, audiostream.Float32} {
		fmt.Printf("\t%v\t%d bytes per sample\n", f, f.BytesPerSample())
	}
	fmt.Println("Sources:\n\ttone\n\twav\n\tmp3")
	fmt.Println("Sinks:\n\toto\n\tportaudio (portaudio build tag)\n\twav\n\tmp3 (lame build tag)")
	return nil
}
