/*
Package audiostream allows to continuously feed an audio output sink with
blocks rendered by a producer callback.

Concept

The engine owns three things: the sink, the transfer buffer and the
streaming goroutine. Once started, the goroutine repeats two steps until
it's stopped or the sink stops accepting data:

    Render - the producer fills the transfer buffer with one block;
    Write - the block is handed to the sink.

Sinks

Sinks are created with Opener when engine is configured:

    e := audiostream.New(oto.NewOpener())
    err := e.Configure(audiostream.Config{
        Format:         audiostream.Int16,
        SampleRate:     44100,
        NumChannels:    2,
        FramesPerBlock: 512,
        BlockCount:     4,
    })

The sink pre-buffers FramesPerBlock * BlockCount frames. Sinks that
support direct buffers receive raw memory of the transfer buffer, others
get typed samples and copy them.

Streaming

Start launches the streaming goroutine and returns immediately:

    err := e.Start(producer.Render, nil)

The producer is called with buffer of FramesPerBlock interleaved frames.
It must fill the whole buffer. If sink accepts less data than requested,
the stream terminates silently. Termination reason can be observed with
WithTermination option.

Stop joins the streaming goroutine, the stream can be started again
afterwards. Close stops the stream and releases the sink.

Results

All errors wrap one of ErrInvalidArgument, ErrIllegalState or ErrInternal.
ResultOf maps them into result codes.
*/
package audiostream
