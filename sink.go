package audiostream

// SinkConfig is the configuration the output sink is created with.
type SinkConfig struct {
	Format         SampleFormat
	SampleRate     int
	NumChannels    int
	FramesPerBlock int
	// BufferFrames is the size of sink's internal buffer in frames.
	BufferFrames int
}

// Sink is the audio destination operating in streaming mode. It is owned
// by a single engine. Between Play and Stop it's accessed only by the
// streaming goroutine.
//
// Write methods block until the sink accepts or rejects the data. They
// return number of samples (WriteInt16, WriteFloat32) or bytes
// (WriteDirect) accepted. Any count different from the requested one is
// treated as the end of the stream.
type Sink interface {
	Play() error
	Pause() error
	Stop() error
	// Release frees sink resources. It is called exactly once.
	Release() error

	WriteInt16(samples []int16) (int, error)
	WriteFloat32(samples []float32) (int, error)
	WriteDirect(buf *DirectBuffer) (int, error)

	// SupportsDirectBuffers reports whether WriteDirect should be used
	// instead of typed writes.
	SupportsDirectBuffers() bool
}

// Opener creates sinks.
type Opener interface {
	Open(SinkConfig) (Sink, error)
}

// OpenerFunc is an adapter to use ordinary functions as Opener.
type OpenerFunc func(SinkConfig) (Sink, error)

// Open calls fn(cfg).
func (fn OpenerFunc) Open(cfg SinkConfig) (Sink, error) {
	return fn(cfg)
}

// RenderFunc is the producer callback. It must fill all samples of buf in
// the provided format and return. It's called synchronously on the
// streaming goroutine, so it must not block for long. The buffer must
// not be retained after the call returns.
type RenderFunc func(buf Buffer, format SampleFormat, numChannels, numFrames int, args interface{})
