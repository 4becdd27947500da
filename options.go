package sierraecg

// defaultMaxPayloadSize bounds the base64-decoded <parsedwaveforms> payload
// this package will allocate for, guarding against a file that declares an
// implausibly large chunk size. 0 means no limit.
const defaultMaxPayloadSize = 0

type config struct {
	includeRepbeats bool
	maxPayloadSize  int
}

// Option configures a ReadFile or Decode call.
type Option func(*config)

// WithRepbeats requests that representative-beat waveforms be decoded into
// EcgFile.Repbeats. Off by default, since many files carry no repbeats at
// all.
func WithRepbeats() Option {
	return func(c *config) { c.includeRepbeats = true }
}

// WithMaxPayloadSize caps the size, in bytes, of the base64-decoded
// <parsedwaveforms> payload. The size is checked after base64 decoding, and
// a larger payload fails with a DecodeError. Representative-beat payloads
// are not limited.
func WithMaxPayloadSize(n int) Option {
	return func(c *config) { c.maxPayloadSize = n }
}

func newConfig(opts []Option) *config {
	c := &config{maxPayloadSize: defaultMaxPayloadSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
