package pulsecode

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptrx/pkg/port"
)

// feedLevels pushes a level sequence through the decoder and returns every
// result that reported something.
func feedLevels(d *Decoder, levels []port.Level) []Result {
	var results []Result
	for _, l := range levels {
		if r := d.Feed(l); r.Outcome != OutcomeNone {
			results = append(results, r)
		}
	}
	return results
}

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("HELLO"),
		{0x00},
		{0xFF, 0x00, 0xAA, 0x55},
		bytes.Repeat([]byte{0x5A}, 32),
	}

	for _, payload := range payloads {
		enc := Encoder{Period: 20, Idle: port.Low}
		d := New()

		results := feedLevels(d, enc.Levels(payload))

		require.Len(t, results, 1, "payload % X", payload)
		assert.Equal(t, OutcomeFrame, results[0].Outcome)
		assert.Equal(t, payload, results[0].Payload)
		assert.True(t, results[0].Valid)
		assert.Equal(t, StateHeaderSync, d.State())
	}
}

func TestRoundTripArbitraryPayloads(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	enc := Encoder{Period: 16, Idle: port.Low}

	for i := 0; i < 20; i++ {
		payload := make([]byte, 1+rnd.Intn(48))
		rnd.Read(payload)

		d := New()
		results := feedLevels(d, enc.Levels(payload))

		require.Len(t, results, 1, "payload % X", payload)
		require.Equal(t, OutcomeFrame, results[0].Outcome)
		assert.Equal(t, payload, results[0].Payload)
		assert.True(t, results[0].Valid)
	}
}

func TestDecoderReuse(t *testing.T) {
	enc := Encoder{Period: 20, Idle: port.Low}
	d := New()

	first := feedLevels(d, enc.Levels([]byte("one")))
	require.Len(t, first, 1)
	require.True(t, first[0].Valid)

	// payloads accumulate until the caller clears them
	second := feedLevels(d, enc.Levels([]byte("two")))
	require.Len(t, second, 1)
	assert.Equal(t, []byte("two"), second[0].Payload)
	assert.True(t, second[0].Valid)
	assert.Equal(t, []byte("onetwo"), d.Payload())

	d.ClearPayload()
	assert.Empty(t, d.Payload())
}

func TestUnchangedLevelIsIdle(t *testing.T) {
	d := New()

	for i := 0; i < 1000; i++ {
		r := d.Feed(port.Low)
		if r.Outcome != OutcomeNone {
			t.Fatalf("tick %d: unexpected outcome %v", i, r.Outcome)
		}
	}
	if d.State() != StateHeaderSync {
		t.Errorf("state = %v, want %v", d.State(), StateHeaderSync)
	}
}

func TestDesyncRecovery(t *testing.T) {
	const period = 20
	enc := Encoder{Period: period, Idle: port.Low}
	d := New()

	// run the signal until the first payload byte has landed, then cut it
	levels := enc.Levels([]byte("HELLO"))
	cut := -1
	for i, l := range levels {
		d.Feed(l)
		if d.State() == StatePayload && d.count >= 1 {
			cut = i
			break
		}
	}
	require.GreaterOrEqual(t, cut, 0, "signal never reached the payload phase")

	// withholding transitions beyond 2P + 2P/4 ticks must force a reset
	hold := levels[cut]
	var desynced bool
	for i := 0; i < 2*period+2*period/4+2; i++ {
		if r := d.Feed(hold); r.Outcome == OutcomeDesync {
			desynced = true
			break
		}
	}
	require.True(t, desynced, "stalled line must desync")
	assert.Equal(t, StateHeaderSync, d.State())

	// the partial payload is discarded with the frame
	d.ClearPayload()
	results := feedLevels(d, enc.Levels([]byte("HELLO")))
	require.Len(t, results, 1)
	assert.Equal(t, []byte("HELLO"), results[0].Payload)
	assert.True(t, results[0].Valid)
}

func TestZeroLengthAborts(t *testing.T) {
	enc := Encoder{Period: 20, Idle: port.Low}
	d := New()

	levels := Expand(enc.frame(0, 0, nil), port.Low, 20, 20)
	results := feedLevels(d, levels)

	require.Len(t, results, 1)
	assert.Equal(t, OutcomeBadLength, results[0].Outcome)
	assert.Equal(t, StateHeaderSync, d.State())
	assert.Empty(t, d.Payload())
}

func TestChecksumMismatchStillDelivered(t *testing.T) {
	payload := []byte("HELLO")
	enc := Encoder{Period: 20, Idle: port.Low}
	d := New()

	bad := Checksum(payload) ^ 0x01
	levels := Expand(enc.frame(byte(len(payload)), bad, payload), port.Low, 20, 20)
	results := feedLevels(d, levels)

	require.Len(t, results, 1)
	assert.Equal(t, OutcomeFrame, results[0].Outcome)
	assert.Equal(t, payload, results[0].Payload)
	assert.False(t, results[0].Valid, "mismatched checksum is advisory, not fatal")
}

func TestRoundTripWithJitter(t *testing.T) {
	const period = 20
	payload := []byte("HELLO")
	rnd := rand.New(rand.NewSource(42))

	for run := 0; run < 25; run++ {
		enc := Encoder{Period: period, Idle: port.Low}
		intervals := enc.Intervals(payload)
		for i := range intervals {
			intervals[i] += rnd.Intn(3) - 1
		}

		d := New()
		results := feedLevels(d, Expand(intervals, port.Low, period, period))

		require.Len(t, results, 1, "run %d", run)
		assert.Equal(t, payload, results[0].Payload, "run %d", run)
		assert.True(t, results[0].Valid, "run %d", run)
	}
}

// eventRecorder captures monitor callbacks for inspection.
type eventRecorder struct {
	period   int
	bytes    []byte
	states   []State
	frames   int
	valid    bool
	checksum byte
	desyncs  []State
}

func (r *eventRecorder) Synced(period int) { r.period = period }

func (r *eventRecorder) Byte(s State, b byte) {
	r.states = append(r.states, s)
	r.bytes = append(r.bytes, b)
}

func (r *eventRecorder) Frame(_ []byte, checksum byte, valid bool) {
	r.frames++
	r.checksum = checksum
	r.valid = valid
}

func (r *eventRecorder) Desync(s State) { r.desyncs = append(r.desyncs, s) }

func TestMonitorSeesDecodeProgress(t *testing.T) {
	payload := []byte("HI")
	enc := Encoder{Period: 20, Idle: port.Low}

	d := New()
	rec := &eventRecorder{}
	d.SetMonitor(rec)

	results := feedLevels(d, enc.Levels(payload))
	require.Len(t, results, 1)

	assert.Equal(t, 20, rec.period)
	assert.Equal(t, []byte{2, Checksum(payload), 'H', 'I'}, rec.bytes)
	assert.Equal(t, []State{StateLength, StateChecksum, StatePayload, StatePayload}, rec.states)
	assert.Equal(t, 1, rec.frames)
	assert.True(t, rec.valid)
	assert.Equal(t, Checksum(payload), rec.checksum)
	assert.Empty(t, rec.desyncs)
}

func TestDiagnostics(t *testing.T) {
	enc := Encoder{Period: 20, Idle: port.Low}
	d := New()

	assert.Equal(t, 0, d.BitPeriod())

	feedLevels(d, enc.Levels([]byte("HELLO")))
	assert.Equal(t, 20, d.BitPeriod())

	buf, head := d.Window()
	assert.GreaterOrEqual(t, head, 0)
	assert.Less(t, head, len(buf))
}
