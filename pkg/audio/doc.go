// Package audio holds emily's audio output. Subpackage preview renders a
// composed timeline to a WAV file so a piece can be auditioned without a
// MIDI synthesizer.
package audio
