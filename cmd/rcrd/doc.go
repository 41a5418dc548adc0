// Command rcrd records the audio of a call passively: it captures what the
// default sink plays (the far end) together with the default source (the
// mic) from the desktop audio server and mixes both into one Opus file.
package main
