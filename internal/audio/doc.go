// Package audio holds the decoded sample buffer shared by the speech engine
// and the procedural voice, plus the playback sinks that consume it. The
// production sink streams float32 PCM through oto/v3.
package audio
