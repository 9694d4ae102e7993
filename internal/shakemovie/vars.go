package shakemovie

var (
	Debug    = false // set to true for progress lines and per-frame grid range scans
	UseLocks = true  // set to false to disable locks for cloud light bleed writes
	PNG      = false // set to true to also save a PNG next to each frame
	RAW      = false // set to true to dump the resampled grid as raw float32
	EXR      = false // set to true to dump the resampled grid as OpenEXR
	GIF      = false // set to true to collect half images into an animated GIF preview
	// NumShards must stay a power of two, shardLocks masks with it.
	NumShards = 64
)
