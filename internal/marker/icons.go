package marker

import (
	"encoding/base64"

	_ "embed"
)

//go:embed icons/play.png
var playPNG []byte

//go:embed icons/stop.png
var stopPNG []byte

// PlayIcon and StopIcon are the two marker icon assets, base64-encoded once
// at startup and immutable afterwards.
var (
	PlayIcon = base64.StdEncoding.EncodeToString(playPNG)
	StopIcon = base64.StdEncoding.EncodeToString(stopPNG)
)
