package main

import (
	"github.com/faiface/pixel/pixelgl"

	"github.com/okto-vm/okto/cmd"
)

func main() {
	// pixelgl needs access to the main thread, so the whole CLI runs inside it
	pixelgl.Run(cmd.Execute)
}
