// Command devsim runs the example DEVS models from the command line.
package main

import (
	"github.com/SimulationEverywhere/cadmium-v2-sub001/devsim/cmd"
)

func main() {
	cmd.Execute()
}
