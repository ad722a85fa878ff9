// concurrentcube - CLI for driving a concurrent N×N×N cube simulation.
package main

import (
	"github.com/SeamusWaldron/concurrentcube/internal/cli"
)

func main() {
	cli.Execute()
}
