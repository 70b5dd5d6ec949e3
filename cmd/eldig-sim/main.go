// Command eldig-sim is the console simulator of the hemodialysis safety
// controller.
package main

import "github.com/lilycand/eldig/cmd/eldig-sim/cmd"

func main() {
	cmd.Execute()
}
