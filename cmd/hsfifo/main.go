// Command hsfifo simulates clocked handshake FIFOs.
package main

import "github.com/sarchlab/hsfifo/cmd/hsfifo/cmd"

func main() {
	cmd.Execute()
}
