// Command arqsim runs discrete-event simulations of stop-and-wait and
// Go-Back-N transfer over an unreliable channel.
package main

import "github.com/sarchlab/arqsim/arqsim/cmd"

func main() {
	cmd.Execute()
}
