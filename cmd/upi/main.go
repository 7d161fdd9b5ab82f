// The upi binary is the command-line client for the settlement gateway.
package main

import "upi/cmd/upi/cli"

func main() {
	cli.Execute()
}
