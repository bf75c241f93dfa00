// Command podcut serves the podcast key-moment clip endpoints.
package main

import "github.com/avelichko/podcut/internal/cli"

func main() {
	cli.Main()
}
