package main

import "github.com/thoherr/vacuum-docker-registry/cmd"

func main() {
	cmd.Execute()
}
