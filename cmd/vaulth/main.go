package main

import "github.com/vaulth/vaulth/cmd/vaulth/cmd"

func main() {
	cmd.Execute()
}
