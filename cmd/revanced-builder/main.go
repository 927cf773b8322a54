package main

import "github.com/oshokin/revanced-builder/cmd/revanced-builder/cmd"

func main() {
	cmd.Execute()
}
