package main

import (
	"github.com/foomo/photogallery/cmd"
)

func main() {
	cmd.Execute()
}
