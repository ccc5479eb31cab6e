package main

import (
	inter "mako/interface"
)

func main() {
	inter.RunCommandLoop()
}
