package main

import "vigilant-backend/cmd"

func main() {
	cmd.Run()
}
