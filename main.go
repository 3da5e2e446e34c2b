package main

import "github.com/vibast-solutions/ms-go-season-tickets/cmd"

func main() {
	cmd.Execute()
}
