package main

import "github.com/JanConnect/JanConnect-sub001/internal/cmd"

func main() {
	cmd.Execute()
}
