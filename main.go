package main

import "github.com/Tiliavir/attendance-time-calculator/cmd"

func main() {
	cmd.Execute()
}
