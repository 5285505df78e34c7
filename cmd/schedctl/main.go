package main

import "github.com/example/booking-scheduler/internal/cli"

func main() {
	cli.Execute()
}
