package main

import "github.com/phillip/event-booking-go/cmd/server/cmd"

func main() {
	cmd.Execute()
}
