package main

import "github.com/iliyamo/travel-booking/internal/cli"

func main() {
	cli.Execute()
}
