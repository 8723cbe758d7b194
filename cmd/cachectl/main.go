package main

import "github.com/paxxchal/alx-backend-storage/cmd/cachectl/cmd"

func main() {
	cmd.Execute()
}
