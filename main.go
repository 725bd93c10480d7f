package main

import "github.com/bajehapp/bajeh_backend/cmd"

func main() {
	cmd.Execute()
}
